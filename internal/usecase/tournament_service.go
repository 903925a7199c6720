package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
)

type TournamentDetail struct {
	Tournament tournament.Tournament
	Groups     []tournament.Group
}

// TournamentService serves read-only views of tournaments and their matches.
type TournamentService struct {
	tx store.TxRunner
}

func NewTournamentService(tx store.TxRunner) *TournamentService {
	return &TournamentService{tx: tx}
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ListTournaments")
	defer span.End()

	items, err := s.tx.Repositories().Tournaments.List(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return items, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, tournamentID string) (TournamentDetail, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GetTournament", attribute.String("tournament.id", tournamentID))
	defer span.End()

	if tournamentID == "" {
		return TournamentDetail{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	repos := s.tx.Repositories()
	t, exists, err := repos.Tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		recordSpanError(span, err)
		return TournamentDetail{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return TournamentDetail{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}

	groups, err := repos.Groups.ListByTournament(ctx, tournamentID)
	if err != nil {
		recordSpanError(span, err)
		return TournamentDetail{}, fmt.Errorf("list groups: %w", err)
	}
	return TournamentDetail{Tournament: t, Groups: groups}, nil
}

// ListMatches returns the tournament's matches in schedule order.
func (s *TournamentService) ListMatches(ctx context.Context, tournamentID string) ([]match.Match, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ListMatches", attribute.String("tournament.id", tournamentID))
	defer span.End()

	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	repos := s.tx.Repositories()
	if _, exists, err := repos.Tournaments.GetByID(ctx, tournamentID); err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("get tournament: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}

	items, err := repos.Matches.ListByTournament(ctx, tournamentID)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list matches: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return match.Before(items[i], items[j])
	})
	return items, nil
}

func (s *TournamentService) GetMatch(ctx context.Context, matchID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GetMatch", attribute.Int64("match.id", matchID))
	defer span.End()

	if matchID <= 0 {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	m, exists, err := s.tx.Repositories().Matches.GetByID(ctx, matchID)
	if err != nil {
		recordSpanError(span, err)
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	return m, nil
}
