package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-engine/internal/domain/bracket"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/platform/dispatch"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
)

type GenerateKnockoutResult struct {
	Outcome Outcome
	Reason  string
	Phase   string
	Matches []match.Match
	// Unpaired is the team left over by an odd number of qualifiers.
	Unpaired string
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

type BracketService struct {
	tx        store.TxRunner
	shuffler  bracket.Shuffler
	publisher EventPublisher
	metrics   *metrics.Recorder
	logger    *logging.Logger
}

// NewBracketService draws with the global random source when shuffler is nil.
func NewBracketService(tx store.TxRunner, shuffler bracket.Shuffler, publisher EventPublisher, recorder *metrics.Recorder, logger *logging.Logger) *BracketService {
	if logger == nil {
		logger = logging.Default()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if shuffler == nil {
		shuffler = globalShuffler{}
	}

	return &BracketService{
		tx:        tx,
		shuffler:  shuffler,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
	}
}

// GenerateKnockout draws the first knockout phase from the qualified teams of
// every group.
func (s *BracketService) GenerateKnockout(ctx context.Context, tournamentID string) (GenerateKnockoutResult, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	ctx, span := startUsecaseSpan(ctx, "usecase.BracketService.GenerateKnockout", attribute.String("tournament.id", tournamentID))
	defer span.End()

	if tournamentID == "" {
		return GenerateKnockoutResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	var result GenerateKnockoutResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		t, exists, err := repos.Tournaments.Lock(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("lock tournament: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
		}

		phase, err := bracket.PhaseForLevel(t.ClassificationLevel)
		if err != nil {
			return err
		}

		existing, err := repos.Matches.ListByTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		lastRound := 0
		for _, m := range existing {
			if m.Phase == phase {
				result = GenerateKnockoutResult{Outcome: OutcomeNoOp, Reason: ReasonDuplicateFixture, Phase: phase}
				return nil
			}
			if m.Round > lastRound {
				lastRound = m.Round
			}
		}

		records, err := repos.Standings.ListByTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list standings: %w", err)
		}
		qualified := qualifiedTeams(records)
		pairs, unpaired, err := bracket.Draw(qualified, s.shuffler)
		if err != nil {
			return fmt.Errorf("tournament=%s: %w", tournamentID, err)
		}

		round := lastRound + 1
		matches := make([]match.Match, 0, len(pairs))
		for _, pair := range pairs {
			nextID, err := repos.Matches.NextID(ctx)
			if err != nil {
				return fmt.Errorf("next match id: %w", err)
			}
			matches = append(matches, match.Match{
				ID:           nextID,
				TournamentID: t.ID,
				HomeTeamID:   pair.Home,
				AwayTeamID:   pair.Away,
				Round:        round,
				Phase:        phase,
				Status:       match.StatusScheduled,
			})
		}
		if len(matches) > 0 {
			if err := repos.Matches.Create(ctx, matches); err != nil {
				return fmt.Errorf("create knockout matches: %w", err)
			}
		}

		result = GenerateKnockoutResult{Outcome: OutcomeApplied, Phase: phase, Matches: matches, Unpaired: unpaired}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		s.logger.WarnContext(ctx, "generate knockout rejected", "tournament_id", tournamentID, "reason", ReasonCode(err), "error", err)
		return GenerateKnockoutResult{}, err
	}

	if result.Outcome == OutcomeNoOp {
		s.logger.InfoContext(ctx, "knockout phase already drawn", "tournament_id", tournamentID, "phase", result.Phase)
		return result, nil
	}

	s.metrics.KnockoutGenerated(result.Phase, len(result.Matches))
	s.publisher.Publish(ctx, dispatch.TopicKnockoutGenerated, tournamentID, map[string]any{
		"tournament_id": tournamentID,
		"phase":         result.Phase,
		"matches":       len(result.Matches),
		"unpaired":      result.Unpaired,
	})
	s.logger.InfoContext(ctx, "knockout generated",
		"tournament_id", tournamentID,
		"phase", result.Phase,
		"matches", len(result.Matches),
		"unpaired", result.Unpaired,
	)
	return result, nil
}

// qualifiedTeams returns each qualified team once, in table order.
func qualifiedTeams(records []standing.Record) []string {
	ranked := standing.Rank(records)
	seen := make(map[string]struct{}, len(ranked))
	out := make([]string, 0, len(ranked))
	for _, rec := range ranked {
		if !rec.Qualified {
			continue
		}
		if _, dup := seen[rec.TeamID]; dup {
			continue
		}
		seen[rec.TeamID] = struct{}{}
		out = append(out, rec.TeamID)
	}
	return out
}
