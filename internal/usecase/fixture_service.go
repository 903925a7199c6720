package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-engine/internal/domain/fixture"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	"github.com/riskibarqy/league-engine/internal/platform/dispatch"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
)

type GenerateFixturesResult struct {
	Outcome Outcome
	Reason  string
	Matches []match.Match
}

type FixtureService struct {
	tx        store.TxRunner
	publisher EventPublisher
	metrics   *metrics.Recorder
	logger    *logging.Logger
}

func NewFixtureService(tx store.TxRunner, publisher EventPublisher, recorder *metrics.Recorder, logger *logging.Logger) *FixtureService {
	if logger == nil {
		logger = logging.Default()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}

	return &FixtureService{
		tx:        tx,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
	}
}

// GenerateFixtures schedules the round robin of every group of a tournament.
// Pairings that already exist are skipped; when nothing is left to create the
// result is a no-op.
func (s *FixtureService) GenerateFixtures(ctx context.Context, tournamentID string) (GenerateFixturesResult, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.GenerateFixtures", attribute.String("tournament.id", tournamentID))
	defer span.End()

	if tournamentID == "" {
		return GenerateFixturesResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	var created []match.Match
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		t, exists, err := repos.Tournaments.Lock(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("lock tournament: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
		}

		groups, err := repos.Groups.ListByTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list groups: %w", err)
		}
		if len(groups) == 0 {
			return fmt.Errorf("%w: tournament=%s has no groups", fixture.ErrInsufficientTeams, tournamentID)
		}

		existing, err := repos.Matches.ListByTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		scheduled := scheduledPairs(existing)

		for _, g := range groups {
			pairings, err := fixture.RoundRobin(g.TeamIDs, t.RoundTrips)
			if err != nil {
				return fmt.Errorf("group %s: %w", g.ID, err)
			}

			for _, p := range pairings {
				key := match.PairKey(p.Home, p.Away)
				if scheduled[key] > 0 {
					scheduled[key]--
					continue
				}

				nextID, err := repos.Matches.NextID(ctx)
				if err != nil {
					return fmt.Errorf("next match id: %w", err)
				}
				created = append(created, newGroupMatch(nextID, t, g, p))
			}

			for _, teamID := range g.TeamIDs {
				if _, err := repos.Standings.UpsertZero(ctx, standing.Key{TournamentID: t.ID, GroupID: g.ID, TeamID: teamID}); err != nil {
					return fmt.Errorf("init standings team=%s: %w", teamID, err)
				}
			}
		}

		if len(created) == 0 {
			return nil
		}
		if err := repos.Matches.Create(ctx, created); err != nil {
			return fmt.Errorf("create matches: %w", err)
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		s.logger.WarnContext(ctx, "generate fixtures rejected", "tournament_id", tournamentID, "reason", ReasonCode(err), "error", err)
		return GenerateFixturesResult{}, err
	}

	if len(created) == 0 {
		s.logger.InfoContext(ctx, "fixtures already generated", "tournament_id", tournamentID)
		return GenerateFixturesResult{Outcome: OutcomeNoOp, Reason: ReasonCode(ErrDuplicateFixture)}, nil
	}

	byes := 0
	for _, m := range created {
		if m.IsBye() {
			byes++
		}
	}
	s.metrics.FixturesGenerated(len(created)-byes, byes)
	s.publisher.Publish(ctx, dispatch.TopicFixturesGenerated, tournamentID, map[string]any{
		"tournament_id": tournamentID,
		"matches":       len(created) - byes,
		"byes":          byes,
	})
	s.logger.InfoContext(ctx, "fixtures generated", "tournament_id", tournamentID, "matches", len(created)-byes, "byes", byes)

	return GenerateFixturesResult{Outcome: OutcomeApplied, Matches: created}, nil
}

// scheduledPairs counts existing group matches per unordered pairing. Byes
// count under the pair of the resting team and "".
func scheduledPairs(existing []match.Match) map[string]int {
	out := make(map[string]int, len(existing))
	for _, m := range existing {
		if m.IsKnockout() {
			continue
		}
		out[match.PairKey(m.HomeTeamID, m.AwayTeamID)]++
	}
	return out
}

func newGroupMatch(matchID int64, t tournament.Tournament, g tournament.Group, p fixture.Pairing) match.Match {
	m := match.Match{
		ID:           matchID,
		TournamentID: t.ID,
		GroupID:      g.ID,
		HomeTeamID:   p.Home,
		AwayTeamID:   p.Away,
		Round:        p.Round,
		Phase:        match.PhaseGroup,
		ScheduledAt:  t.RoundDate(p.Round),
		Status:       match.StatusScheduled,
	}
	if p.IsBye() {
		m.Status = match.StatusWalkover
		m.Notes = []string{match.NoteRest}
		m.ScheduledAt = time.Time{}
	}
	return m
}
