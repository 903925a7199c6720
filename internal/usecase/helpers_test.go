package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
)

type published struct {
	topic string
	key   string
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{topic: topic, key: key})
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.topic)
	}
	return out
}

// engine wires every service over one memory store seeded with the demo data.
type engine struct {
	store      *memory.Store
	publisher  *recordingPublisher
	metrics    *metrics.Recorder
	fixtures   *FixtureService
	results    *ResultService
	discipline *DisciplineService
	standings  *StandingService
	bracket    *BracketService
	tournament *TournamentService
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	st := memory.NewStore(memory.DemoSeed())
	pub := &recordingPublisher{}
	recorder := metrics.NewRecorder("test")
	logger := logging.NewNop()
	settings := DefaultSettings()

	return &engine{
		store:      st,
		publisher:  pub,
		metrics:    recorder,
		fixtures:   NewFixtureService(st, pub, recorder, logger),
		results:    NewResultService(st, settings, pub, recorder, logger),
		discipline: NewDisciplineService(st, settings, pub, recorder, logger),
		standings:  NewStandingService(st, settings, logger),
		bracket:    NewBracketService(st, nil, pub, recorder, logger),
		tournament: NewTournamentService(st),
	}
}

func (e *engine) generate(t *testing.T, tournamentID string) []match.Match {
	t.Helper()

	res, err := e.fixtures.GenerateFixtures(context.Background(), tournamentID)
	if err != nil {
		t.Fatalf("generate fixtures %s: %v", tournamentID, err)
	}
	if res.Outcome != OutcomeApplied {
		t.Fatalf("unexpected outcome: got=%s want=%s", res.Outcome, OutcomeApplied)
	}
	return res.Matches
}

// teamMatches returns the non-bye group matches of teamID in schedule order.
func (e *engine) teamMatches(t *testing.T, tournamentID, teamID string) []match.Match {
	t.Helper()

	items, err := e.tournament.ListMatches(context.Background(), tournamentID)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	out := make([]match.Match, 0)
	for _, m := range items {
		if m.IsBye() || !m.Involves(teamID) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return match.Before(out[i], out[j]) })
	return out
}

func (e *engine) record(t *testing.T, tournamentID, groupID, teamID string) standing.Record {
	t.Helper()

	rec, ok, err := e.store.Repositories().Standings.Get(context.Background(), standing.Key{
		TournamentID: tournamentID,
		GroupID:      groupID,
		TeamID:       teamID,
	})
	if err != nil {
		t.Fatalf("get standings: %v", err)
	}
	if !ok {
		t.Fatalf("standings record %s/%s/%s not found", tournamentID, groupID, teamID)
	}
	return rec
}

func (e *engine) finish(t *testing.T, matchID int64, home, away int) MatchResult {
	t.Helper()

	res, err := e.results.RecordMatchEnd(context.Background(), RecordMatchEndInput{MatchID: matchID, HomeGoals: home, AwayGoals: away})
	if err != nil {
		t.Fatalf("record match end %d: %v", matchID, err)
	}
	return res
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}
