package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
)

type lockLog struct {
	mu          sync.Mutex
	tournaments []string
	matches     []int64
}

func (l *lockLog) snapshot() ([]string, []int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.tournaments...), append([]int64(nil), l.matches...)
}

func (l *lockLog) reset() {
	l.mu.Lock()
	l.tournaments, l.matches = nil, nil
	l.mu.Unlock()
}

// lockingRunner records the rows each transaction locks before it writes.
type lockingRunner struct {
	store.TxRunner
	log *lockLog
}

func (r lockingRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	return r.TxRunner.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		repos.Tournaments = lockingTournaments{Repository: repos.Tournaments, log: r.log}
		repos.Matches = lockingMatches{Repository: repos.Matches, log: r.log}
		return fn(ctx, repos)
	})
}

type lockingTournaments struct {
	tournament.Repository
	log *lockLog
}

func (r lockingTournaments) Lock(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	r.log.mu.Lock()
	r.log.tournaments = append(r.log.tournaments, tournamentID)
	r.log.mu.Unlock()
	return r.Repository.Lock(ctx, tournamentID)
}

type lockingMatches struct {
	match.Repository
	log *lockLog
}

func (r lockingMatches) Lock(ctx context.Context, matchID int64) (match.Match, bool, error) {
	r.log.mu.Lock()
	r.log.matches = append(r.log.matches, matchID)
	r.log.mu.Unlock()
	return r.Repository.Lock(ctx, matchID)
}

func TestWriters_LockBeforeCheckingExistingRows(t *testing.T) {
	t.Parallel()

	st := memory.NewStore(memory.DemoSeed())
	log := &lockLog{}
	runner := lockingRunner{TxRunner: st, log: log}
	pub := &recordingPublisher{}
	recorder := metrics.NewRecorder("test")
	logger := logging.NewNop()
	settings := DefaultSettings()
	ctx := context.Background()

	fixtures := NewFixtureService(runner, pub, recorder, logger)
	generated, err := fixtures.GenerateFixtures(ctx, memory.TournamentIDSpringCup)
	if err != nil {
		t.Fatalf("generate fixtures: %v", err)
	}
	tournaments, _ := log.snapshot()
	if diff := cmp.Diff([]string{memory.TournamentIDSpringCup}, tournaments); diff != "" {
		t.Fatalf("fixture generation must lock the tournament (-want +got):\n%s", diff)
	}

	var played match.Match
	for _, m := range generated.Matches {
		if !m.IsBye() && m.Involves("harbor-fc") {
			played = m
			break
		}
	}
	if played.ID == 0 {
		t.Fatal("no harbor-fc match generated")
	}

	log.reset()
	disciplines := NewDisciplineService(runner, settings, pub, recorder, logger)
	if _, err := disciplines.IngestEvent(ctx, IngestEventInput{MatchID: played.ID, PlayerID: "harbor-fc-p1", Type: discipline.EventGoal}); err != nil {
		t.Fatalf("ingest goal: %v", err)
	}
	_, matches := log.snapshot()
	if diff := cmp.Diff([]int64{played.ID}, matches); diff != "" {
		t.Fatalf("event ingestion must lock the match (-want +got):\n%s", diff)
	}

	if _, err := NewStandingService(st, settings, logger).QualifyGroups(ctx, memory.TournamentIDSpringCup, 0); err != nil {
		t.Fatalf("qualify groups: %v", err)
	}
	log.reset()
	if _, err := NewBracketService(runner, nil, pub, recorder, logger).GenerateKnockout(ctx, memory.TournamentIDSpringCup); err != nil {
		t.Fatalf("generate knockout: %v", err)
	}
	tournaments, _ = log.snapshot()
	if diff := cmp.Diff([]string{memory.TournamentIDSpringCup}, tournaments); diff != "" {
		t.Fatalf("knockout generation must lock the tournament (-want +got):\n%s", diff)
	}
}

func TestFixtureService_ConcurrentGenerationAppliesOnce(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	const callers = 6
	outcomes := make(chan Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.fixtures.GenerateFixtures(context.Background(), memory.TournamentIDSpringCup)
			if err != nil {
				t.Errorf("generate fixtures: %v", err)
				return
			}
			outcomes <- res.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	applied := 0
	for outcome := range outcomes {
		if outcome == OutcomeApplied {
			applied++
		}
	}
	if applied != 1 {
		t.Fatalf("expected exactly one applied generation, got %d", applied)
	}
}
