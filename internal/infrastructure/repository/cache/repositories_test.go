package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/league-engine/internal/platform/cache"
)

func TestTxRunner_CommittedStandingsWriteInvalidatesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runner := NewTxRunner(memory.NewStore(memory.DemoSeed()), basecache.NewStore(time.Minute))
	key := standing.Key{TournamentID: memory.TournamentIDSpringCup, GroupID: "group-a", TeamID: "harbor-fc"}

	if err := runner.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		_, err := repos.Standings.UpsertZero(ctx, key)
		return err
	}); err != nil {
		t.Fatalf("seed standings: %v", err)
	}

	reads := runner.Repositories()
	before, err := reads.Standings.ListByGroup(ctx, key.TournamentID, key.GroupID)
	if err != nil || len(before) != 1 || before[0].Points != 0 {
		t.Fatalf("unexpected first read: %+v err=%v", before, err)
	}

	if err := runner.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		rec, _, err := repos.Standings.Lock(ctx, key)
		if err != nil {
			return err
		}
		rec.ApplyResult(standing.DefaultScheme(), 1, 0, standing.Bonus{})
		return repos.Standings.Save(ctx, rec)
	}); err != nil {
		t.Fatalf("apply result: %v", err)
	}

	after, err := reads.Standings.ListByGroup(ctx, key.TournamentID, key.GroupID)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(after) != 1 || after[0].Points != 3 {
		t.Fatalf("expected fresh standings after commit, got %+v", after)
	}
}

func TestTournamentRepository_CachesMisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runner := NewTxRunner(memory.NewStore(memory.DemoSeed()), basecache.NewStore(time.Minute))
	repos := runner.Repositories()

	if _, ok, err := repos.Tournaments.GetByID(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected cached miss, ok=%v err=%v", ok, err)
	}
	item, ok, err := repos.Tournaments.GetByID(ctx, memory.TournamentIDSpringCup)
	if err != nil || !ok || item.Name != "Spring Cup 2026" {
		t.Fatalf("unexpected tournament: %+v ok=%v err=%v", item, ok, err)
	}
}
