package cache

import (
	"context"
	"sync"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	basecache "github.com/riskibarqy/league-engine/internal/platform/cache"
)

// TxRunner caches tournament, group and standings reads of the wrapped
// runner. Standings keys touched by a committed transaction are dropped.
type TxRunner struct {
	next  store.TxRunner
	cache *basecache.Store
}

func NewTxRunner(next store.TxRunner, cache *basecache.Store) *TxRunner {
	return &TxRunner{next: next, cache: cache}
}

func (r *TxRunner) Repositories() store.Repositories {
	repos := r.next.Repositories()
	repos.Tournaments = NewTournamentRepository(repos.Tournaments, r.cache)
	repos.Groups = NewGroupRepository(repos.Groups, r.cache)
	repos.Standings = NewStandingRepository(repos.Standings, r.cache)
	return repos
}

func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	touched := &touchedTournaments{ids: make(map[string]struct{})}
	err := r.next.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		repos.Standings = &trackingStandingRepository{Repository: repos.Standings, touched: touched}
		return fn(ctx, repos)
	})
	if err != nil {
		return err
	}

	for _, id := range touched.list() {
		r.InvalidateTournament(ctx, id)
	}
	return nil
}

// InvalidateTournament drops every cached standings view of a tournament.
func (r *TxRunner) InvalidateTournament(ctx context.Context, tournamentID string) {
	r.cache.DeletePrefix(ctx, standingsPrefix(tournamentID))
}

type touchedTournaments struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (t *touchedTournaments) add(id string) {
	t.mu.Lock()
	t.ids[id] = struct{}{}
	t.mu.Unlock()
}

func (t *touchedTournaments) list() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	return out
}

type trackingStandingRepository struct {
	standing.Repository
	touched *touchedTournaments
}

func (r *trackingStandingRepository) UpsertZero(ctx context.Context, key standing.Key) (standing.Record, error) {
	r.touched.add(key.TournamentID)
	return r.Repository.UpsertZero(ctx, key)
}

func (r *trackingStandingRepository) Save(ctx context.Context, record standing.Record) error {
	r.touched.add(record.TournamentID)
	return r.Repository.Save(ctx, record)
}

func (r *trackingStandingRepository) SetQualified(ctx context.Context, key standing.Key, qualified bool) error {
	r.touched.add(key.TournamentID)
	return r.Repository.SetQualified(ctx, key, qualified)
}

type TournamentRepository struct {
	next  tournament.Repository
	cache *basecache.Store
}

func NewTournamentRepository(next tournament.Repository, cache *basecache.Store) *TournamentRepository {
	return &TournamentRepository{next: next, cache: cache}
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	items, err := basecache.Load(ctx, r.cache, "tournament:list", func(ctx context.Context) ([]tournament.Tournament, error) {
		return r.next.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]tournament.Tournament(nil), items...), nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, "tournament:id:"+tournamentID, func(ctx context.Context) (cachedTournamentByID, error) {
		item, exists, err := r.next.GetByID(ctx, tournamentID)
		return cachedTournamentByID{value: item, exists: exists}, err
	})
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return cached.value, cached.exists, nil
}

// Lock always reaches the wrapped repository.
func (r *TournamentRepository) Lock(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	return r.next.Lock(ctx, tournamentID)
}

type cachedTournamentByID struct {
	value  tournament.Tournament
	exists bool
}

type GroupRepository struct {
	next  tournament.GroupRepository
	cache *basecache.Store
}

func NewGroupRepository(next tournament.GroupRepository, cache *basecache.Store) *GroupRepository {
	return &GroupRepository{next: next, cache: cache}
}

func (r *GroupRepository) ListByTournament(ctx context.Context, tournamentID string) ([]tournament.Group, error) {
	items, err := basecache.Load(ctx, r.cache, "group:list:"+tournamentID, func(ctx context.Context) ([]tournament.Group, error) {
		return r.next.ListByTournament(ctx, tournamentID)
	})
	if err != nil {
		return nil, err
	}
	out := make([]tournament.Group, 0, len(items))
	for _, g := range items {
		out = append(out, cloneGroup(g))
	}
	return out, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, tournamentID, groupID string) (tournament.Group, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, "group:id:"+tournamentID+":"+groupID, func(ctx context.Context) (cachedGroupByID, error) {
		item, exists, err := r.next.GetByID(ctx, tournamentID, groupID)
		return cachedGroupByID{value: item, exists: exists}, err
	})
	if err != nil {
		return tournament.Group{}, false, err
	}
	return cloneGroup(cached.value), cached.exists, nil
}

type cachedGroupByID struct {
	value  tournament.Group
	exists bool
}

func cloneGroup(g tournament.Group) tournament.Group {
	g.TeamIDs = append([]string(nil), g.TeamIDs...)
	return g
}

// StandingRepository caches list reads only. Writes outside a transaction
// drop the tournament's cached views.
type StandingRepository struct {
	standing.Repository
	cache *basecache.Store
}

func NewStandingRepository(next standing.Repository, cache *basecache.Store) *StandingRepository {
	return &StandingRepository{Repository: next, cache: cache}
}

func (r *StandingRepository) ListByGroup(ctx context.Context, tournamentID, groupID string) ([]standing.Record, error) {
	key := standingsPrefix(tournamentID) + "group:" + groupID
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]standing.Record, error) {
		return r.Repository.ListByGroup(ctx, tournamentID, groupID)
	})
	if err != nil {
		return nil, err
	}
	return append([]standing.Record(nil), items...), nil
}

func (r *StandingRepository) ListByTournament(ctx context.Context, tournamentID string) ([]standing.Record, error) {
	key := standingsPrefix(tournamentID) + "all"
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]standing.Record, error) {
		return r.Repository.ListByTournament(ctx, tournamentID)
	})
	if err != nil {
		return nil, err
	}
	return append([]standing.Record(nil), items...), nil
}

func (r *StandingRepository) UpsertZero(ctx context.Context, key standing.Key) (standing.Record, error) {
	defer r.cache.DeletePrefix(ctx, standingsPrefix(key.TournamentID))
	return r.Repository.UpsertZero(ctx, key)
}

func (r *StandingRepository) Save(ctx context.Context, record standing.Record) error {
	defer r.cache.DeletePrefix(ctx, standingsPrefix(record.TournamentID))
	return r.Repository.Save(ctx, record)
}

func (r *StandingRepository) SetQualified(ctx context.Context, key standing.Key, qualified bool) error {
	defer r.cache.DeletePrefix(ctx, standingsPrefix(key.TournamentID))
	return r.Repository.SetQualified(ctx, key, qualified)
}

func standingsPrefix(tournamentID string) string {
	return "standing:" + tournamentID + ":"
}
