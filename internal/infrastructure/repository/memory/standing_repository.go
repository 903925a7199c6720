package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
)

type StandingRepository struct {
	access access
}

func (r *StandingRepository) Get(_ context.Context, key standing.Key) (standing.Record, bool, error) {
	var (
		item standing.Record
		ok   bool
	)
	err := r.access.read(func(st *state) error {
		item, ok = st.standings[key]
		return nil
	})
	return item, ok, err
}

// Lock is Get: transactions already hold the store exclusively.
func (r *StandingRepository) Lock(ctx context.Context, key standing.Key) (standing.Record, bool, error) {
	return r.Get(ctx, key)
}

func (r *StandingRepository) UpsertZero(_ context.Context, key standing.Key) (standing.Record, error) {
	var item standing.Record
	err := r.access.write(func(st *state) error {
		if existing, ok := st.standings[key]; ok {
			item = existing
			return nil
		}
		item = standing.NewRecord(key)
		st.standings[key] = item
		st.standingOrder = append(st.standingOrder, key)
		return nil
	})
	return item, err
}

func (r *StandingRepository) Save(_ context.Context, record standing.Record) error {
	return r.access.write(func(st *state) error {
		if _, ok := st.standings[record.Key()]; !ok {
			return fmt.Errorf("%w: missing record %s", standing.ErrInconsistentWrite, record.Key())
		}
		st.standings[record.Key()] = record
		return nil
	})
}

func (r *StandingRepository) SetQualified(_ context.Context, key standing.Key, qualified bool) error {
	return r.access.write(func(st *state) error {
		item, ok := st.standings[key]
		if !ok {
			return fmt.Errorf("%w: missing record %s", standing.ErrInconsistentWrite, key)
		}
		item.Qualified = qualified
		st.standings[key] = item
		return nil
	})
}

func (r *StandingRepository) ListByGroup(_ context.Context, tournamentID, groupID string) ([]standing.Record, error) {
	return r.list(func(k standing.Key) bool {
		return k.TournamentID == tournamentID && k.GroupID == groupID
	})
}

func (r *StandingRepository) ListByTournament(_ context.Context, tournamentID string) ([]standing.Record, error) {
	return r.list(func(k standing.Key) bool {
		return k.TournamentID == tournamentID
	})
}

func (r *StandingRepository) list(keep func(standing.Key) bool) ([]standing.Record, error) {
	out := make([]standing.Record, 0)
	err := r.access.read(func(st *state) error {
		for _, key := range st.standingOrder {
			if keep(key) {
				out = append(out, st.standings[key])
			}
		}
		return nil
	})
	return out, err
}
