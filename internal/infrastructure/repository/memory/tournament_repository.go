package memory

import (
	"context"

	"github.com/riskibarqy/league-engine/internal/domain/tournament"
)

type TournamentRepository struct {
	access access
}

func (r *TournamentRepository) List(_ context.Context) ([]tournament.Tournament, error) {
	var out []tournament.Tournament
	err := r.access.read(func(st *state) error {
		out = make([]tournament.Tournament, 0, len(st.tournamentOrder))
		for _, id := range st.tournamentOrder {
			out = append(out, st.tournaments[id])
		}
		return nil
	})
	return out, err
}

func (r *TournamentRepository) GetByID(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	var (
		item tournament.Tournament
		ok   bool
	)
	err := r.access.read(func(st *state) error {
		item, ok = st.tournaments[tournamentID]
		return nil
	})
	return item, ok, err
}

// Lock is GetByID: transactions already hold the store exclusively.
func (r *TournamentRepository) Lock(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	return r.GetByID(ctx, tournamentID)
}

type GroupRepository struct {
	access access
}

func (r *GroupRepository) ListByTournament(_ context.Context, tournamentID string) ([]tournament.Group, error) {
	var out []tournament.Group
	err := r.access.read(func(st *state) error {
		ids := st.groupOrder[tournamentID]
		out = make([]tournament.Group, 0, len(ids))
		for _, id := range ids {
			out = append(out, cloneGroup(st.groups[groupKey(tournamentID, id)]))
		}
		return nil
	})
	return out, err
}

func (r *GroupRepository) GetByID(_ context.Context, tournamentID, groupID string) (tournament.Group, bool, error) {
	var (
		item tournament.Group
		ok   bool
	)
	err := r.access.read(func(st *state) error {
		item, ok = st.groups[groupKey(tournamentID, groupID)]
		item = cloneGroup(item)
		return nil
	})
	return item, ok, err
}
