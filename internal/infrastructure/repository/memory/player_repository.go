package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/league-engine/internal/domain/player"
)

type PlayerRepository struct {
	access access
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	var (
		item player.Player
		ok   bool
	)
	err := r.access.read(func(st *state) error {
		item, ok = st.players[playerID]
		return nil
	})
	return item, ok, err
}

func (r *PlayerRepository) ListByTeams(_ context.Context, teamIDs []string) ([]player.Player, error) {
	teams := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		teams[id] = struct{}{}
	}

	var out []player.Player
	err := r.access.read(func(st *state) error {
		for _, id := range st.playerOrder {
			p := st.players[id]
			if _, ok := teams[p.TeamID]; ok {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (r *PlayerRepository) UpdateStatus(_ context.Context, playerID string, status player.Status) error {
	return r.access.write(func(st *state) error {
		p, ok := st.players[playerID]
		if !ok {
			return fmt.Errorf("player %s not found", playerID)
		}
		p.Status = status
		st.players[playerID] = p
		return nil
	})
}
