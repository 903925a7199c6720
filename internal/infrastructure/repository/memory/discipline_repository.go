package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
)

type EventRepository struct {
	access access
}

func (r *EventRepository) NextID(_ context.Context) (int64, error) {
	var next int64
	err := r.access.write(func(st *state) error {
		st.seq.event++
		next = st.seq.event
		return nil
	})
	return next, err
}

func (r *EventRepository) Create(_ context.Context, event discipline.Event) error {
	return r.access.write(func(st *state) error {
		if _, exists := st.events[event.ID]; exists {
			return fmt.Errorf("event %d already exists", event.ID)
		}
		st.events[event.ID] = event
		st.eventOrder = append(st.eventOrder, event.ID)
		st.eventsByMatch[event.MatchID] = append(st.eventsByMatch[event.MatchID], event.ID)
		return nil
	})
}

func (r *EventRepository) ListByMatch(_ context.Context, matchID int64) ([]discipline.Event, error) {
	out := make([]discipline.Event, 0)
	err := r.access.read(func(st *state) error {
		for _, id := range st.eventsByMatch[matchID] {
			out = append(out, st.events[id])
		}
		return nil
	})
	return out, err
}

func (r *EventRepository) ListByPlayer(_ context.Context, tournamentID, playerID string) ([]discipline.Event, error) {
	out := make([]discipline.Event, 0)
	err := r.access.read(func(st *state) error {
		for _, id := range st.eventOrder {
			ev := st.events[id]
			if ev.TournamentID == tournamentID && ev.PlayerID == playerID {
				out = append(out, ev)
			}
		}
		return nil
	})
	return out, err
}

func (r *EventRepository) CountByPlayerInMatches(_ context.Context, playerID string, matchIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int)
	err := r.access.read(func(st *state) error {
		for _, matchID := range matchIDs {
			for _, id := range st.eventsByMatch[matchID] {
				if st.events[id].PlayerID == playerID {
					out[matchID]++
				}
			}
		}
		return nil
	})
	return out, err
}

type SuspensionRepository struct {
	access access
}

func (r *SuspensionRepository) NextID(_ context.Context) (int64, error) {
	var next int64
	err := r.access.write(func(st *state) error {
		st.seq.suspension++
		next = st.seq.suspension
		return nil
	})
	return next, err
}

func (r *SuspensionRepository) Create(_ context.Context, s discipline.Suspension) error {
	return r.access.write(func(st *state) error {
		if _, exists := st.suspensions[s.ID]; exists {
			return fmt.Errorf("suspension %d already exists", s.ID)
		}
		if s.IsActive() {
			for _, id := range st.suspensionOrder {
				other := st.suspensions[id]
				if other.IsActive() && other.TournamentID == s.TournamentID && other.PlayerID == s.PlayerID {
					return fmt.Errorf("%w: player=%s suspension=%d", discipline.ErrPlayerAlreadySanctioned, s.PlayerID, other.ID)
				}
			}
		}
		st.suspensions[s.ID] = cloneSuspension(s)
		st.suspensionOrder = append(st.suspensionOrder, s.ID)
		return nil
	})
}

func (r *SuspensionRepository) GetActive(ctx context.Context, tournamentID, playerID string) (discipline.Suspension, bool, error) {
	items, err := r.ListActiveByPlayers(ctx, tournamentID, []string{playerID})
	if err != nil || len(items) == 0 {
		return discipline.Suspension{}, false, err
	}
	return items[0], true, nil
}

func (r *SuspensionRepository) ListActiveByTournament(_ context.Context, tournamentID string) ([]discipline.Suspension, error) {
	return r.list(func(s discipline.Suspension) bool {
		return s.IsActive() && s.TournamentID == tournamentID
	})
}

func (r *SuspensionRepository) ListActiveByPlayers(_ context.Context, tournamentID string, playerIDs []string) ([]discipline.Suspension, error) {
	players := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		players[id] = struct{}{}
	}
	return r.list(func(s discipline.Suspension) bool {
		_, ok := players[s.PlayerID]
		return ok && s.IsActive() && s.TournamentID == tournamentID
	})
}

func (r *SuspensionRepository) ListByPlayer(_ context.Context, tournamentID, playerID string) ([]discipline.Suspension, error) {
	return r.list(func(s discipline.Suspension) bool {
		return s.TournamentID == tournamentID && s.PlayerID == playerID
	})
}

func (r *SuspensionRepository) CountActiveByPlayer(_ context.Context, playerID string) (int, error) {
	items, err := r.list(func(s discipline.Suspension) bool {
		return s.IsActive() && s.PlayerID == playerID
	})
	return len(items), err
}

func (r *SuspensionRepository) MarkServed(_ context.Context, suspensionID int64, at time.Time) (bool, error) {
	served := false
	err := r.access.write(func(st *state) error {
		s, ok := st.suspensions[suspensionID]
		if !ok || !s.IsActive() {
			return nil
		}
		s.Status = discipline.SuspensionServed
		servedAt := at
		s.ServedAt = &servedAt
		st.suspensions[suspensionID] = s
		served = true
		return nil
	})
	return served, err
}

func (r *SuspensionRepository) list(keep func(discipline.Suspension) bool) ([]discipline.Suspension, error) {
	out := make([]discipline.Suspension, 0)
	err := r.access.read(func(st *state) error {
		for _, id := range st.suspensionOrder {
			if s := st.suspensions[id]; keep(s) {
				out = append(out, cloneSuspension(s))
			}
		}
		return nil
	})
	return out, err
}
