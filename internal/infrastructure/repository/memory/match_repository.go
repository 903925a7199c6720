package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/riskibarqy/league-engine/internal/domain/match"
)

type MatchRepository struct {
	access access
}

func (r *MatchRepository) GetByID(_ context.Context, matchID int64) (match.Match, bool, error) {
	var (
		item match.Match
		ok   bool
	)
	err := r.access.read(func(st *state) error {
		item, ok = st.matches[matchID]
		item = cloneMatch(item)
		return nil
	})
	return item, ok, err
}

// Lock is GetByID: transactions already hold the store exclusively.
func (r *MatchRepository) Lock(ctx context.Context, matchID int64) (match.Match, bool, error) {
	return r.GetByID(ctx, matchID)
}

func (r *MatchRepository) ListByTournament(_ context.Context, tournamentID string) ([]match.Match, error) {
	out := make([]match.Match, 0)
	err := r.access.read(func(st *state) error {
		for _, id := range st.matchOrder {
			if m := st.matches[id]; m.TournamentID == tournamentID {
				out = append(out, cloneMatch(m))
			}
		}
		return nil
	})
	return out, err
}

func (r *MatchRepository) ListByTeam(_ context.Context, tournamentID, teamID string) ([]match.Match, error) {
	out := make([]match.Match, 0)
	err := r.access.read(func(st *state) error {
		for _, id := range st.matchesByTeam[teamKey(tournamentID, teamID)] {
			out = append(out, cloneMatch(st.matches[id]))
		}
		return nil
	})
	return out, err
}

func (r *MatchRepository) NextID(_ context.Context) (int64, error) {
	var next int64
	err := r.access.write(func(st *state) error {
		st.seq.match++
		next = st.seq.match
		return nil
	})
	return next, err
}

func (r *MatchRepository) Create(_ context.Context, matches []match.Match) error {
	return r.access.write(func(st *state) error {
		for _, m := range matches {
			if _, exists := st.matches[m.ID]; exists {
				return fmt.Errorf("match %d already exists", m.ID)
			}
		}
		for _, m := range matches {
			st.matches[m.ID] = cloneMatch(m)
			st.matchOrder = append(st.matchOrder, m.ID)
			for _, team := range []string{m.HomeTeamID, m.AwayTeamID} {
				if team == "" {
					continue
				}
				key := teamKey(m.TournamentID, team)
				st.matchesByTeam[key] = append(st.matchesByTeam[key], m.ID)
			}
		}
		return nil
	})
}

func (r *MatchRepository) Transition(_ context.Context, t match.Transition) (bool, error) {
	applied := false
	err := r.access.write(func(st *state) error {
		m, ok := st.matches[t.MatchID]
		if !ok || !slices.Contains(t.From, m.Status) {
			return nil
		}

		m.Status = t.To
		if t.Score != nil {
			score := *t.Score
			m.Score = &score
		}
		m.Notes = append(m.Notes, t.Notes...)
		m.HomeBonus = t.HomeBonus
		m.AwayBonus = t.AwayBonus
		if t.To.IsTerminal() && !t.At.IsZero() {
			at := t.At
			m.FinishedAt = &at
		}
		st.matches[t.MatchID] = m
		applied = true
		return nil
	})
	return applied, err
}
