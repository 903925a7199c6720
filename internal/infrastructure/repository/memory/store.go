package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/player"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
)

// Store keeps all engine state in process. Transactions are serialized: each
// one works on a copy of the state that replaces the live state on success.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type Seed struct {
	Tournaments []tournament.Tournament
	Groups      []tournament.Group
	Players     []player.Player
}

func NewStore(seed Seed) *Store {
	st := newState()
	for _, t := range seed.Tournaments {
		st.tournaments[t.ID] = t
		st.tournamentOrder = append(st.tournamentOrder, t.ID)
	}
	for _, g := range seed.Groups {
		st.groups[groupKey(g.TournamentID, g.ID)] = cloneGroup(g)
		st.groupOrder[g.TournamentID] = append(st.groupOrder[g.TournamentID], g.ID)
	}
	for _, p := range seed.Players {
		if p.Status == "" {
			p.Status = player.StatusActive
		}
		st.players[p.ID] = p
		st.playerOrder = append(st.playerOrder, p.ID)
	}
	return &Store{state: st}
}

func (s *Store) Repositories() store.Repositories {
	return repositoriesFor(liveAccess{store: s})
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(ctx, repositoriesFor(txAccess{state: draft})); err != nil {
		return err
	}
	s.state = draft
	return nil
}

func repositoriesFor(a access) store.Repositories {
	return store.Repositories{
		Tournaments: &TournamentRepository{access: a},
		Groups:      &GroupRepository{access: a},
		Players:     &PlayerRepository{access: a},
		Standings:   &StandingRepository{access: a},
		Matches:     &MatchRepository{access: a},
		Events:      &EventRepository{access: a},
		Suspensions: &SuspensionRepository{access: a},
	}
}

// access decides whether repositories see the live state under the store
// lock or a transaction draft that is already exclusively held.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type liveAccess struct {
	store *Store
}

func (a liveAccess) read(fn func(st *state) error) error {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.state)
}

func (a liveAccess) write(fn func(st *state) error) error {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.state)
}

type txAccess struct {
	state *state
}

func (a txAccess) read(fn func(st *state) error) error {
	return fn(a.state)
}

func (a txAccess) write(fn func(st *state) error) error {
	return fn(a.state)
}

type sequences struct {
	match      int64
	event      int64
	suspension int64
}

type state struct {
	tournaments     map[string]tournament.Tournament
	tournamentOrder []string
	groups          map[string]tournament.Group
	groupOrder      map[string][]string

	players     map[string]player.Player
	playerOrder []string

	standings     map[standing.Key]standing.Record
	standingOrder []standing.Key

	matches       map[int64]match.Match
	matchOrder    []int64
	matchesByTeam map[string][]int64

	events        map[int64]discipline.Event
	eventOrder    []int64
	eventsByMatch map[int64][]int64

	suspensions     map[int64]discipline.Suspension
	suspensionOrder []int64

	seq sequences
}

func newState() *state {
	return &state{
		tournaments:   make(map[string]tournament.Tournament),
		groups:        make(map[string]tournament.Group),
		groupOrder:    make(map[string][]string),
		players:       make(map[string]player.Player),
		standings:     make(map[standing.Key]standing.Record),
		matches:       make(map[int64]match.Match),
		matchesByTeam: make(map[string][]int64),
		events:        make(map[int64]discipline.Event),
		eventsByMatch: make(map[int64][]int64),
		suspensions:   make(map[int64]discipline.Suspension),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.tournaments {
		out.tournaments[k] = v
	}
	out.tournamentOrder = append([]string(nil), s.tournamentOrder...)
	for k, v := range s.groups {
		out.groups[k] = cloneGroup(v)
	}
	for k, v := range s.groupOrder {
		out.groupOrder[k] = append([]string(nil), v...)
	}
	for k, v := range s.players {
		out.players[k] = v
	}
	out.playerOrder = append([]string(nil), s.playerOrder...)
	for k, v := range s.standings {
		out.standings[k] = v
	}
	out.standingOrder = append([]standing.Key(nil), s.standingOrder...)
	for k, v := range s.matches {
		out.matches[k] = cloneMatch(v)
	}
	out.matchOrder = append([]int64(nil), s.matchOrder...)
	for k, v := range s.matchesByTeam {
		out.matchesByTeam[k] = append([]int64(nil), v...)
	}
	for k, v := range s.events {
		out.events[k] = v
	}
	out.eventOrder = append([]int64(nil), s.eventOrder...)
	for k, v := range s.eventsByMatch {
		out.eventsByMatch[k] = append([]int64(nil), v...)
	}
	for k, v := range s.suspensions {
		out.suspensions[k] = cloneSuspension(v)
	}
	out.suspensionOrder = append([]int64(nil), s.suspensionOrder...)
	out.seq = s.seq
	return out
}

func groupKey(tournamentID, groupID string) string {
	return tournamentID + "::" + groupID
}

func teamKey(tournamentID, teamID string) string {
	return tournamentID + "::" + teamID
}

func cloneGroup(g tournament.Group) tournament.Group {
	copied := g
	copied.TeamIDs = append([]string(nil), g.TeamIDs...)
	return copied
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	copied.Notes = append([]string(nil), m.Notes...)
	if m.Score != nil {
		score := *m.Score
		copied.Score = &score
	}
	if m.FinishedAt != nil {
		at := *m.FinishedAt
		copied.FinishedAt = &at
	}
	return copied
}

func cloneSuspension(s discipline.Suspension) discipline.Suspension {
	copied := s
	if s.ServedAt != nil {
		at := *s.ServedAt
		copied.ServedAt = &at
	}
	return copied
}
