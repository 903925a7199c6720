package fixture

import (
	"errors"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
)

func TestRoundRobin_FourTeamsSinglePass(t *testing.T) {
	t.Parallel()

	pairings, err := RoundRobin([]string{"A", "B", "C", "D"}, 1)
	if err != nil {
		t.Fatalf("RoundRobin error: %v", err)
	}
	if len(pairings) != 6 {
		t.Fatalf("expected 6 matches, got %d", len(pairings))
	}

	perRound := map[int]int{}
	seen := map[string]struct{}{}
	for _, p := range pairings {
		if p.IsBye() {
			t.Fatalf("unexpected bye in even field: %+v", p)
		}
		perRound[p.Round]++
		key := unordered(p.Home, p.Away)
		if _, dup := seen[key]; dup {
			t.Fatalf("pair %s repeated", key)
		}
		seen[key] = struct{}{}
	}
	if len(perRound) != 3 {
		t.Fatalf("expected 3 rounds, got %d", len(perRound))
	}
	for round, count := range perRound {
		if count != 2 {
			t.Fatalf("round %d has %d matches, want 2", round, count)
		}
	}
}

func TestRoundRobin_OddFieldGetsOneByePerRound(t *testing.T) {
	t.Parallel()

	teams := []string{"A", "B", "C", "D", "E"}
	pairings, err := RoundRobin(teams, 1)
	if err != nil {
		t.Fatalf("RoundRobin error: %v", err)
	}

	byes := map[int]string{}
	real := 0
	rested := map[string]int{}
	for _, p := range pairings {
		if p.Home == "" {
			t.Fatalf("bye must keep the real team at home: %+v", p)
		}
		if p.IsBye() {
			if prev, ok := byes[p.Round]; ok {
				t.Fatalf("round %d has two byes: %s and %s", p.Round, prev, p.Home)
			}
			byes[p.Round] = p.Home
			rested[p.Home]++
			continue
		}
		real++
	}
	if real != MatchCount(len(teams), 1) {
		t.Fatalf("expected %d real matches, got %d", MatchCount(len(teams), 1), real)
	}
	if len(byes) != len(teams) {
		t.Fatalf("expected one bye in each of %d rounds, got %d", len(teams), len(byes))
	}
	for _, team := range teams {
		if rested[team] != 1 {
			t.Fatalf("team %s rested %d times, want 1", team, rested[team])
		}
	}
}

func TestRoundRobin_DoublePassSwapsVenues(t *testing.T) {
	t.Parallel()

	pairings, err := RoundRobin([]string{"A", "B", "C", "D"}, 2)
	if err != nil {
		t.Fatalf("RoundRobin error: %v", err)
	}
	if len(pairings) != 12 {
		t.Fatalf("expected 12 matches, got %d", len(pairings))
	}

	ordered := map[string]int{}
	for _, p := range pairings {
		ordered[p.Home+">"+p.Away]++
		if p.Pass == 2 && p.Round <= 3 {
			t.Fatalf("second pass must continue round numbering: %+v", p)
		}
	}
	for key, count := range ordered {
		if count != 1 {
			t.Fatalf("fixture %s appears %d times", key, count)
		}
	}
	if len(ordered) != 12 {
		t.Fatalf("expected every ordered pair once, got %d distinct", len(ordered))
	}
}

func TestRoundRobin_NoTeamPlaysTwiceInARound(t *testing.T) {
	t.Parallel()

	faker := gofakeit.New(7)
	for n := 2; n <= 13; n++ {
		teams := make([]string, 0, n)
		for i := 0; i < n; i++ {
			teams = append(teams, fmt.Sprintf("%s-%d", faker.City(), i))
		}

		pairings, err := RoundRobin(teams, 1)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		busy := map[int]map[string]struct{}{}
		pairs := map[string]struct{}{}
		real := 0
		for _, p := range pairings {
			if busy[p.Round] == nil {
				busy[p.Round] = map[string]struct{}{}
			}
			for _, team := range []string{p.Home, p.Away} {
				if team == "" {
					continue
				}
				if _, ok := busy[p.Round][team]; ok {
					t.Fatalf("n=%d: team %s plays twice in round %d", n, team, p.Round)
				}
				busy[p.Round][team] = struct{}{}
			}
			if p.IsBye() {
				continue
			}
			real++
			pairs[unordered(p.Home, p.Away)] = struct{}{}
		}
		if real != n*(n-1)/2 || len(pairs) != real {
			t.Fatalf("n=%d: got %d matches over %d distinct pairs", n, real, len(pairs))
		}
	}
}

func TestRoundRobin_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		teams   []string
		passes  int
		wantErr error
	}{
		{name: "single team", teams: []string{"A"}, passes: 1, wantErr: ErrInsufficientTeams},
		{name: "no teams", teams: nil, passes: 1, wantErr: ErrInsufficientTeams},
		{name: "duplicate team", teams: []string{"A", "B", "A"}, passes: 1, wantErr: ErrInvalidTeams},
		{name: "blank team", teams: []string{"A", " "}, passes: 1, wantErr: ErrInvalidTeams},
		{name: "three passes", teams: []string{"A", "B"}, passes: 3, wantErr: ErrInvalidPasses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RoundRobin(tt.teams, tt.passes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func unordered(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
