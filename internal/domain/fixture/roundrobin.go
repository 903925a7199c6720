package fixture

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientTeams = errors.New("insufficient teams")
	ErrInvalidTeams      = errors.New("invalid team list")
	ErrInvalidPasses     = errors.New("invalid round robin passes")
)

// Pairing is one slot of a round-robin schedule. Away is empty for a bye.
type Pairing struct {
	// Round is 1-based and continues across passes.
	Round int
	// Pass is 1 for the first round robin and 2 for the return legs.
	Pass int
	Home string
	Away string
}

func (p Pairing) IsBye() bool {
	return p.Away == ""
}

// RoundRobin builds a circle-method schedule. The first team keeps its slot
// while the others rotate one position per round; an odd field gets a bye slot
// so every round has exactly one resting team. The second pass replays the
// first with home and away swapped.
func RoundRobin(teamIDs []string, passes int) ([]Pairing, error) {
	if passes < 1 || passes > 2 {
		return nil, fmt.Errorf("%w: passes must be 1 or 2, got %d", ErrInvalidPasses, passes)
	}
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 teams, got %d", ErrInsufficientTeams, len(teamIDs))
	}

	seen := make(map[string]struct{}, len(teamIDs))
	slots := make([]string, 0, len(teamIDs)+1)
	for _, id := range teamIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty team id", ErrInvalidTeams)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: duplicate team id %s", ErrInvalidTeams, id)
		}
		seen[id] = struct{}{}
		slots = append(slots, id)
	}
	if len(slots)%2 == 1 {
		slots = append(slots, "")
	}

	size := len(slots)
	roundsPerPass := size - 1
	out := make([]Pairing, 0, passes*roundsPerPass*size/2)
	for pass := 0; pass < passes; pass++ {
		for round := 0; round < roundsPerPass; round++ {
			for i := 0; i < size/2; i++ {
				home := slots[circleIndex(i, round, size)]
				away := slots[circleIndex(size-1-i, round, size)]
				// The fixed team alternates sides round by round.
				if i == 0 && round%2 == 1 {
					home, away = away, home
				}
				if pass%2 == 1 {
					home, away = away, home
				}
				if home == "" {
					home, away = away, home
				}
				out = append(out, Pairing{
					Round: pass*roundsPerPass + round + 1,
					Pass:  pass + 1,
					Home:  home,
					Away:  away,
				})
			}
		}
	}

	return out, nil
}

// circleIndex maps a position in round r to a slot. Position 0 is pinned; the
// remaining positions shift by one slot per round.
func circleIndex(position, round, size int) int {
	if position == 0 {
		return 0
	}
	ring := size - 1
	return (position-1+ring-round%ring)%ring + 1
}

// MatchCount is the number of non-bye pairings a schedule of n teams yields.
func MatchCount(n, passes int) int {
	if n < 2 {
		return 0
	}
	return passes * n * (n - 1) / 2
}
