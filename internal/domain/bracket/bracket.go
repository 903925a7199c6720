package bracket

import (
	"errors"
	"fmt"
)

var (
	ErrNoQualifiedTeams           = errors.New("no qualified teams")
	ErrUnknownClassificationLevel = errors.New("unknown classification level")
)

const (
	PhaseFinal        = "FINAL"
	PhaseSemifinal    = "SEMIFINAL"
	PhaseQuarterfinal = "QUARTERFINAL"
	PhaseRoundOf16    = "ROUND_OF_16"
	PhaseRoundOf32    = "ROUND_OF_32"
)

var phaseByLevel = map[int]string{
	1: PhaseFinal,
	2: PhaseSemifinal,
	3: PhaseQuarterfinal,
	4: PhaseRoundOf16,
	5: PhaseRoundOf32,
}

// PhaseForLevel maps a tournament classification level to its first knockout phase.
func PhaseForLevel(level int) (string, error) {
	phase, ok := phaseByLevel[level]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownClassificationLevel, level)
	}
	return phase, nil
}

// Shuffler is the random source used to draw the bracket. *rand.Rand from
// math/rand/v2 satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Pair is one knockout tie. Home is the first team drawn.
type Pair struct {
	Home string
	Away string
}

// Draw shuffles the teams and pairs consecutive entries. With an odd count the
// last drawn team is returned as unpaired.
func Draw(teamIDs []string, shuffler Shuffler) ([]Pair, string, error) {
	if len(teamIDs) == 0 {
		return nil, "", ErrNoQualifiedTeams
	}

	drawn := append([]string(nil), teamIDs...)
	if shuffler != nil {
		shuffler.Shuffle(len(drawn), func(i, j int) {
			drawn[i], drawn[j] = drawn[j], drawn[i]
		})
	}

	pairs := make([]Pair, 0, len(drawn)/2)
	for i := 0; i+1 < len(drawn); i += 2 {
		pairs = append(pairs, Pair{Home: drawn[i], Away: drawn[i+1]})
	}

	unpaired := ""
	if len(drawn)%2 == 1 {
		unpaired = drawn[len(drawn)-1]
	}
	return pairs, unpaired, nil
}
