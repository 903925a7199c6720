package usecase

import (
	"errors"

	"github.com/riskibarqy/league-engine/internal/domain/bracket"
	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/fixture"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrDuplicateFixture is reported as a no-op result, never returned.
	ErrDuplicateFixture = errors.New("fixtures already generated")
)

// Stable reason codes returned to callers.
const (
	ReasonInsufficientTeams          = "INSUFFICIENT_TEAMS"
	ReasonDuplicateFixture           = "DUPLICATE_FIXTURE"
	ReasonAlreadyTerminalMatch       = "ALREADY_TERMINAL_MATCH"
	ReasonPlayerAlreadySanctioned    = "PLAYER_ALREADY_SANCTIONED"
	ReasonNoQualifiedTeams           = "NO_QUALIFIED_TEAMS"
	ReasonInconsistentStandingsWrite = "INCONSISTENT_STANDINGS_WRITE"
	ReasonInvalidInput               = "INVALID_INPUT"
	ReasonNotFound                   = "NOT_FOUND"
	ReasonDependencyUnavailable      = "DEPENDENCY_UNAVAILABLE"
	ReasonInternal                   = "INTERNAL"
)

// ReasonCode maps an error to its reason code. Domain errors win over the
// generic wrappers they may be joined with.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, standing.ErrInconsistentWrite):
		return ReasonInconsistentStandingsWrite
	case errors.Is(err, fixture.ErrInsufficientTeams):
		return ReasonInsufficientTeams
	case errors.Is(err, ErrDuplicateFixture):
		return ReasonDuplicateFixture
	case errors.Is(err, match.ErrAlreadyTerminal):
		return ReasonAlreadyTerminalMatch
	case errors.Is(err, discipline.ErrPlayerAlreadySanctioned):
		return ReasonPlayerAlreadySanctioned
	case errors.Is(err, bracket.ErrNoQualifiedTeams):
		return ReasonNoQualifiedTeams
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, fixture.ErrInvalidTeams),
		errors.Is(err, fixture.ErrInvalidPasses),
		errors.Is(err, bracket.ErrUnknownClassificationLevel):
		return ReasonInvalidInput
	case errors.Is(err, ErrDependencyUnavailable):
		return ReasonDependencyUnavailable
	default:
		return ReasonInternal
	}
}

// Outcome tells callers whether an operation changed state.
type Outcome string

const (
	OutcomeApplied         Outcome = "APPLIED"
	OutcomeNoOp            Outcome = "NO_OP"
	OutcomeAlreadyTerminal Outcome = "ALREADY_TERMINAL"
)
