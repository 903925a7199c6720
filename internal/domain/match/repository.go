package match

import (
	"context"
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
)

// Transition moves one match to a new status when, and only when, its current
// status is one of From.
type Transition struct {
	MatchID   int64
	From      []Status
	To        Status
	Score     *Score
	Notes     []string
	HomeBonus standing.Bonus
	AwayBonus standing.Bonus
	At        time.Time
}

// Repository describes match persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, matchID int64) (Match, bool, error)
	// Lock is GetByID holding the match row until the transaction ends.
	Lock(ctx context.Context, matchID int64) (Match, bool, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]Match, error)
	ListByTeam(ctx context.Context, tournamentID, teamID string) ([]Match, error)
	// NextID draws from the match sequence.
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, matches []Match) error
	// Transition reports false when the match was not in one of the From states.
	Transition(ctx context.Context, t Transition) (bool, error)
}
