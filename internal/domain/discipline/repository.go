package discipline

import (
	"context"
	"time"
)

// EventRepository stores match events in ingestion order.
type EventRepository interface {
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, event Event) error
	ListByMatch(ctx context.Context, matchID int64) ([]Event, error)
	ListByPlayer(ctx context.Context, tournamentID, playerID string) ([]Event, error)
	// CountByPlayerInMatches returns the number of events per match for the
	// given matches. Matches without events are absent.
	CountByPlayerInMatches(ctx context.Context, playerID string, matchIDs []int64) (map[int64]int, error)
}

// SuspensionRepository allows at most one active suspension per player and
// tournament.
type SuspensionRepository interface {
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, suspension Suspension) error
	GetActive(ctx context.Context, tournamentID, playerID string) (Suspension, bool, error)
	ListActiveByTournament(ctx context.Context, tournamentID string) ([]Suspension, error)
	ListActiveByPlayers(ctx context.Context, tournamentID string, playerIDs []string) ([]Suspension, error)
	ListByPlayer(ctx context.Context, tournamentID, playerID string) ([]Suspension, error)
	// CountActiveByPlayer counts active suspensions across all tournaments.
	CountActiveByPlayer(ctx context.Context, playerID string) (int, error)
	// MarkServed reports false when the suspension was no longer active.
	MarkServed(ctx context.Context, suspensionID int64, at time.Time) (bool, error)
}
