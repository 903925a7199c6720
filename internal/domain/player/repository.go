package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	ListByTeams(ctx context.Context, teamIDs []string) ([]Player, error)
	UpdateStatus(ctx context.Context, playerID string, status Status) error
}
