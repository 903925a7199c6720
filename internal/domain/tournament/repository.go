package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Tournament, error)
	GetByID(ctx context.Context, tournamentID string) (Tournament, bool, error)
	// Lock reads the tournament and holds it until the transaction ends, so
	// writers that check existing matches first run one at a time.
	Lock(ctx context.Context, tournamentID string) (Tournament, bool, error)
}

// GroupRepository returns groups with their ordered team membership.
type GroupRepository interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]Group, error)
	GetByID(ctx context.Context, tournamentID, groupID string) (Group, bool, error)
}
