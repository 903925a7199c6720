package standing

import "context"

// Repository persists group tables. ListByGroup and ListByTournament return
// records in insertion order; ranking is applied by callers.
type Repository interface {
	Get(ctx context.Context, key Key) (Record, bool, error)
	// Lock reads a record and holds it for the rest of the transaction.
	Lock(ctx context.Context, key Key) (Record, bool, error)
	UpsertZero(ctx context.Context, key Key) (Record, error)
	// Save overwrites an existing record and fails with ErrInconsistentWrite
	// when the record is missing.
	Save(ctx context.Context, record Record) error
	SetQualified(ctx context.Context, key Key, qualified bool) error
	ListByGroup(ctx context.Context, tournamentID, groupID string) ([]Record, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]Record, error)
}
