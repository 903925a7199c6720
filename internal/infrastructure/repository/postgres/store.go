package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-engine/internal/domain/store"
)

// Store runs units of work on PostgreSQL. Repositories returned by
// Repositories() use autocommit; the ones passed to WithinTx share one
// transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Repositories() store.Repositories {
	return repositoriesFor(s.db)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, repositoriesFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit tx")
	}
	return nil
}

func repositoriesFor(db sqlx.ExtContext) store.Repositories {
	return store.Repositories{
		Tournaments: &TournamentRepository{db: db},
		Groups:      &GroupRepository{db: db},
		Players:     &PlayerRepository{db: db},
		Standings:   &StandingRepository{db: db},
		Matches:     &MatchRepository{db: db},
		Events:      &EventRepository{db: db},
		Suspensions: &SuspensionRepository{db: db},
	}
}
