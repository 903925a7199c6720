package postgres

import (
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/riskibarqy/league-engine/db/migrations"
)

// NewMigrator returns a migrator over the embedded schema. sourceURL, when
// set, points at a migrations directory on disk instead.
func NewMigrator(dbURL, sourceURL string) (*migrate.Migrate, error) {
	if sourceURL != "" {
		m, err := migrate.New(sourceURL, dbURL)
		if err != nil {
			return nil, crerr.Wrapf(err, "create migrator from %s", sourceURL)
		}
		return m, nil
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, crerr.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, crerr.Wrap(err, "create migrator")
	}
	return m, nil
}

// MigrateUp applies every pending embedded migration.
func MigrateUp(dbURL string) error {
	m, err := NewMigrator(dbURL, "")
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return crerr.Wrap(err, "apply migrations")
	}
	return nil
}
