package database

import (
	"database/sql"
	"embed"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mbolis/survey-builder/log"
	"github.com/pkg/errors"
)

//go:embed migrations
var schemaMigrations embed.FS

// migrateDB applies every pending embedded migration and returns the
// schema version the database ends up at.
func migrateDB(db *sql.DB) (uint, error) {
	src, err := iofs.New(schemaMigrations, "migrations")
	if err != nil {
		return 0, errors.Wrap(err, "migrate.source")
	}

	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return 0, errors.Wrap(err, "migrate.driver")
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return 0, errors.Wrap(err, "migrate.init")
	}
	migrator.Log = migrateLogger{}

	from, dirty, err := schemaVersion(migrator)
	if err != nil {
		return 0, err
	}
	if dirty {
		return from, errors.Errorf("schema version %d is dirty, a previous migration failed halfway", from)
	}

	err = migrator.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debugf("schema up to date at version %d", from)
		return from, nil
	}
	if err != nil {
		return from, errors.Wrap(err, "migrate.up")
	}

	to, _, err := schemaVersion(migrator)
	if err != nil {
		return from, err
	}
	log.Infof("schema migrated from version %d to %d", from, to)
	return to, nil
}

// schemaVersion reads the current version, 0 for a fresh database.
func schemaVersion(migrator *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "migrate.version")
	}
	return version, dirty, nil
}

// migrateLogger sends golang-migrate progress to the debug log.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, args ...any) {
	log.Debugf(strings.TrimSpace(format), args...)
}

func (migrateLogger) Verbose() bool {
	return log.IsLevelEnabled(log.DebugLevel)
}
