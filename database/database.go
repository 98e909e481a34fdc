package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mbolis/survey-builder/config"
	"github.com/mbolis/survey-builder/log"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

func Open(cfg config.Config) (db *sql.DB, err error) {
	dsn := cfg.DBUrl
	if !strings.Contains(dsn, "?") {
		// foreign keys must be enabled on every pooled connection
		dsn += "?_foreign_keys=on"
	}

	db, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "db.open")
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	version, err := migrateDB(db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db.migrate")
	}
	log.Debugf("database %s open at schema version %d", cfg.DBUrl, version)

	return db, nil
}
