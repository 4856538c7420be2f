package commands

import (
	"database/sql"

	"github.com/teranos/tact/config"
	"github.com/teranos/tact/db"
	"github.com/teranos/tact/errors"
	"github.com/teranos/tact/logger"
)

// openDatabase opens and migrates the tact database. An empty dbPath
// falls back to the configured path.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := config.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		if path == "" {
			dbPath = "tact.db"
		} else {
			dbPath = path
		}
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	return database, nil
}
