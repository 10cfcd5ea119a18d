package store

import (
	"database/sql"

	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/migrations"
)

// DB wraps the raw database handle together with the application logger so
// repositories can log through a single value.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate applies all pending schema migrations to the underlying database.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
