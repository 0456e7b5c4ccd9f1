package db

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order after the schema is created. Each must be
// idempotent. Append new migrations at the end.
var migrations = []string{
	// 1: expired sessions are pruned by expiry and listed per user.
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_email ON sessions(email)`,
}

// Migrate creates the schema and applies all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
