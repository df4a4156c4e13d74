package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one schema change, applied inside a transaction.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

// migrations is the ordered chain. Append only: released migrations are
// never edited.
var migrations = []migration{
	{
		version:     1,
		description: "baseline schema",
		apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(baselineSchema)
			return err
		},
	},
	{
		version:     2,
		description: "schedule and occupancy lookup indexes",
		apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_schedule_slot_competition ON schedule_slot(competition_id);
				CREATE INDEX IF NOT EXISTS idx_schedule_slot_school ON schedule_slot(competition_id, school_id);
				CREATE INDEX IF NOT EXISTS idx_task_school_status ON task(school_id, status);
				CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
			`)
			return err
		},
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the database's current schema version. A
// database without version tracking reports 0.
// PRE: db is a valid connection
// POST: returns version >= 0
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

// MigrateDB brings the database schema to the latest version. Each
// pending migration runs in its own transaction and records its
// version, so a failure leaves the database at the last good version.
// The dsn is only used for log context.
// PRE: db is a valid connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dsn string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}

		slog.Info("db_migration_applied", "version", m.version, "description", m.description, "dsn", dsn)
	}

	return nil
}
