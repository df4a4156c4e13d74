package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database: enables WAL and foreign keys, then
// runs the migration chain.
// PRE: db is a valid database connection
// POST: Schema is at the latest version
func InitDB(db *sql.DB, dsn string) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return MigrateDB(db, dsn)
}

// baselineSchema is migration 1: the full table set for a fresh
// install. IF NOT EXISTS keeps it safe on databases that predate
// version tracking.
const baselineSchema = `
CREATE TABLE IF NOT EXISTS school (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	district TEXT NOT NULL DEFAULT '',
	timezone TEXT NOT NULL DEFAULT 'UTC'
);

CREATE TABLE IF NOT EXISTS account (
	id TEXT PRIMARY KEY,
	school_id TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	created_at TEXT NOT NULL,
	failed_logins INTEGER NOT NULL DEFAULT 0,
	locked_until TEXT,
	password_change_required INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (school_id) REFERENCES school(id)
);

CREATE TABLE IF NOT EXISTS cadet (
	id TEXT PRIMARY KEY,
	school_id TEXT NOT NULL,
	account_id TEXT,
	name TEXT NOT NULL,
	rank TEXT NOT NULL DEFAULT '',
	let_level INTEGER NOT NULL DEFAULT 1,
	flight TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	FOREIGN KEY (school_id) REFERENCES school(id)
);

CREATE TABLE IF NOT EXISTS task (
	id TEXT PRIMARY KEY,
	school_id TEXT NOT NULL,
	cadet_id TEXT NOT NULL,
	title TEXT NOT NULL,
	details TEXT NOT NULL DEFAULT '',
	due_date TEXT,
	status TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	completed_at TEXT,
	FOREIGN KEY (cadet_id) REFERENCES cadet(id)
);

CREATE TABLE IF NOT EXISTS incident (
	id TEXT PRIMARY KEY,
	school_id TEXT NOT NULL,
	cadet_id TEXT NOT NULL,
	category TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	reported_by TEXT NOT NULL DEFAULT '',
	reported_at TEXT NOT NULL,
	FOREIGN KEY (cadet_id) REFERENCES cadet(id)
);

CREATE TABLE IF NOT EXISTS announcement (
	id TEXT PRIMARY KEY,
	school_id TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	status TEXT NOT NULL,
	pinned INTEGER NOT NULL DEFAULT 0,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	published_at TEXT,
	FOREIGN KEY (school_id) REFERENCES school(id)
);

CREATE TABLE IF NOT EXISTS budget_entry (
	id TEXT PRIMARY KEY,
	school_id TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	amount_cents INTEGER NOT NULL,
	kind TEXT NOT NULL,
	entered_by TEXT NOT NULL DEFAULT '',
	entered_at TEXT NOT NULL,
	FOREIGN KEY (school_id) REFERENCES school(id)
);

CREATE TABLE IF NOT EXISTS competition (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	fee_cents INTEGER NOT NULL DEFAULT 0,
	start_date TEXT NOT NULL,
	end_date TEXT
);

CREATE TABLE IF NOT EXISTS competition_event (
	id TEXT PRIMARY KEY,
	competition_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	fee_cents INTEGER NOT NULL DEFAULT 0,
	start_time TEXT,
	end_time TEXT,
	lunch_start TEXT,
	lunch_end TEXT,
	interval_minutes INTEGER NOT NULL DEFAULT 0,
	max_participants INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (competition_id) REFERENCES competition(id)
);

CREATE TABLE IF NOT EXISTS registration (
	id TEXT PRIMARY KEY,
	competition_id TEXT NOT NULL,
	school_id TEXT NOT NULL,
	total_fee_cents INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	paid INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	FOREIGN KEY (competition_id) REFERENCES competition(id),
	FOREIGN KEY (school_id) REFERENCES school(id),
	UNIQUE (competition_id, school_id)
);

CREATE TABLE IF NOT EXISTS event_registration (
	id TEXT PRIMARY KEY,
	competition_id TEXT NOT NULL,
	event_id TEXT NOT NULL,
	school_id TEXT NOT NULL,
	FOREIGN KEY (event_id) REFERENCES competition_event(id),
	UNIQUE (competition_id, event_id, school_id)
);

CREATE TABLE IF NOT EXISTS schedule_slot (
	id TEXT PRIMARY KEY,
	competition_id TEXT NOT NULL,
	event_id TEXT NOT NULL,
	school_id TEXT NOT NULL,
	scheduled_time TEXT NOT NULL,
	FOREIGN KEY (event_id) REFERENCES competition_event(id),
	UNIQUE (competition_id, event_id, scheduled_time)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	category TEXT NOT NULL,
	action TEXT NOT NULL,
	severity TEXT NOT NULL,
	actor_id TEXT NOT NULL DEFAULT '',
	actor_email TEXT NOT NULL DEFAULT '',
	actor_role TEXT NOT NULL DEFAULT '',
	school_id TEXT NOT NULL DEFAULT '',
	resource_id TEXT NOT NULL DEFAULT '',
	resource_type TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS outbox (
	id TEXT PRIMARY KEY,
	action_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	status TEXT NOT NULL,
	attempts INTEGER NOT NULL DEFAULT 0,
	max_attempts INTEGER NOT NULL DEFAULT 5,
	last_attempted_at TEXT,
	created_at TEXT NOT NULL,
	external_id TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT ''
);
`
