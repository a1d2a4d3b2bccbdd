package sqlite

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "statistics",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS daily_stats (
				day TEXT PRIMARY KEY,
				focus_sessions INTEGER NOT NULL DEFAULT 0,
				focus_seconds REAL NOT NULL DEFAULT 0,
				breaks INTEGER NOT NULL DEFAULT 0
			);`,
			`CREATE TABLE IF NOT EXISTS focus_sessions (
				id TEXT PRIMARY KEY,
				day TEXT NOT NULL,
				duration_seconds REAL NOT NULL,
				completed_at TEXT NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_focus_sessions_day ON focus_sessions(day, completed_at);`,
		},
	},
	{
		version: 2,
		name:    "tasks",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				done INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);`,
		},
	},
}

// SchemaVersion is the version Migrate brings a database to.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate applies every migration newer than the recorded version, each in
// its own transaction.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return err
		}
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return 0, fmt.Errorf("migrate: read current version: %w", err)
	}
	return current, nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate %d: begin transaction: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migrate %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, m.version); err != nil {
		return fmt.Errorf("migrate %d: record schema version: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate %d: commit transaction: %w", m.version, err)
	}
	return nil
}
