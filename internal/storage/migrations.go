package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Segmentation runs
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    repo_dir TEXT NOT NULL,
    commit_sha TEXT,
    commit_subject TEXT,
    commit_author TEXT,
    files INTEGER DEFAULT 0,
    hunks INTEGER DEFAULT 0,
    changes INTEGER DEFAULT 0,
    groups_count INTEGER DEFAULT 0,
    analyzer_used BOOLEAN DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_sha ON runs(commit_sha);

-- Review groups
CREATE TABLE IF NOT EXISTS run_groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    num INTEGER NOT NULL,
    files TEXT NOT NULL,
    total_lines INTEGER NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
    UNIQUE(run_id, num)
);

CREATE INDEX IF NOT EXISTS idx_groups_run ON run_groups(run_id);

-- Change documents
CREATE TABLE IF NOT EXISTS changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL,
    run_id TEXT NOT NULL,
    change_id TEXT NOT NULL,
    file TEXT NOT NULL,
    symbol TEXT,
    header TEXT,
    diff TEXT NOT NULL,
    total_lines INTEGER NOT NULL,
    modifies TEXT,
    types TEXT,
    callers TEXT,
    calls TEXT,
    definition TEXT,
    FOREIGN KEY (group_id) REFERENCES run_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
    UNIQUE(run_id, change_id)
);

CREATE INDEX IF NOT EXISTS idx_changes_group ON changes(group_id);
CREATE INDEX IF NOT EXISTS idx_changes_run ON changes(run_id);
CREATE INDEX IF NOT EXISTS idx_changes_file ON changes(file);
CREATE INDEX IF NOT EXISTS idx_changes_symbol ON changes(symbol);

-- Full-text search on change documents
CREATE VIRTUAL TABLE IF NOT EXISTS changes_fts USING fts5(
    symbol, file, diff,
    content='changes',
    content_rowid='id'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS changes_ai AFTER INSERT ON changes BEGIN
    INSERT INTO changes_fts(rowid, symbol, file, diff)
    VALUES (new.id, new.symbol, new.file, new.diff);
END;

CREATE TRIGGER IF NOT EXISTS changes_ad AFTER DELETE ON changes BEGIN
    DELETE FROM changes_fts WHERE rowid = old.id;
END;

CREATE TRIGGER IF NOT EXISTS changes_au AFTER UPDATE ON changes BEGIN
    UPDATE changes_fts SET
        symbol = new.symbol,
        file = new.file,
        diff = new.diff
    WHERE rowid = new.id;
END;
`

const migrationV1Down = `
DROP TRIGGER IF EXISTS changes_au;
DROP TRIGGER IF EXISTS changes_ad;
DROP TRIGGER IF EXISTS changes_ai;

DROP TABLE IF EXISTS changes_fts;
DROP TABLE IF EXISTS changes;
DROP TABLE IF EXISTS run_groups;
DROP TABLE IF EXISTS runs;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	var currentVersion string
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	var migration *Migration
	for i := range AllMigrations {
		if AllMigrations[i].Version == currentVersion {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", currentVersion)
	}

	if _, err := db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", currentVersion, err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", currentVersion); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", currentVersion, err)
	}

	return nil
}
