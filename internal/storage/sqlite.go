package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/diffscope/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens (creating when needed) the run store at dbPath and
// applies pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// SaveRun persists a run with its groups and changes in one transaction.
// An empty run ID is assigned a fresh UUID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, groups []*Group) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertRunWithQuerier(ctx, tx, run); err != nil {
		return err
	}
	for _, group := range groups {
		group.RunID = run.ID
		if err := s.insertGroupWithQuerier(ctx, tx, group); err != nil {
			return err
		}
		for _, change := range group.Changes {
			change.RunID = run.ID
			change.GroupID = group.ID
			if err := s.insertChangeWithQuerier(ctx, tx, change); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// insertRunWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertRunWithQuerier(ctx context.Context, q querier, run *Run) error {
	query := `
		INSERT INTO runs (id, repo_dir, commit_sha, commit_subject, commit_author,
		                  files, hunks, changes, groups_count, analyzer_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		run.ID, run.RepoDir, run.CommitSHA, run.CommitSubject, run.CommitAuthor,
		run.Files, run.Hunks, run.Changes, run.Groups, run.AnalyzerUsed, now)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	run.CreatedAt = now
	return nil
}

// insertGroupWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertGroupWithQuerier(ctx context.Context, q querier, group *Group) error {
	files, err := encodeList(group.Files)
	if err != nil {
		return err
	}
	result, err := q.ExecContext(ctx,
		"INSERT INTO run_groups (run_id, num, files, total_lines) VALUES (?, ?, ?, ?)",
		group.RunID, group.Num, files, group.TotalLines)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	group.ID = id
	return nil
}

// insertChangeWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertChangeWithQuerier(ctx context.Context, q querier, change *Change) error {
	typesJSON, err := encodeList(change.Types)
	if err != nil {
		return err
	}
	callersJSON, err := encodeList(change.Callers)
	if err != nil {
		return err
	}
	callsJSON, err := encodeList(change.Calls)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO changes (group_id, run_id, change_id, file, symbol, header, diff,
		                     total_lines, modifies, types, callers, calls, definition)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		change.GroupID, change.RunID, change.ChangeID, change.File, change.Symbol,
		change.Header, change.Diff, change.TotalLines, change.Modifies,
		typesJSON, callersJSON, callsJSON, change.Definition)
	if err != nil {
		return fmt.Errorf("failed to insert change: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	change.ID = id
	return nil
}

// getRunWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getRunWithQuerier(ctx context.Context, q querier, id string) (*Run, error) {
	query := `
		SELECT id, repo_dir, commit_sha, commit_subject, commit_author,
		       files, hunks, changes, groups_count, analyzer_used, created_at
		FROM runs
		WHERE id = ?
	`
	var run Run
	err := q.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.RepoDir, &run.CommitSHA, &run.CommitSubject, &run.CommitAuthor,
		&run.Files, &run.Hunks, &run.Changes, &run.Groups, &run.AnalyzerUsed, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, types.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun returns one run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	return s.getRunWithQuerier(ctx, s.querier(), id)
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit < 1 {
		limit = 10
	}
	query := `
		SELECT id, repo_dir, commit_sha, commit_subject, commit_author,
		       files, hunks, changes, groups_count, analyzer_used, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.RepoDir, &run.CommitSHA, &run.CommitSubject, &run.CommitAuthor,
			&run.Files, &run.Hunks, &run.Changes, &run.Groups, &run.AnalyzerUsed, &run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// ListGroups returns a run's groups ordered by group number. Changes are
// not populated; use ListChanges.
func (s *SQLiteStore) ListGroups(ctx context.Context, runID string) ([]*Group, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, run_id, num, files, total_lines
		FROM run_groups
		WHERE run_id = ?
		ORDER BY num
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []*Group
	for rows.Next() {
		var (
			group Group
			files string
		)
		if err := rows.Scan(&group.ID, &group.RunID, &group.Num, &files, &group.TotalLines); err != nil {
			return nil, err
		}
		if group.Files, err = decodeList(files); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}
	return groups, rows.Err()
}

const changeColumns = `id, group_id, run_id, change_id, file, symbol, header, diff,
       total_lines, modifies, types, callers, calls, definition`

// ListChanges returns a group's changes in insertion order.
func (s *SQLiteStore) ListChanges(ctx context.Context, groupID int64) ([]*Change, error) {
	query := "SELECT " + changeColumns + " FROM changes WHERE group_id = ? ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanChanges(rows)
}

// getChangeWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getChangeWithQuerier(ctx context.Context, q querier, runID, changeID string) (*Change, error) {
	query := "SELECT " + changeColumns + " FROM changes WHERE run_id = ? AND change_id = ?"
	change, err := scanChange(q.QueryRowContext(ctx, query, runID, changeID))
	if err == sql.ErrNoRows {
		return nil, types.ErrChangeNotFound
	}
	if err != nil {
		return nil, err
	}
	return change, nil
}

// GetChange returns one change by run ID and review identity.
func (s *SQLiteStore) GetChange(ctx context.Context, runID, changeID string) (*Change, error) {
	return s.getChangeWithQuerier(ctx, s.querier(), runID, changeID)
}

// SearchChanges runs a full-text query over a run's change documents
// (symbol, file, and diff text), best matches first.
func (s *SQLiteStore) SearchChanges(ctx context.Context, runID, query string, limit int) ([]*Change, error) {
	if limit < 1 {
		limit = 10
	}
	sqlQuery := `
		SELECT c.id, c.group_id, c.run_id, c.change_id, c.file, c.symbol, c.header, c.diff,
		       c.total_lines, c.modifies, c.types, c.callers, c.calls, c.definition
		FROM changes_fts f
		JOIN changes c ON c.id = f.rowid
		WHERE c.run_id = ? AND changes_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, sqlQuery, runID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search changes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanChanges(rows)
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChange(row rowScanner) (*Change, error) {
	var (
		change                 Change
		typesJSON, callersJSON string
		callsJSON              string
	)
	err := row.Scan(
		&change.ID, &change.GroupID, &change.RunID, &change.ChangeID,
		&change.File, &change.Symbol, &change.Header, &change.Diff,
		&change.TotalLines, &change.Modifies,
		&typesJSON, &callersJSON, &callsJSON, &change.Definition,
	)
	if err != nil {
		return nil, err
	}
	if change.Types, err = decodeList(typesJSON); err != nil {
		return nil, err
	}
	if change.Callers, err = decodeList(callersJSON); err != nil {
		return nil, err
	}
	if change.Calls, err = decodeList(callsJSON); err != nil {
		return nil, err
	}
	return &change, nil
}

func scanChanges(rows *sql.Rows) ([]*Change, error) {
	var changes []*Change
	for rows.Next() {
		change, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

// encodeList serializes a string list as JSON; nil encodes as "[]".
func encodeList(list []string) (string, error) {
	if list == nil {
		return "[]", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return list, nil
}
