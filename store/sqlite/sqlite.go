/*
Package sqlite provides a SQLite-backed implementation of journal.Journal.

PURPOSE:
  Keeps the operation journal in a SQLite table so operators can inspect
  it with ordinary SQL tooling. Use ":memory:" (the server default) for a
  journal that lives only as long as the process.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the journal table
  - DELETE only through Reset (which clears everything)
  - Entry ids are UNIQUE; re-appending the same id is rejected

KEY TABLES:
  journal_entries: one row per executed command

INDEXES:
  - idx_journal_entries_op: filtering by operation

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of database/sql.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the writer.

USAGE:
  store, err := sqlite.New("./data/journal.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - journal/journal.go: Interface definition
  - journal/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/cashback-ledger/command"
	"github.com/warp/cashback-ledger/journal"
)

// ErrDuplicateEntry is returned when an entry id is appended twice.
var ErrDuplicateEntry = errors.New("duplicate journal entry")

// Store implements journal.Journal using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ journal.Journal = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Journal (append-only)
	CREATE TABLE IF NOT EXISTS journal_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		op TEXT NOT NULL,
		logical_ts INTEGER NOT NULL,
		args_json TEXT NOT NULL,
		result TEXT NOT NULL,
		ok BOOLEAN NOT NULL,
		error TEXT,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_entries_op
		ON journal_entries(op);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// JOURNAL (journal.Journal interface)
// =============================================================================

// Append adds an entry and returns it with its assigned Seq.
func (s *Store) Append(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	argsJSON, err := json.Marshal(e.Args)
	if err != nil {
		return e, fmt.Errorf("failed to encode args: %w", err)
	}

	query := `
		INSERT INTO journal_entries
		(id, op, logical_ts, args_json, result, ok, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		e.ID,
		string(e.Op),
		e.Timestamp,
		string(argsJSON),
		e.Result,
		e.OK,
		nullString(e.Error),
		e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return e, ErrDuplicateEntry
		}
		return e, fmt.Errorf("failed to append journal entry: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return e, fmt.Errorf("failed to read journal seq: %w", err)
	}
	e.Seq = seq
	return e, nil
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT seq, id, op, logical_ts, args_json, result, ok, error, recorded_at
		FROM journal_entries
		ORDER BY seq DESC
		LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset clears all entries (used when the ledger is reset).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM journal_entries"); err != nil {
		return fmt.Errorf("failed to reset journal: %w", err)
	}
	return nil
}

// CountByOp returns how many entries each operation has.
func (s *Store) CountByOp(ctx context.Context) (map[command.Op]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT op, COUNT(*) FROM journal_entries GROUP BY op")
	if err != nil {
		return nil, fmt.Errorf("failed to count journal: %w", err)
	}
	defer rows.Close()

	counts := make(map[command.Op]int)
	for rows.Next() {
		var (
			op    string
			count int
		)
		if err := rows.Scan(&op, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[command.Op(op)] = count
	}
	return counts, rows.Err()
}

func scanEntry(rows *sql.Rows) (journal.Entry, error) {
	var (
		e          journal.Entry
		op         string
		argsJSON   string
		errText    sql.NullString
		recordedAt string
	)

	err := rows.Scan(&e.Seq, &e.ID, &op, &e.Timestamp, &argsJSON,
		&e.Result, &e.OK, &errText, &recordedAt)
	if err != nil {
		return e, fmt.Errorf("failed to scan journal entry: %w", err)
	}

	e.Op = command.Op(op)
	e.Error = errText.String
	if err := json.Unmarshal([]byte(argsJSON), &e.Args); err != nil {
		return e, fmt.Errorf("failed to decode args: %w", err)
	}
	e.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
	return e, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
