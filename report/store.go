package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a table ID is not in the store.
var ErrNotFound = errors.New("table not found")

// schemaV1 holds one row per table; the CBOR body is the source of truth and
// the remaining columns exist for listing and lookup.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS result_tables (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    params_hash TEXT NOT NULL,
    seed TEXT NOT NULL,
    runs INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    body BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_result_tables_kind ON result_tables(kind, created_at);
CREATE INDEX IF NOT EXISTS idx_result_tables_params ON result_tables(params_hash);
`

// Store persists tables in a SQLite database for the plotting layer.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save inserts or replaces t.
func (s *Store) Save(ctx context.Context, t *Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := MarshalCBOR(t)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO result_tables (id, kind, params_hash, seed, runs, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(),
		t.Kind,
		t.ParamsHash,
		strconv.FormatUint(t.Seed, 10),
		t.Runs,
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		body,
	)
	if err != nil {
		return fmt.Errorf("failed to save table %s: %w", t.ID, err)
	}
	return nil
}

// Load returns the table with the given ID.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM result_tables WHERE id = ?`, id.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", id, err)
	}
	return UnmarshalCBOR(body)
}

// List returns stored tables of the given kind, oldest first. An empty kind
// lists every table.
func (s *Store) List(ctx context.Context, kind string) ([]*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT body FROM result_tables`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []*Table
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t, err := UnmarshalCBOR(body)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
