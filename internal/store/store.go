// Package store persists wizard containers in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formwizard/pkg/scheme"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Option customises a Store.
type Option func(*Store)

// WithClock sets the time source stamped on committed rows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a wizard.Backend over a SQLite file. Each scheme owns one row per
// flattened container key.
type Store struct {
	conn *sql.DB
	now  func() time.Time
}

var _ wizard.Backend = (*Store)(nil)

// Open opens (or creates) the database at path and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// one writer at a time
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return ErrClosed
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Container returns an empty working set for id backed by the store.
func (s *Store) Container(id scheme.ID) *wizard.MemoryContainer {
	return wizard.NewContainer(s, id)
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS step_state (
			scheme_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value_json TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (scheme_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_step_state_scheme ON step_state(scheme_id)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Commit replaces the committed values of id in one transaction.
func (s *Store) Commit(ctx context.Context, id scheme.ID, values map[string]any) error {
	if s.conn == nil {
		return ErrClosed
	}
	flat := wizard.Flatten(values)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM step_state WHERE scheme_id = ?`, id.String()); err != nil {
		return fmt.Errorf("store: clear %s: %w", id, err)
	}
	stamp := s.now().UnixMilli()
	for _, key := range keys {
		encoded, err := json.Marshal(flat[key])
		if err != nil {
			return fmt.Errorf("store: encode %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO step_state (scheme_id, key, value_json, updated_at) VALUES (?, ?, ?, ?)`,
			id.String(), key, string(encoded), stamp,
		); err != nil {
			return fmt.Errorf("store: write %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Fetch returns the committed values of id as nested maps. An unknown scheme
// yields an empty map.
func (s *Store) Fetch(ctx context.Context, id scheme.ID) (map[string]any, error) {
	if s.conn == nil {
		return nil, ErrClosed
	}
	rows, err := s.conn.QueryContext(ctx, `SELECT key, value_json FROM step_state WHERE scheme_id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", id, err)
	}
	defer rows.Close()

	flat := make(map[string]any)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", key, err)
		}
		flat[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return wizard.Expand(flat)
}

// Reset deletes the committed values of id.
func (s *Store) Reset(ctx context.Context, id scheme.ID) error {
	if s.conn == nil {
		return ErrClosed
	}
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM step_state WHERE scheme_id = ?`, id.String()); err != nil {
		return fmt.Errorf("store: reset %s: %w", id, err)
	}
	return nil
}

// Schemes lists the schemes with committed values.
func (s *Store) Schemes(ctx context.Context) ([]scheme.ID, error) {
	if s.conn == nil {
		return nil, ErrClosed
	}
	rows, err := s.conn.QueryContext(ctx, `SELECT DISTINCT scheme_id FROM step_state ORDER BY scheme_id`)
	if err != nil {
		return nil, fmt.Errorf("store: query schemes: %w", err)
	}
	defer rows.Close()

	var ids []scheme.ID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		id, err := scheme.ParseID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdatedAt returns the last commit time of id, with millisecond precision,
// and whether it has rows.
func (s *Store) UpdatedAt(ctx context.Context, id scheme.ID) (time.Time, bool, error) {
	if s.conn == nil {
		return time.Time{}, false, ErrClosed
	}
	var stamp sql.NullInt64
	err := s.conn.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM step_state WHERE scheme_id = ?`, id.String()).Scan(&stamp)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("store: updated_at %s: %w", id, err)
	}
	if !stamp.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(stamp.Int64).UTC(), true, nil
}
