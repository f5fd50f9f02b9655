package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	dbutil "github.com/cadencefm/cadence/internal/db"
)

// Entry is one key/value pair of a batch write.
type Entry struct {
	Key   string
	Value Value
}

// Store persists typed settings.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (Value, bool, error)
	Set(ctx context.Context, key string, v Value) error
	// SetMany writes all entries atomically.
	SetMany(ctx context.Context, entries []Entry) error
}

// SQLite stores settings in the settings table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a store backed by db.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context, key string) (Value, bool, error) {
	var kind Kind
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, value FROM settings WHERE key = ?`, key).Scan(&kind, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Value{}, false, nil
	}
	if err != nil {
		return Value{}, false, err
	}
	v, err := decode(kind, raw)
	if err != nil {
		return Value{}, false, fmt.Errorf("setting %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, v Value) error {
	return s.SetMany(ctx, []Entry{{Key: key, Value: v}})
}

func (s *SQLite) SetMany(ctx context.Context, entries []Entry) error {
	return dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO settings (key, kind, value) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, value = excluded.value
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			if e.Value.IsZero() {
				return fmt.Errorf("setting %s: empty value", e.Key)
			}
			if _, err := stmt.ExecContext(ctx, e.Key, e.Value.Kind(), e.Value.encode()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Memory is an in-process Store, used by tests and as a fallback when
// no database is configured.
type Memory struct {
	mu     sync.Mutex
	values map[string]Value
	writes int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]Value)}
}

func (m *Memory) Get(_ context.Context, key string) (Value, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key string, v Value) error {
	return m.SetMany(ctx, []Entry{{Key: key, Value: v}})
}

func (m *Memory) SetMany(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.Value.IsZero() {
			return fmt.Errorf("setting %s: empty value", e.Key)
		}
	}
	for _, e := range entries {
		m.values[e.Key] = e.Value
	}
	m.writes++
	return nil
}

// Writes returns how many write batches were applied.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Verify implementations at compile time.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)
