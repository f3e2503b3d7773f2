package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"trade-signals/models"
	"trade-signals/observability"
)

// SQLiteStore persists cache entries and the call budget in a local SQLite database
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serialises writers and keeps the WAL pragma in effect
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	observability.Info("sqlite store opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sentiment_cache (
			namespace   TEXT    NOT NULL,
			key         TEXT    NOT NULL,
			payload     BLOB    NOT NULL,
			created_at  INTEGER NOT NULL,
			ttl_seconds INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (namespace, key)
		)`,
		`CREATE TABLE IF NOT EXISTS call_budget (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			calls_today    INTEGER NOT NULL,
			last_call_at   INTEGER NOT NULL,
			last_call_date TEXT    NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Backend() string { return BackendSQLite }

// LoadEntries returns every entry stored under namespace
func (s *SQLiteStore) LoadEntries(ctx context.Context, namespace string) (entries []models.CacheEntry, err error) {
	done := observe(BackendSQLite, "load_entries")
	defer func() { done(err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, payload, created_at, ttl_seconds
		FROM sentiment_cache
		WHERE namespace = ?
	`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.CacheEntry
		var payload []byte
		var createdAt, ttlSeconds int64
		if err := rows.Scan(&e.Key, &payload, &createdAt, &ttlSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		e.Payload = payload
		e.CreatedAt = fromUnixNano(createdAt)
		e.TTL = time.Duration(ttlSeconds) * time.Second
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PutEntry inserts or replaces an entry
func (s *SQLiteStore) PutEntry(ctx context.Context, namespace string, entry models.CacheEntry) (err error) {
	done := observe(BackendSQLite, "put_entry")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sentiment_cache (namespace, key, payload, created_at, ttl_seconds)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (namespace, key)
		DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at, ttl_seconds = excluded.ttl_seconds
	`, namespace, entry.Key, []byte(entry.Payload), toUnixNano(entry.CreatedAt), int64(entry.TTL/time.Second))
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}
	return nil
}

// DeleteEntries removes keys from namespace in one transaction
func (s *SQLiteStore) DeleteEntries(ctx context.Context, namespace string, keys []string) (err error) {
	if len(keys) == 0 {
		return nil
	}
	done := observe(BackendSQLite, "delete_entries")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM sentiment_cache WHERE namespace = ? AND key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, namespace, k); err != nil {
			return fmt.Errorf("failed to delete cache entry %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// LoadBudget returns the persisted budget, or nil when none was saved
func (s *SQLiteStore) LoadBudget(ctx context.Context) (budget *models.CallBudget, err error) {
	done := observe(BackendSQLite, "load_budget")
	defer func() { done(err) }()

	var b models.CallBudget
	var lastCallAt int64
	err = s.db.QueryRowContext(ctx, `
		SELECT calls_today, last_call_at, last_call_date FROM call_budget WHERE id = 1
	`).Scan(&b.CallsToday, &lastCallAt, &b.LastCallDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query call budget: %w", err)
	}
	b.LastCallAt = fromUnixNano(lastCallAt)
	return &b, nil
}

// SaveBudget replaces the budget row
func (s *SQLiteStore) SaveBudget(ctx context.Context, budget models.CallBudget) (err error) {
	done := observe(BackendSQLite, "save_budget")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO call_budget (id, calls_today, last_call_at, last_call_date)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET calls_today = excluded.calls_today, last_call_at = excluded.last_call_at, last_call_date = excluded.last_call_date
	`, budget.CallsToday, toUnixNano(budget.LastCallAt), budget.LastCallDate)
	if err != nil {
		return fmt.Errorf("failed to save call budget: %w", err)
	}
	return nil
}

// Health checks if the database connection is healthy
func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// toUnixNano maps the zero time to 0 so it survives a round trip
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
