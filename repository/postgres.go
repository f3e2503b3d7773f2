package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"trade-signals/models"
	"trade-signals/observability"
)

// DBTX is an interface that both pgxpool.Pool and pgx.Tx satisfy.
// This allows PostgresStore methods to work with either a connection pool
// or a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists cache entries and the call budget in PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
	db   DBTX // The actual executor (pool or transaction)
}

// NewPostgresStore creates a PostgresStore with a connection pool and runs migrations
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	if connString == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, db: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	observability.Info("postgres store opened")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sentiment_cache (
			namespace   TEXT        NOT NULL,
			key         TEXT        NOT NULL,
			payload     JSONB       NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			ttl_seconds BIGINT      NOT NULL DEFAULT 0,
			PRIMARY KEY (namespace, key)
		)`,
		`CREATE TABLE IF NOT EXISTS call_budget (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			calls_today    INTEGER     NOT NULL,
			last_call_at   TIMESTAMPTZ,
			last_call_date TEXT        NOT NULL
		)`,
	}

	tx, txStore, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, stmt := range stmts {
		if _, err := txStore.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// WithTx returns a new PostgresStore that uses the given transaction.
func (s *PostgresStore) WithTx(tx pgx.Tx) *PostgresStore {
	return &PostgresStore{pool: s.pool, db: tx}
}

// BeginTx starts a new transaction and returns a PostgresStore that uses it.
// The caller is responsible for calling Commit() or Rollback() on the transaction.
func (s *PostgresStore) BeginTx(ctx context.Context) (pgx.Tx, *PostgresStore, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, s.WithTx(tx), nil
}

func (s *PostgresStore) Backend() string { return BackendPostgres }

// LoadBudget returns the persisted budget, or nil when none was saved
func (s *PostgresStore) LoadBudget(ctx context.Context) (budget *models.CallBudget, err error) {
	done := observe(BackendPostgres, "load_budget")
	defer func() { done(err) }()

	var b models.CallBudget
	var lastCallAt *time.Time
	err = s.db.QueryRow(ctx, `
		SELECT calls_today, last_call_at, last_call_date FROM call_budget WHERE id = 1
	`).Scan(&b.CallsToday, &lastCallAt, &b.LastCallDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query call budget: %w", err)
	}
	if lastCallAt != nil {
		b.LastCallAt = *lastCallAt
	}
	return &b, nil
}

// SaveBudget replaces the budget row
func (s *PostgresStore) SaveBudget(ctx context.Context, budget models.CallBudget) (err error) {
	done := observe(BackendPostgres, "save_budget")
	defer func() { done(err) }()

	var lastCallAt *time.Time
	if !budget.LastCallAt.IsZero() {
		lastCallAt = &budget.LastCallAt
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO call_budget (id, calls_today, last_call_at, last_call_date)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET calls_today = EXCLUDED.calls_today, last_call_at = EXCLUDED.last_call_at, last_call_date = EXCLUDED.last_call_date
	`, budget.CallsToday, lastCallAt, budget.LastCallDate)
	if err != nil {
		return fmt.Errorf("failed to save call budget: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Health checks if the database connection is healthy
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Pool returns the underlying connection pool for advanced operations.
// This is primarily intended for testing and cleanup operations.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}
