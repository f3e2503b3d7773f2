package repository

import (
	"context"
	"fmt"

	"trade-signals/config"
	"trade-signals/observability"
)

// Backend names accepted by STORE_BACKEND
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open creates the store selected by cfg.Backend
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.FilePath)
	case BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// observe starts a store timer and returns a func that records the outcome of the operation
func observe(backend, operation string) func(error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	return func(err error) {
		timer.ObserveStore(backend, operation)
		if err != nil {
			metrics.RecordStoreError(backend, operation)
		}
	}
}
