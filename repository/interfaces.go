package repository

import (
	"context"

	"trade-signals/models"
)

// Store persists sentiment cache entries and the commentary call budget.
// Entries are grouped by namespace so the same fingerprint can live in several caches.
type Store interface {
	// Cache entries
	LoadEntries(ctx context.Context, namespace string) ([]models.CacheEntry, error)
	PutEntry(ctx context.Context, namespace string, entry models.CacheEntry) error
	DeleteEntries(ctx context.Context, namespace string, keys []string) error

	// Call budget; LoadBudget returns nil when nothing has been saved yet
	LoadBudget(ctx context.Context) (*models.CallBudget, error)
	SaveBudget(ctx context.Context, budget models.CallBudget) error

	// Health and lifecycle
	Health(ctx context.Context) error
	Backend() string
	Close() error
}

// Compile-time interface verification
var _ Store = (*FileStore)(nil)
var _ Store = (*SQLiteStore)(nil)
var _ Store = (*PostgresStore)(nil)
