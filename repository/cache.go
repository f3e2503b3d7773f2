package repository

import (
	"context"
	"fmt"
	"time"

	"trade-signals/models"
)

// LoadEntries returns every entry stored under namespace
func (s *PostgresStore) LoadEntries(ctx context.Context, namespace string) (entries []models.CacheEntry, err error) {
	done := observe(BackendPostgres, "load_entries")
	defer func() { done(err) }()

	rows, err := s.db.Query(ctx, `
		SELECT key, payload, created_at, ttl_seconds
		FROM sentiment_cache
		WHERE namespace = $1
	`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.CacheEntry
		var payload []byte
		var ttlSeconds int64
		if err := rows.Scan(&e.Key, &payload, &e.CreatedAt, &ttlSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		e.Payload = payload
		e.TTL = time.Duration(ttlSeconds) * time.Second
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PutEntry stores an entry, replacing any previous payload under the same key
func (s *PostgresStore) PutEntry(ctx context.Context, namespace string, entry models.CacheEntry) (err error) {
	done := observe(BackendPostgres, "put_entry")
	defer func() { done(err) }()

	_, err = s.db.Exec(ctx, `
		INSERT INTO sentiment_cache (namespace, key, payload, created_at, ttl_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace, key)
		DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at, ttl_seconds = EXCLUDED.ttl_seconds
	`, namespace, entry.Key, []byte(entry.Payload), entry.CreatedAt, int64(entry.TTL/time.Second))
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// DeleteEntries removes cached entries by key
func (s *PostgresStore) DeleteEntries(ctx context.Context, namespace string, keys []string) (err error) {
	if len(keys) == 0 {
		return nil
	}
	done := observe(BackendPostgres, "delete_entries")
	defer func() { done(err) }()

	_, err = s.db.Exec(ctx, `
		DELETE FROM sentiment_cache WHERE namespace = $1 AND key = ANY($2)
	`, namespace, keys)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
