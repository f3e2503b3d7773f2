package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trade-signals/models"
	"trade-signals/observability"
)

// FileStore keeps everything in one JSON document that is rewritten after every mutation.
// An empty path keeps the document in memory only.
type FileStore struct {
	mu   sync.Mutex
	path string
	doc  fileDocument
}

type fileDocument struct {
	Entries map[string]map[string]fileEntry `json:"entries"`
	Budget  *fileBudget                     `json:"budget,omitempty"`
}

type fileEntry struct {
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
}

type fileBudget struct {
	LastCallAt   time.Time `json:"last_call_at"`
	LastCallDate string    `json:"last_call_date"`
	CallsToday   int       `json:"calls_today"`
}

// NewFileStore opens the document at path, starting empty when it does not exist.
// A document that cannot be parsed is logged and replaced on the next write.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		doc:  fileDocument{Entries: make(map[string]map[string]fileEntry)},
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		observability.Warn("store file is corrupt, starting empty", "path", path, "error", err)
		return s, nil
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]map[string]fileEntry)
	}
	s.doc = doc

	observability.Info("file store opened", "path", path)
	return s, nil
}

func (s *FileStore) Backend() string { return BackendFile }

// LoadEntries returns every entry stored under namespace
func (s *FileStore) LoadEntries(ctx context.Context, namespace string) ([]models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.doc.Entries[namespace]
	entries := make([]models.CacheEntry, 0, len(bucket))
	for key, e := range bucket {
		entries = append(entries, models.CacheEntry{
			Key:       key,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
			TTL:       time.Duration(e.TTLSeconds) * time.Second,
		})
	}
	return entries, nil
}

// PutEntry inserts or replaces an entry and rewrites the document
func (s *FileStore) PutEntry(ctx context.Context, namespace string, entry models.CacheEntry) (err error) {
	done := observe(BackendFile, "put_entry")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.doc.Entries[namespace]
	if !ok {
		bucket = make(map[string]fileEntry)
		s.doc.Entries[namespace] = bucket
	}
	bucket[entry.Key] = fileEntry{
		Payload:    entry.Payload,
		CreatedAt:  entry.CreatedAt,
		TTLSeconds: int64(entry.TTL / time.Second),
	}
	return s.flush()
}

// DeleteEntries removes keys from namespace and rewrites the document
func (s *FileStore) DeleteEntries(ctx context.Context, namespace string, keys []string) (err error) {
	if len(keys) == 0 {
		return nil
	}
	done := observe(BackendFile, "delete_entries")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.doc.Entries[namespace]
	for _, k := range keys {
		delete(bucket, k)
	}
	return s.flush()
}

// LoadBudget returns the persisted budget, or nil when none was saved
func (s *FileStore) LoadBudget(ctx context.Context) (*models.CallBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Budget == nil {
		return nil, nil
	}
	return &models.CallBudget{
		CallsToday:   s.doc.Budget.CallsToday,
		LastCallAt:   s.doc.Budget.LastCallAt,
		LastCallDate: s.doc.Budget.LastCallDate,
	}, nil
}

// SaveBudget replaces the budget and rewrites the document
func (s *FileStore) SaveBudget(ctx context.Context, budget models.CallBudget) (err error) {
	done := observe(BackendFile, "save_budget")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Budget = &fileBudget{
		LastCallAt:   budget.LastCallAt,
		LastCallDate: budget.LastCallDate,
		CallsToday:   budget.CallsToday,
	}
	return s.flush()
}

// Health checks that the document's directory is still writable
func (s *FileStore) Health(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store directory %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// flush writes the document to a temp file and renames it over the target.
// Caller must hold s.mu.
func (s *FileStore) flush() error {
	if s.path == "" {
		return nil
	}

	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("marshal store document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
