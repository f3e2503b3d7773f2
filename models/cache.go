package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is an immutable cached payload
type CacheEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	TTL       time.Duration   `json:"ttl"`
}

// IsExpired reports whether the entry is past its TTL at now. A zero TTL never expires.
func (e CacheEntry) IsExpired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.After(e.CreatedAt.Add(e.TTL))
}

// CallBudget tracks commentary calls for the current calendar day
type CallBudget struct {
	CallsToday   int       `json:"calls_today"`
	LastCallAt   time.Time `json:"last_call_at"`
	LastCallDate string    `json:"last_call_date"`
}
