package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint derives a cache key from an identity (query or symbol) and a set of titles.
// Title order does not matter; a changed or added title produces a new key.
func Fingerprint(identity string, titles []string) string {
	sorted := make([]string, len(titles))
	copy(sorted, titles)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(identity))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, "\n")))

	return identity + "_" + hex.EncodeToString(h.Sum(nil))
}
