package screener

import (
	"context"

	"trade-signals/observability"
	"trade-signals/services"
)

// UniverseProvider supplies the candidate symbols for one asset class
type UniverseProvider interface {
	Symbols(ctx context.Context) []string
}

// StaticUniverse is a fixed, configured symbol list
type StaticUniverse []string

// Symbols returns a copy of the list
func (u StaticUniverse) Symbols(ctx context.Context) []string {
	out := make([]string, len(u))
	copy(out, u)
	return out
}

// DynamicUniverse asks an upstream for the current symbols and falls back to a fixed list
type DynamicUniverse struct {
	name     string
	source   services.SymbolSource
	limit    int
	fallback StaticUniverse
}

// NewDynamicUniverse creates a DynamicUniverse. name identifies the source in logs.
func NewDynamicUniverse(name string, source services.SymbolSource, limit int, fallback []string) *DynamicUniverse {
	return &DynamicUniverse{
		name:     name,
		source:   source,
		limit:    limit,
		fallback: StaticUniverse(fallback),
	}
}

// Symbols returns the upstream list, or the fallback list when the upstream fails or returns nothing
func (u *DynamicUniverse) Symbols(ctx context.Context) []string {
	symbols, err := u.source.TopSymbols(ctx, u.limit)
	if err != nil {
		observability.Warn("universe fetch failed, using configured list",
			"source", u.name,
			"error", err)
		return u.fallback.Symbols(ctx)
	}
	if len(symbols) == 0 {
		observability.Warn("universe source returned no symbols, using configured list", "source", u.name)
		return u.fallback.Symbols(ctx)
	}
	return symbols
}

var _ UniverseProvider = StaticUniverse(nil)
var _ UniverseProvider = (*DynamicUniverse)(nil)
