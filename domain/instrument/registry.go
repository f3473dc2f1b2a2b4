package instrument

import (
	"fmt"
)

// ID is a dense instrument identifier assigned at registry construction.
// IDs index directly into the engine's shard table.
type ID uint32

// Registry holds the closed universe of tradable instruments.
// It is built once at startup and is immutable afterwards, so lookups
// need no synchronization.
type Registry struct {
	symbols []string
	byName  map[string]ID
}

// NewRegistry builds a registry from an ordered list of symbols.
// The ID of a symbol is its position in the list.
func NewRegistry(symbols []string) (*Registry, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("instrument universe is empty")
	}

	r := &Registry{
		symbols: make([]string, len(symbols)),
		byName:  make(map[string]ID, len(symbols)),
	}
	for i, sym := range symbols {
		if sym == "" {
			return nil, fmt.Errorf("empty symbol at position %d", i)
		}
		if _, dup := r.byName[sym]; dup {
			return nil, fmt.Errorf("duplicate symbol %q", sym)
		}
		r.symbols[i] = sym
		r.byName[sym] = ID(i)
	}
	return r, nil
}

// Lookup resolves a symbol to its ID.
func (r *Registry) Lookup(symbol string) (ID, bool) {
	id, ok := r.byName[symbol]
	return id, ok
}

// Symbol returns the symbol for an ID.
func (r *Registry) Symbol(id ID) (string, bool) {
	if int(id) >= len(r.symbols) {
		return "", false
	}
	return r.symbols[id], true
}

// Contains reports whether id belongs to the universe.
func (r *Registry) Contains(id ID) bool {
	return int(id) < len(r.symbols)
}

// Count returns the universe size.
func (r *Registry) Count() int {
	return len(r.symbols)
}

// Symbols returns a copy of the universe in ID order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.symbols))
	copy(out, r.symbols)
	return out
}

// GenerateUniverse produces a synthetic universe "PFX1".."PFXn".
// Intended for harnesses and local runs; production universes come
// from an external source.
func GenerateUniverse(prefix string, n int) []string {
	symbols := make([]string, n)
	for i := 0; i < n; i++ {
		symbols[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return symbols
}
