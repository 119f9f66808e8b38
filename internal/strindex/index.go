// Package strindex maps string contents to the identifier-table indices that hold
// them, keyed by xxHash64 fingerprints.
package strindex

import (
	"github.com/arloliu/dexkit/internal/hash"
)

// Index records fingerprint to index mappings and detects fingerprint collisions.
//
// Lookups always confirm candidates against the real string, so a collision only
// costs an extra comparison.
type Index struct {
	entries      map[uint64][]uint32
	count        int
	hasCollision bool
	resolve      func(uint32) (string, bool)
}

// New creates an index whose candidates are confirmed through resolve.
func New(resolve func(idx uint32) (string, bool)) *Index {
	return &Index{
		entries: make(map[uint64][]uint32),
		resolve: resolve,
	}
}

// Add tracks the string s stored at idx.
func (x *Index) Add(s string, idx uint32) {
	h := hash.ID(s)
	if prev, ok := x.entries[h]; ok && !x.hasCollision {
		for _, p := range prev {
			if other, ok := x.resolve(p); ok && other != s {
				x.hasCollision = true
				break
			}
		}
	}
	x.entries[h] = append(x.entries[h], idx)
	x.count++
}

// Lookup returns every tracked index whose string equals s, in insertion order.
func (x *Index) Lookup(s string) []uint32 {
	candidates := x.entries[hash.ID(s)]
	if len(candidates) == 0 {
		return nil
	}

	out := make([]uint32, 0, len(candidates))
	for _, idx := range candidates {
		if got, ok := x.resolve(idx); ok && got == s {
			out = append(out, idx)
		}
	}

	return out
}

// HasCollision reports whether two different strings shared a fingerprint.
func (x *Index) HasCollision() bool {
	return x.hasCollision
}

// Count returns the number of tracked entries.
func (x *Index) Count() int {
	return x.count
}

// Reset clears all tracked entries and collision state.
func (x *Index) Reset() {
	clear(x.entries)
	x.count = 0
	x.hasCollision = false
}
