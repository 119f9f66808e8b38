package dex

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/dexkit/errs"
)

// KeyKind tells how a pool assigns keys to its items.
type KeyKind uint8

const (
	// KeyIndex pools key items by their position in an identifier table.
	KeyIndex KeyKind = iota
	// KeyOffset pools key items by the file offset they were parsed from, or by a
	// provisional key for items appended after parsing.
	KeyOffset
)

func (k KeyKind) String() string {
	if k == KeyIndex {
		return "index"
	}

	return "offset"
}

// Pool is an insertion-ordered collection of items of one section, keyed by index
// or offset. A key maps to exactly one item for the lifetime of the pool; keys are
// never renumbered, not even on removal.
//
// A Pool is not safe for concurrent use.
type Pool[V Item] struct {
	kind    KeyKind
	entries map[uint32]V
	order   []uint32
	next    uint32 // next index key for KeyIndex pools
}

// NewPool creates an empty pool.
func NewPool[V Item](kind KeyKind) *Pool[V] {
	return &Pool[V]{
		kind:    kind,
		entries: make(map[uint32]V),
	}
}

// Kind returns how the pool assigns keys.
func (p *Pool[V]) Kind() KeyKind {
	return p.kind
}

// Len returns the number of live items.
func (p *Pool[V]) Len() int {
	return len(p.order)
}

// Get returns the item stored under key.
func (p *Pool[V]) Get(key uint32) (V, bool) {
	v, ok := p.entries[key]
	return v, ok
}

// Contains reports whether key is present.
func (p *Pool[V]) Contains(key uint32) bool {
	_, ok := p.entries[key]
	return ok
}

// Holds reports whether item is the live entry for its own key.
func (p *Pool[V]) Holds(item V) bool {
	got, ok := p.entries[item.Key()]
	return ok && any(got) == any(item)
}

// GetOrParse returns the cached item for key, or calls parse, caches the result
// under key and returns it. A failed parse caches nothing.
//
// Parameters:
//   - key: Pool key (the file offset for KeyOffset pools)
//   - parse: Called at most once per key while the key is cached
//
// Returns:
//   - V: The shared item for key
//   - error: Any error from parse
func (p *Pool[V]) GetOrParse(key uint32, parse func(key uint32) (V, error)) (V, error) {
	if v, ok := p.entries[key]; ok {
		return v, nil
	}

	v, err := parse(key)
	if err != nil {
		var zero V
		return zero, err
	}

	p.insert(key, v)

	return v, nil
}

// Append adds item to an index-keyed pool under the next index and returns it.
// Offset-keyed pools need an explicit key; use AppendWithKey.
func (p *Pool[V]) Append(item V) (uint32, error) {
	if p.kind != KeyIndex {
		return 0, fmt.Errorf("%w: offset-keyed pool requires an explicit key", errs.ErrStructuralInconsistency)
	}

	key := p.next
	p.insert(key, item)

	return key, nil
}

// AppendWithKey adds item under key. The key must not be in use.
func (p *Pool[V]) AppendWithKey(key uint32, item V) error {
	if _, ok := p.entries[key]; ok {
		return fmt.Errorf("%w: key 0x%x already in use", errs.ErrStructuralInconsistency, key)
	}
	p.insert(key, item)

	return nil
}

func (p *Pool[V]) insert(key uint32, item V) {
	item.base().key = key
	p.entries[key] = item
	p.order = append(p.order, key)
	if p.kind == KeyIndex && key >= p.next {
		p.next = key + 1
	}
}

// Remove deletes the entry for key without renumbering the remaining keys.
// It reports whether the key was present.
func (p *Pool[V]) Remove(key uint32) bool {
	if _, ok := p.entries[key]; !ok {
		return false
	}
	delete(p.entries, key)
	if i := slices.Index(p.order, key); i >= 0 {
		p.order = slices.Delete(p.order, i, i+1)
	}

	return true
}

// Keys returns the live keys in insertion order.
func (p *Pool[V]) Keys() []uint32 {
	return slices.Clone(p.order)
}

// All returns a restartable iterator over (key, item) pairs in insertion order.
func (p *Pool[V]) All() iter.Seq2[uint32, V] {
	return func(yield func(uint32, V) bool) {
		for _, key := range p.order {
			if !yield(key, p.entries[key]) {
				return
			}
		}
	}
}

// Values returns a restartable iterator over items in insertion order.
func (p *Pool[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, key := range p.order {
			if !yield(p.entries[key]) {
				return
			}
		}
	}
}

// Contiguous reports whether iteration yields keys 0..Len()-1 in order, as every
// identifier table requires.
func (p *Pool[V]) Contiguous() bool {
	for i, key := range p.order {
		if key != uint32(i) { //nolint:gosec
			return false
		}
	}

	return true
}

// poolView is the type-erased face of a Pool used for tag-driven access.
type poolView interface {
	Len() int
	Kind() KeyKind
	Contains(key uint32) bool
	Contiguous() bool
	Remove(key uint32) bool
	item(key uint32) (Item, bool)
	items() iter.Seq2[uint32, Item]
	appendItem(item Item, key uint32) (uint32, error)
}

func (p *Pool[V]) item(key uint32) (Item, bool) {
	v, ok := p.entries[key]
	if !ok {
		return nil, false
	}

	return v, true
}

func (p *Pool[V]) items() iter.Seq2[uint32, Item] {
	return func(yield func(uint32, Item) bool) {
		for key, v := range p.All() {
			if !yield(key, v) {
				return
			}
		}
	}
}

// appendItem adds an untyped item; key is ignored for index pools.
func (p *Pool[V]) appendItem(item Item, key uint32) (uint32, error) {
	v, ok := item.(V)
	if !ok {
		return 0, fmt.Errorf("%w: %T", errs.ErrItemTypeMismatch, item)
	}
	if p.kind == KeyIndex {
		return p.Append(v)
	}

	return key, p.AppendWithKey(key, v)
}
