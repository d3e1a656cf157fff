// Package registry keeps the set of module names declared during one
// interpreter session. Names are interned in a fixed-size Arena; a parallel
// slice of 64-bit hashes gives fast duplicate rejection, and every hash hit
// is confirmed with a full string comparison.
package registry

import (
	"hash/fnv"
)

const growAlignment = 16

// Registry is an append-only, deduplicated set of module names.
type Registry struct {
	arena   *Arena
	entries []Span
	hashes  []uint64
	hash    func(string) uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithHash replaces the hash function.
func WithHash(fn func(string) uint64) Option {
	return func(r *Registry) { r.hash = fn }
}

func New(arenaSize int, opts ...Option) *Registry {
	r := &Registry{
		arena: NewArena(arenaSize),
		hash:  hashName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers name. It returns false without changing anything when the
// name is empty or already present, and ErrArenaExhausted when the name
// does not fit in the arena.
func (r *Registry) Add(name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	h := r.hash(name)
	if r.find(name, h) >= 0 {
		return false, nil
	}
	span, err := r.arena.Intern(name)
	if err != nil {
		return false, err
	}
	r.grow()
	r.entries = append(r.entries, span)
	r.hashes = append(r.hashes, h)
	return true, nil
}

func (r *Registry) Contains(name string) bool {
	return name != "" && r.find(name, r.hash(name)) >= 0
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Names returns the registered names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, sp := range r.entries {
		names[i] = r.arena.String(sp)
	}
	return names
}

// ArenaUsed returns the number of arena bytes holding names.
func (r *Registry) ArenaUsed() int {
	return r.arena.Len()
}

func (r *Registry) find(name string, h uint64) int {
	for i, candidate := range r.hashes {
		if candidate != h {
			continue
		}
		if r.arena.String(r.entries[i]) == name {
			return i
		}
	}
	return -1
}

// grow makes room for one more entry, doubling capacity rounded up to
// growAlignment.
func (r *Registry) grow() {
	n := len(r.entries)
	if n < cap(r.entries) && n < cap(r.hashes) {
		return
	}
	newCap := alignUp(max(2*cap(r.entries), n+1), growAlignment)

	entries := make([]Span, n, newCap)
	copy(entries, r.entries)
	r.entries = entries

	hashes := make([]uint64, n, newCap)
	copy(hashes, r.hashes)
	r.hashes = hashes
}

func alignUp(size, alignment int) int {
	return (size + alignment - 1) &^ (alignment - 1)
}

func hashName(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}
