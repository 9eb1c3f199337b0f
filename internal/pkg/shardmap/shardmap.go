package shardmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShards is used when New receives a non-positive shard count.
const DefaultShards = 64

// Map is a string-keyed map split into independently locked shards.
//
// Operations on a single key are serialized by that key's shard lock.
// Operations on keys in different shards never contend.
type Map[V any] struct {
	shards []*shard[V]
	seed   uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New builds a Map with n shards.
func New[V any](n int) *Map[V] {
	if n <= 0 {
		n = DefaultShards
	}

	shards := make([]*shard[V], n)
	for i := range shards {
		shards[i] = &shard[V]{items: make(map[string]V)}
	}

	return &Map[V]{shards: shards, seed: 0x9747b28c}
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	h := murmur3.Sum32WithSeed([]byte(key), m.seed)
	return m.shards[h%uint32(len(m.shards))]
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (m *Map[V]) Set(key string, v V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = v
	s.mu.Unlock()
}

// SetIfAbsent stores v only when key is not present and reports whether it did.
func (m *Map[V]) SetIfAbsent(key string, v V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = v
	return true
}

// Delete removes key.
func (m *Map[V]) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Action tells Compute what to do with the value fn returned.
type Action int

const (
	// Keep leaves the stored value untouched.
	Keep Action = iota
	// Store writes the returned value under the key.
	Store
	// Remove deletes the key.
	Remove
)

// Compute runs fn under the key's write lock with the current value (if any)
// and applies the returned Action. No other operation on the same key can
// interleave with fn, so read-check-write sequences are atomic.
func (m *Map[V]) Compute(key string, fn func(cur V, exists bool) (V, Action)) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[key]
	next, act := fn(cur, ok)

	switch act {
	case Store:
		s.items[key] = next
	case Remove:
		delete(s.items, key)
	case Keep:
	}
}

// DeleteIf removes every entry for which pred returns true and reports how
// many were removed. Shards are locked one at a time.
func (m *Map[V]) DeleteIf(pred func(key string, v V) bool) int {
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if pred(k, v) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}

	return removed
}

// Len returns the number of entries. Concurrent writers may make the result
// stale by the time it is returned.
func (m *Map[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}

	return n
}
