package history

import (
	"sync"
)

// Store keeps the most recent entries per key, newest first. Each key has
// its own lock, so callers with different keys never wait on each other.
type Store[K comparable, V any] struct {
	capacity int
	mu       sync.RWMutex
	rings    map[K]*ring[V]
}

type ring[V any] struct {
	mu    sync.RWMutex
	buf   []V
	head  int // index of the next write
	count int
}

func New[K comparable, V any](capacity int) *Store[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Store[K, V]{
		capacity: capacity,
		rings:    make(map[K]*ring[V]),
	}
}

func (s *Store[K, V]) Capacity() int {
	return s.capacity
}

// Add records entry as the newest for key, dropping the oldest once the
// key is at capacity.
func (s *Store[K, V]) Add(key K, entry V) {
	r := s.ring(key)

	r.mu.Lock()
	r.push(entry)
	r.mu.Unlock()
}

// List returns a copy of the entries for key, newest first. Unknown keys
// yield an empty slice.
func (s *Store[K, V]) List(key K) []V {
	s.mu.RLock()
	r, ok := s.rings[key]
	s.mu.RUnlock()
	if !ok {
		return []V{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// AddAndList adds entry and returns the resulting snapshot without letting
// another Add on the same key slip in between.
func (s *Store[K, V]) AddAndList(key K, entry V) []V {
	r := s.ring(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.push(entry)
	return r.snapshot()
}

// Keys reports how many keys hold at least one entry.
func (s *Store[K, V]) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rings)
}

func (s *Store[K, V]) ring(key K) *ring[V] {
	s.mu.RLock()
	r, ok := s.rings[key]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.rings[key]; ok {
		return r
	}
	r = &ring[V]{buf: make([]V, s.capacity)}
	s.rings[key] = r
	return r
}

func (r *ring[V]) push(entry V) {
	r.buf[r.head] = entry
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *ring[V]) snapshot() []V {
	out := make([]V, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head-1-i+len(r.buf))%len(r.buf)]
	}
	return out
}
