package cooldown

import (
	"sync"
	"time"
)

// Timer is the cancellation handle of a scheduled expiry.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc in production.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type expiryEntry[V any] struct {
	value V
	timer Timer
	gen   uint64
}

// ExpiryMap is a map whose entries delete themselves once their TTL elapses.
// Every entry owns at most one one-shot timer; there is no sweeper.
type ExpiryMap[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*expiryEntry[V]
	afterFunc AfterFunc
	gen       uint64
}

// NewExpiryMap returns an empty map. A nil afterFunc uses time.AfterFunc.
func NewExpiryMap[K comparable, V any](afterFunc AfterFunc) *ExpiryMap[K, V] {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &ExpiryMap[K, V]{
		entries:   make(map[K]*expiryEntry[V]),
		afterFunc: afterFunc,
	}
}

// Get returns the live value for key.
func (m *ExpiryMap[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value and (re)arms the expiry. ttl <= 0 never expires.
// The timer is scheduled outside the lock, so afterFunc may run f inline.
func (m *ExpiryMap[K, V]) Set(key K, value V, ttl time.Duration) {
	m.mu.Lock()
	if old, ok := m.entries[key]; ok && old.timer != nil {
		old.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.entries[key] = &expiryEntry[V]{value: value, gen: gen}
	m.mu.Unlock()

	if ttl <= 0 {
		return
	}
	timer := m.afterFunc(ttl, func() { m.expire(key, gen) })

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && e.gen == gen {
		e.timer = timer
		return
	}
	// Expired inline, replaced, deleted or closed meanwhile.
	timer.Stop()
}

// Update replaces the value of a live entry without touching its expiry.
func (m *ExpiryMap[K, V]) Update(key K, value V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return false
	}
	e.value = value
	return true
}

// Delete removes key and cancels its timer.
func (m *ExpiryMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(m.entries, key)
	}
}

// Len returns the number of live entries.
func (m *ExpiryMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close cancels every pending timer and empties the map.
func (m *ExpiryMap[K, V]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(m.entries, key)
	}
}

// expire only removes the entry generation that scheduled it, so a timer
// that lost the race with Set cannot delete the re-armed entry.
func (m *ExpiryMap[K, V]) expire(key K, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && e.gen == gen {
		delete(m.entries, key)
	}
}
