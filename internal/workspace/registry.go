// Package workspace keeps per-session, in-memory state such as staged form
// drafts and cached list views. Nothing here is ever persisted.
package workspace

import (
	"sync"
	"time"
)

type key struct {
	session string
	name    string
}

type entry[T any] struct {
	value      T
	lastAccess time.Time
}

// Registry lazily creates one T per (session, name) and forgets entries that
// have been idle for longer than the TTL.
type Registry[T any] struct {
	mu         sync.Mutex
	entries    map[key]*entry[T]
	newValue   func(session, name string) T
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewRegistry creates a registry. A positive ttl starts a background sweep.
func NewRegistry[T any](ttl time.Duration, newValue func(session, name string) T) *Registry[T] {
	r := &Registry[T]{
		entries:    make(map[key]*entry[T]),
		newValue:   newValue,
		ttl:        ttl,
		maxEntries: 10000,
		now:        time.Now,
	}
	if ttl > 0 {
		go r.cleanupStale()
	}
	return r
}

// Get returns the value for (session, name), creating it on first use.
func (r *Registry[T]) Get(session, name string) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{session: session, name: name}
	e, ok := r.entries[k]
	if !ok {
		if len(r.entries) >= r.maxEntries {
			r.evictOldest()
		}
		e = &entry[T]{value: r.newValue(session, name)}
		r.entries[k] = e
	}
	e.lastAccess = r.now()
	return e.value
}

// Drop forgets everything held for session.
func (r *Registry[T]) Drop(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.entries {
		if k.session == session {
			delete(r.entries, k)
		}
	}
}

// Len reports how many entries are held.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes entries idle since before cutoff and returns how many were removed.
func (r *Registry[T]) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for k, e := range r.entries {
		if e.lastAccess.Before(cutoff) {
			delete(r.entries, k)
			removed++
		}
	}
	return removed
}

func (r *Registry[T]) evictOldest() {
	var (
		oldest     key
		oldestTime time.Time
		found      bool
	)
	for k, e := range r.entries {
		if !found || e.lastAccess.Before(oldestTime) {
			oldest, oldestTime, found = k, e.lastAccess, true
		}
	}
	if found {
		delete(r.entries, oldest)
	}
}

func (r *Registry[T]) cleanupStale() {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for range ticker.C {
		r.Sweep(r.now().Add(-r.ttl))
	}
}
