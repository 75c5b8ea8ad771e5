package flow

import "sync"

// lockEntry holds one contact's mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// ContactLocker serializes engine invocations per (tenant, contact) so that
// two messages arriving concurrently from the same contact cannot race the
// session's read-then-write cycle. Entries are reference counted and removed
// when no caller holds them.
type ContactLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewContactLocker creates an empty locker.
func NewContactLocker() *ContactLocker {
	return &ContactLocker{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key and returns the matching unlock function.
func (l *ContactLocker) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
