package game

import "sync"

// playerLocks serializes operations per player identity. The read-modify-write
// of one ledger is a critical section; different players proceed in parallel.
type playerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for phone, creating it on first use. Locks are never
// released back; the player population is bounded by the tournament cap.
func (l *playerLocks) get(phone string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[phone]
	if !ok {
		m = &sync.Mutex{}
		l.locks[phone] = m
	}
	return m
}
