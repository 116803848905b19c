package service

import (
	"sync"

	"invoicechat/backend/internal/domain"
)

// sessionLocks serializes turns per session. A turn that arrives while
// another is in flight for the same session is rejected, not queued.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// acquire takes the lock for sessionID without blocking. It returns a release
// function on success and ErrSessionBusy when the session already has a turn
// in flight.
func (l *sessionLocks) acquire(sessionID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, domain.ErrSessionBusy
	}
	return m.Unlock, nil
}

// forget drops the lock entry for a deleted session.
func (l *sessionLocks) forget(sessionID string) {
	l.mu.Lock()
	delete(l.locks, sessionID)
	l.mu.Unlock()
}
