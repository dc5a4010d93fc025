package schedule

import (
	"context"
	"sync"
)

// MutexGroupLock is an in-process GroupLocker keyed by group id. It is the
// default for single-instance deployments and tests; multi-instance
// deployments use the Redis-backed lock.
type MutexGroupLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMutexGroupLock() *MutexGroupLock {
	return &MutexGroupLock{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for groupID, creating it on first use, and returns
// its unlock function.
func (l *MutexGroupLock) Acquire(_ context.Context, groupID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[groupID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[groupID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
