package service

import (
	"sync"

	"github.com/google/uuid"
)

// UserLocks serializes balance-mutating flows per user. Two concurrent
// checkouts (or top-ups) by the same user run one after the other, which
// together with the row locks in the repository closes the read-then-commit
// race on balances and usage limits.
type UserLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[uuid.UUID]*userLock)}
}

// Lock acquires the per-user mutex and returns the release func. Entries are
// reference-counted so the map does not grow with the user base.
func (l *UserLocks) Lock(userID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
