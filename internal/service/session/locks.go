package session

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// userLocks provides per-user mutual exclusion for planning calls. Each
// in-flight user gets a weighted semaphore of capacity one; TryAcquire makes
// concurrent calls fail fast instead of queueing. Entries are removed on
// release, so the map only holds users with a planning call in flight.
type userLocks struct {
	mu   sync.Mutex
	sems map[uuid.UUID]*semaphore.Weighted
}

func newUserLocks() *userLocks {
	return &userLocks{sems: make(map[uuid.UUID]*semaphore.Weighted)}
}

// tryAcquire attempts to take the user's planning slot without blocking.
// The semaphore is only ever touched under mu, which keeps release's map
// pruning safe.
func (l *userLocks) tryAcquire(userID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[userID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[userID] = sem
	}
	return sem.TryAcquire(1)
}

// release frees the user's planning slot and drops the map entry.
func (l *userLocks) release(userID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sem, ok := l.sems[userID]; ok {
		sem.Release(1)
		delete(l.sems, userID)
	}
}
