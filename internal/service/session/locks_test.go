package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserLocksMutualExclusion(t *testing.T) {
	t.Parallel()

	locks := newUserLocks()
	userID := uuid.New()

	assert.True(t, locks.tryAcquire(userID))
	assert.False(t, locks.tryAcquire(userID))

	// A different user is unaffected.
	other := uuid.New()
	assert.True(t, locks.tryAcquire(other))

	locks.release(userID)
	assert.True(t, locks.tryAcquire(userID))
}

func TestUserLocksPrunesReleasedEntries(t *testing.T) {
	t.Parallel()

	locks := newUserLocks()
	first := uuid.New()
	second := uuid.New()

	assert.True(t, locks.tryAcquire(first))
	assert.True(t, locks.tryAcquire(second))
	assert.Len(t, locks.sems, 2)

	locks.release(first)
	assert.Len(t, locks.sems, 1)

	locks.release(second)
	assert.Empty(t, locks.sems)
}

func TestUserLocksConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	locks := newUserLocks()
	userID := uuid.New()

	const callers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locks.tryAcquire(userID) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	locks.release(userID)
	assert.Empty(t, locks.sems)
}
