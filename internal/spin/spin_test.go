package spin

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ sync.Locker = (*Lock)(nil)

func TestTryLock(t *testing.T) {
	var l Lock
	require.True(t, l.TryLock())
	assert.False(t, l.TryLock())
	l.Unlock()
	assert.True(t, l.TryLock())
	l.Unlock()
}

func TestUnlockUnlockedPanics(t *testing.T) {
	var l Lock
	assert.Panics(t, func() { l.Unlock() })
}

func TestMutualExclusion(t *testing.T) {
	var (
		l       Lock
		counter int
		wg      sync.WaitGroup
	)
	const workers, iters = 8, 2000
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iters {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, workers*iters, counter)
}
