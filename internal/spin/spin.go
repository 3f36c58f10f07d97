// Package spin provides a busy-waiting lock for code paths that must not park
// the calling goroutine, such as an allocator entered from a signal-like context.
package spin

import (
	"runtime"
	"sync/atomic"
)

// Lock is a test-and-test-and-set spin lock. The zero value is unlocked.
// It implements sync.Locker.
type Lock struct {
	state atomic.Uint32
}

// Lock acquires the lock, spinning until it is available.
func (l *Lock) Lock() {
	for spins := 0; ; spins++ {
		if l.state.Load() == 0 && l.state.CompareAndSwap(0, 1) {
			return
		}
		if spins&63 == 63 {
			runtime.Gosched()
		}
	}
}

// TryLock acquires the lock if it is free and reports whether it did.
func (l *Lock) TryLock() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlocking an unlocked Lock panics.
func (l *Lock) Unlock() {
	if l.state.Swap(0) == 0 {
		panic("spin: unlock of unlocked lock")
	}
}
