package heap

import (
	"sync"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	registerMu sync.Mutex
	registered *Heap
)

// Register installs h as the process allocator. Only the first call succeeds.
func Register(h *Heap) error {
	registerMu.Lock()
	defer registerMu.Unlock()
	if registered != nil {
		return ErrAlreadyRegistered
	}
	registered = h
	h.log.Info("heap: registered process allocator", "strategy", h.cfg.Strategy)
	return nil
}

// Registered returns the process allocator, or nil before Register.
func Registered() *Heap {
	registerMu.Lock()
	defer registerMu.Unlock()
	return registered
}

// Allocate allocates from the process allocator.
func Allocate(l alloc.Layout) (alloc.Addr, error) {
	h := Registered()
	if h == nil {
		return 0, ErrNotRegistered
	}
	return h.Allocate(l)
}

// Deallocate returns a block to the process allocator.
func Deallocate(addr alloc.Addr, l alloc.Layout) error {
	h := Registered()
	if h == nil {
		return ErrNotRegistered
	}
	h.Deallocate(addr, l)
	return nil
}

// unregister clears the binding. Tests only.
func unregister() {
	registerMu.Lock()
	registered = nil
	registerMu.Unlock()
}
