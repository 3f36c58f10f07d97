package buddy

import (
	"log/slog"
	"os"
	"sync"
)

// Runtime trace flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Option configures an Allocator.
type Option func(*Allocator)

// WithLocker replaces the default sync.Mutex guarding the allocator.
func WithLocker(l sync.Locker) Option {
	return func(a *Allocator) { a.mu = l }
}

// WithShadow records the order of every live block and panics when a block is
// deallocated with a layout of a different order, or was never allocated.
func WithShadow() Option {
	return func(a *Allocator) { a.shadow = make(map[uint64]int) }
}

// WithPoison fills every block handed out by Allocate with b.
func WithPoison(b byte) Option {
	return func(a *Allocator) {
		a.poison = true
		a.poisonByte = b
	}
}

// WithLogger sets the logger used for tracing. Defaults to logger.L.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// WithTrace forces allocation tracing on or off regardless of HEAPKIT_LOG_ALLOC.
func WithTrace(on bool) Option {
	return func(a *Allocator) { a.trace = on }
}
