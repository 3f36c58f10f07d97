// Package bump implements a non-reclaiming arena allocator.
//
// Blocks are carved downward from the end of a fixed arena: each allocation
// subtracts its size from the remaining byte count and rounds the result down
// to the requested alignment. Deallocate does nothing, so the arena only ever
// shrinks. It serves early boot and short-lived workloads where reclaiming
// memory is not worth the bookkeeping.
package bump

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// ErrBadArena is returned by New for an empty or misaligned arena.
var ErrBadArena = errors.New("bump: invalid arena")

// Allocator hands out blocks from the top of an arena toward its base.
type Allocator struct {
	mu sync.Locker

	mem       []byte
	base      alloc.Addr
	remaining uintptr // offset of the lowest handed-out byte

	log   *slog.Logger
	stats alloc.Stats
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLocker replaces the default sync.Mutex guarding the allocator.
func WithLocker(l sync.Locker) Option {
	return func(a *Allocator) { a.mu = l }
}

// WithLogger sets the logger used for exhaustion warnings. Defaults to logger.L.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// New creates a bump allocator over mem, whose first byte lives at base. The
// arena is filled with format.PoisonByte so untouched memory is recognisable.
func New(mem []byte, base alloc.Addr, opts ...Option) (*Allocator, error) {
	if len(mem) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadArena)
	}
	if !format.IsAligned(uint64(base), format.MaxSupportedAlign) {
		return nil, fmt.Errorf("%w: base %s: %w", ErrBadArena, base, format.ErrMisaligned)
	}

	a := &Allocator{
		mu:        &sync.Mutex{},
		mem:       mem,
		base:      base,
		remaining: uintptr(len(mem)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = logger.Or(a.log)
	format.Fill(mem, format.PoisonByte)
	return a, nil
}

// Allocate carves l.Size bytes below the lowest block handed out so far.
//
// A zero-size request takes no bytes, so on a fresh arena with byte alignment
// it returns base+Total(), the address one past the arena end. Such an address
// must not be dereferenced; it is only a unique token, as for any zero-size
// allocation.
func (a *Allocator) Allocate(l alloc.Layout) (alloc.Addr, error) {
	if !format.IsPow2(uint64(l.Align)) || l.Align > format.MaxSupportedAlign {
		a.mu.Lock()
		a.stats.AllocCalls++
		a.stats.AllocFailures++
		a.mu.Unlock()
		return 0, alloc.ErrUnsupported
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.AllocCalls++
	if l.Size > a.remaining {
		a.stats.AllocFailures++
		a.log.Warn("bump: arena exhausted", "layout", l, "remaining", a.remaining)
		return 0, alloc.ErrNoMemory
	}

	next := uintptr(format.AlignDown(uint64(a.remaining-l.Size), uint64(l.Align)))
	a.stats.BytesAlloc += uint64(a.remaining - next)
	a.remaining = next
	return a.base + alloc.Addr(next), nil
}

// Deallocate is a no-op: bump memory is never reused.
func (a *Allocator) Deallocate(alloc.Addr, alloc.Layout) {
	a.mu.Lock()
	a.stats.FreeCalls++
	a.mu.Unlock()
}

// Total returns the arena size.
func (a *Allocator) Total() uintptr { return uintptr(len(a.mem)) }

// Free returns the bytes below the lowest handed-out block.
func (a *Allocator) Free() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remaining
}

// Used returns Total() - Free(), including bytes lost to alignment.
func (a *Allocator) Used() uintptr {
	return a.Total() - a.Free()
}

// Stats returns a copy of the allocator counters.
func (a *Allocator) Stats() alloc.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Bytes returns the n bytes at addr, or nil if the range leaves the arena.
func (a *Allocator) Bytes(addr alloc.Addr, n uintptr) []byte {
	if addr < a.base {
		return nil
	}
	off := uintptr(addr - a.base)
	if off > uintptr(len(a.mem)) || n > uintptr(len(a.mem))-off {
		return nil
	}
	return a.mem[off : off+n : off+n]
}

// Compile-time interface check
var _ alloc.Allocator = (*Allocator)(nil)
