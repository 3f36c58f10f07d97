package heap

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/buddy"
	"github.com/joshuapare/heapkit/heap/bump"
	"github.com/joshuapare/heapkit/internal/arena"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/spin"
)

// Heap is an allocator bound to the arena it manages.
type Heap struct {
	cfg Config
	log *slog.Logger

	// mu is held shared by every operation that touches arena memory and
	// exclusively by Reconfigure, Flush and Close, which swap or unmap it.
	// The allocators carry their own lock on top of this one.
	mu     sync.RWMutex
	region *arena.Region
	closed bool

	a     alloc.Allocator
	buddy *buddy.Allocator // nil unless StrategyBuddy
	bump  *bump.Allocator  // nil unless StrategyBump
}

// Open maps an arena and builds the allocator cfg selects.
func Open(cfg Config) (*Heap, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	h := &Heap{cfg: cfg, log: logger.Or(cfg.Logger)}

	var locker sync.Locker = &sync.Mutex{}
	if cfg.Spin {
		locker = &spin.Lock{}
	}

	switch cfg.Strategy {
	case StrategyBuddy:
		// Boot order: a provisional region first, the real arena second.
		prov, err := arena.Slice(format.MinHeapSize, format.MinHeapAlign)
		if err != nil {
			return nil, err
		}
		opts := []buddy.Option{buddy.WithLocker(locker), buddy.WithLogger(h.log)}
		if cfg.Shadow {
			opts = append(opts, buddy.WithShadow())
		}
		if cfg.Poison {
			opts = append(opts, buddy.WithPoison(format.PoisonByte))
		}
		b, err := buddy.New(prov.Bytes(), alloc.Addr(prov.Addr()), opts...)
		if err != nil {
			return nil, fmt.Errorf("heap: provisional region: %w", err)
		}

		region, err := h.mapArena(cfg.Size)
		if err != nil {
			return nil, err
		}
		if err := b.SetHeap(region.Bytes(), alloc.Addr(region.Addr())); err != nil {
			_ = region.Close()
			return nil, err
		}
		_ = prov.Close()
		h.region, h.buddy, h.a = region, b, b

	case StrategyBump:
		region, err := h.mapArena(cfg.Size)
		if err != nil {
			return nil, err
		}
		b, err := bump.New(region.Bytes(), alloc.Addr(region.Addr()), bump.WithLocker(locker), bump.WithLogger(h.log))
		if err != nil {
			_ = region.Close()
			return nil, err
		}
		h.region, h.bump, h.a = region, b, b
	}

	h.log.Info("heap: opened",
		"strategy", cfg.Strategy,
		"base", alloc.Addr(h.region.Addr()),
		"size", cfg.Size,
		"file", cfg.BackingFile)
	return h, nil
}

func (h *Heap) mapArena(size uintptr) (*arena.Region, error) {
	var (
		r   *arena.Region
		err error
	)
	if h.cfg.BackingFile != "" {
		r, err = arena.MapFile(h.cfg.BackingFile, int(size))
	} else {
		r, err = arena.Anonymous(int(size))
	}
	if err != nil {
		return nil, fmt.Errorf("heap: map %d byte arena: %w", size, err)
	}
	return r, nil
}

// Strategy returns the allocator strategy in use.
func (h *Heap) Strategy() Strategy { return h.cfg.Strategy }

// Buddy returns the buddy allocator, or nil for other strategies.
func (h *Heap) Buddy() *buddy.Allocator { return h.buddy }

// Allocate forwards to the allocator. It fails with ErrClosed after Close.
func (h *Heap) Allocate(l alloc.Layout) (alloc.Addr, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0, ErrClosed
	}
	return h.a.Allocate(l)
}

// Deallocate forwards to the allocator. It does nothing after Close.
func (h *Heap) Deallocate(addr alloc.Addr, l alloc.Layout) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	h.a.Deallocate(addr, l)
}

// Total returns the arena size, or 0 after Close.
func (h *Heap) Total() uintptr {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0
	}
	return h.a.Total()
}

// Free returns the bytes available for allocation, or 0 after Close.
func (h *Heap) Free() uintptr {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0
	}
	return h.a.Free()
}

// Used returns Total() - Free(), or 0 after Close.
func (h *Heap) Used() uintptr {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0
	}
	return h.a.Used()
}

// Stats returns the allocator counters. They stay readable after Close.
func (h *Heap) Stats() alloc.Stats {
	if h.buddy != nil {
		return h.buddy.Stats()
	}
	return h.bump.Stats()
}

// Bytes returns n bytes of arena memory at addr, or nil outside the arena or
// after Close. The slice is only valid until the next Reconfigure or Close.
func (h *Heap) Bytes(addr alloc.Addr, n uintptr) []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}
	if h.buddy != nil {
		return h.buddy.Bytes(addr, n)
	}
	return h.bump.Bytes(addr, n)
}

// Reconfigure replaces the buddy heap with a fresh arena of size bytes. It
// refuses while anything is allocated. Reusing the current size keeps the
// mapping and only releases its pages.
//
// If a file-backed heap cannot be remapped, the previous size is restored; if
// even that fails the heap is closed and later calls report ErrClosed.
func (h *Heap) Reconfigure(size uintptr) error {
	if h.buddy == nil {
		return fmt.Errorf("%w: %s", ErrNotReconfigurable, h.cfg.Strategy)
	}
	if err := validateBuddySize(size); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if used := h.buddy.Used(); used != 0 {
		return fmt.Errorf("%w: %d bytes", ErrLiveAllocations, used)
	}

	if size == uintptr(h.region.Len()) {
		if err := h.region.Discard(); err != nil {
			return err
		}
		return h.buddy.SetHeap(h.region.Bytes(), alloc.Addr(h.region.Addr()))
	}

	old := h.region
	oldSize := uintptr(old.Len())
	if h.cfg.BackingFile != "" {
		// The file can only be mapped at one size at a time.
		if err := old.Close(); err != nil {
			return err
		}
	}
	region, err := h.mapArena(size)
	if err == nil {
		if err = h.buddy.SetHeap(region.Bytes(), alloc.Addr(region.Addr())); err != nil {
			_ = region.Close()
		}
	}
	if err != nil {
		if h.cfg.BackingFile != "" {
			h.restore(oldSize)
		}
		return err
	}

	h.region = region
	h.cfg.Size = size
	if h.cfg.BackingFile == "" {
		if err := old.Close(); err != nil {
			h.log.Warn("heap: unmap previous arena", "error", err)
		}
	}

	h.log.Info("heap: reconfigured", "base", alloc.Addr(region.Addr()), "size", size)
	return nil
}

// restore remaps the backing file at size after a failed Reconfigure already
// released the old mapping. Caller holds mu exclusively.
func (h *Heap) restore(size uintptr) {
	region, err := h.mapArena(size)
	if err == nil {
		if err = h.buddy.SetHeap(region.Bytes(), alloc.Addr(region.Addr())); err == nil {
			h.region = region
			h.log.Warn("heap: reconfigure failed, previous arena restored", "size", size)
			return
		}
		_ = region.Close()
	}
	h.closed = true
	h.log.Error("heap: reconfigure failed and arena could not be restored, heap closed", "error", err)
}

// Flush writes a file-backed arena to disk.
func (h *Heap) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	return h.region.Flush()
}

// Close releases the arena. Close is idempotent.
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	var err error
	if h.region.FileBacked() {
		err = h.region.Flush()
	}
	if cerr := h.region.Close(); err == nil {
		err = cerr
	}
	return err
}

// Compile-time interface check
var _ alloc.Allocator = (*Heap)(nil)
