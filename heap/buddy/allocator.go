package buddy

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Allocator is a buddy allocator over one contiguous region.
type Allocator struct {
	mu sync.Locker

	// Heap region descriptor. Replaced wholesale by SetHeap.
	region Region
	mem    []byte

	// Free-list table, one list per order.
	free freeLists

	// Debug shadow table: block address -> order (nil unless WithShadow).
	shadow map[uint64]int

	poison     bool
	poisonByte byte

	log   *slog.Logger
	trace bool

	stats alloc.Stats
}

// New creates an allocator managing mem, whose first byte lives at linear
// address base. len(mem) is the heap size; see SetHeap for the constraints.
func New(mem []byte, base alloc.Addr, opts ...Option) (*Allocator, error) {
	r, err := geometry(mem, base)
	if err != nil {
		return nil, err
	}

	a := &Allocator{
		mu:    &sync.Mutex{},
		trace: logAlloc,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = logger.Or(a.log)
	a.install(mem, r)
	return a, nil
}

// SetHeap discards every free list and starts over with mem as the heap: one
// free block spanning the whole region at the top order. Addresses handed out
// before the call are invalid afterwards.
//
// Call it once at startup, before any allocation, or after every outstanding
// allocation has been returned. The size len(mem) must be a power of two of at
// least format.MinHeapSize and base must be aligned to format.MinHeapAlign. On
// invalid geometry the current heap is left untouched and ErrBadGeometry is
// returned.
func (a *Allocator) SetHeap(mem []byte, base alloc.Addr) error {
	r, err := geometry(mem, base)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.install(mem, r)
	a.stats.Resets++
	if a.trace {
		a.log.Debug("buddy: set heap", "base", r.Base, "size", r.Size, "min_block", r.MinBlockSize)
	}
	return nil
}

// install swaps in a validated region. Caller holds the lock (or owns a).
func (a *Allocator) install(mem []byte, r Region) {
	a.region = r
	a.mem = mem[:r.Size:r.Size]
	a.free.reset(a.mem, uint64(r.Base))
	if a.shadow != nil {
		clear(a.shadow)
	}
}

// Allocate returns a block of at least l.Size bytes aligned to l.Align.
//
// It fails with alloc.ErrUnsupported for an invalid alignment,
// alloc.ErrTooLarge for a request larger than the heap, and alloc.ErrNoMemory
// when no free block of the needed order or above exists.
func (a *Allocator) Allocate(l alloc.Layout) (alloc.Addr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.AllocCalls++

	need, err := a.allocationOrder(l)
	if err != nil {
		a.stats.AllocFailures++
		return 0, err
	}

	for order := need; order < format.OrderCount; order++ {
		block, ok := a.free.pop(order)
		if !ok {
			continue
		}
		if order > need {
			a.splitFreeBlock(block, order, need)
		}

		size := a.orderSize(need)
		if a.poison {
			off := block - uint64(a.region.Base)
			format.Fill(a.mem[off:off+size], a.poisonByte)
		}
		if a.shadow != nil {
			a.shadow[block] = need
		}
		a.stats.BytesAlloc += size
		if a.trace {
			a.log.Debug("buddy: alloc", "layout", l, "order", need, "from_order", order, "addr", alloc.Addr(block))
		}
		return alloc.Addr(block), nil
	}

	a.stats.AllocFailures++
	if a.trace {
		a.log.Debug("buddy: out of memory", "layout", l, "order", need)
	}
	return 0, alloc.ErrNoMemory
}

// splitFreeBlock halves block, which was popped at order, down to needed.
// Each upper half goes onto the free list one order below the block it came
// from; the lower half is kept and returned to the caller by address.
func (a *Allocator) splitFreeBlock(block uint64, order, needed int) {
	half := a.orderSize(order)
	for order > needed {
		half >>= 1
		order--
		a.free.insert(order, block+half)
		a.stats.Splits++
	}
}

// Deallocate returns a block to the heap, merging it with its free buddy as
// long as one exists. l must be the layout passed to Allocate.
//
// Deallocate panics if l is not a layout Allocate would accept, or if addr is
// outside the heap or not aligned to the block size l maps to.
func (a *Allocator) Deallocate(addr alloc.Addr, l alloc.Layout) {
	a.mu.Lock()
	defer a.mu.Unlock()

	order, err := a.allocationOrder(l)
	if err != nil {
		panic(fmt.Sprintf("buddy: deallocate %s with invalid layout %s: %v", addr, l, err))
	}
	block := uint64(addr)
	if !a.region.Contains(addr) || !format.IsAligned(block-uint64(a.region.Base), a.orderSize(order)) {
		panic(fmt.Sprintf("buddy: deallocate %s: not a block of order %d in this heap", addr, order))
	}
	if a.shadow != nil {
		a.checkShadow(block, order, l)
	}

	a.stats.FreeCalls++
	a.stats.BytesFreed += a.orderSize(order)
	initial := order

	for order < format.TopOrder {
		buddy, ok := a.buddyOf(order, block)
		if !ok || !a.free.remove(order, buddy) {
			break
		}
		block = min(block, buddy)
		order++
		a.stats.Coalesces++
	}
	a.free.insert(order, block)

	if a.trace {
		a.log.Debug("buddy: free", "addr", addr, "layout", l, "order", initial, "merged_order", order)
	}
}

// checkShadow verifies a deallocation against the shadow table.
func (a *Allocator) checkShadow(block uint64, order int, l alloc.Layout) {
	recorded, ok := a.shadow[block]
	if !ok {
		panic(fmt.Sprintf("buddy: deallocate %s: address is not a live allocation", alloc.Addr(block)))
	}
	if recorded != order {
		panic(fmt.Sprintf("buddy: deallocate %s: layout %s maps to order %d, allocated at order %d",
			alloc.Addr(block), l, order, recorded))
	}
	delete(a.shadow, block)
}

// Compile-time interface check
var _ alloc.Allocator = (*Allocator)(nil)
