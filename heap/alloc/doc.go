// Package alloc defines the contract shared by every heapkit allocation
// strategy.
//
// # Allocator Interface
//
// An Allocator hands out blocks of a fixed, contiguous arena:
//
//   - Allocate(layout): return the address of a block satisfying layout
//   - Deallocate(addr, layout): return a block; layout must match the Allocate call
//   - Total/Free/Used: accounting in bytes
//
// # Implementations
//
// buddy.Allocator: power-of-two buddy system with split and coalesce
//
//   - 16 orders, the top order spanning the whole heap
//   - free-list nodes stored inside the free blocks themselves
//   - every freed block is merged with its free buddy, repeatedly
//
// bump.Allocator: non-reclaiming arena
//
//   - carves the arena downward from its end
//   - Deallocate is a no-op
//
// Exactly one strategy is selected at startup; see package heap.
//
// # Failure
//
// Allocation never aborts and never waits. A request that cannot be served
// returns one of ErrUnsupported, ErrTooLarge or ErrNoMemory immediately.
// Deallocating something that was not allocated with the same layout is a
// programming error; implementations may panic.
//
// # Example
//
//	l, err := alloc.NewLayout(100, 8)
//	if err != nil {
//	    return err
//	}
//	addr, err := a.Allocate(l)
//	if errors.Is(err, alloc.ErrNoMemory) {
//	    // out of memory
//	}
//	defer a.Deallocate(addr, l)
package alloc
