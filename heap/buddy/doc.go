// Package buddy implements a power-of-two buddy allocator over a single fixed,
// contiguous arena.
//
// # Overview
//
// The heap is divided into format.OrderCount orders. Order 0 blocks are the
// minimum block size, heapSize >> (OrderCount-1); each higher order doubles the
// block size, and the single top-order block spans the whole heap:
//
//	1 MiB heap, 16 orders:
//	Order  0:     32 bytes
//	Order  1:     64 bytes
//	Order  2:    128 bytes
//	...
//	Order 15:  1 MiB (the whole heap, no buddy)
//
// # Free Lists
//
// Each order has a singly linked list of free blocks. A list node is the first
// 8 bytes of the free block itself (little-endian address of the next block),
// so the allocator needs no side table: a 1 MiB heap is managed with a fixed
// array of 16 list heads. Only the freeLists type reads or writes these words.
//
// # Split and Coalesce
//
// Allocate searches upward from the order a request needs, pops a block, and
// halves it until it reaches the needed order, pushing each unused upper half
// onto the list one order below.
//
// Deallocate computes the buddy of the freed block, base + ((block-base) XOR
// orderSize), and while that buddy sits in the free list of the same order it
// is unlinked and the pair merges into the lower address one order up.
//
// # Trusting the Caller
//
// Deallocate re-derives the order from the layout it is given; nothing is
// stored per allocation. Passing a different layout than Allocate received
// corrupts the heap. WithShadow enables a debug table that records the order
// of every live block and panics on mismatch.
//
// # Thread Safety
//
// Every operation, including the accounting walks, runs under a single
// sync.Locker (a sync.Mutex unless WithLocker supplies another, such as
// spin.Lock). The allocator is safe for concurrent use.
//
// # Tracing
//
// Set HEAPKIT_LOG_ALLOC to any value to log each allocate, deallocate and
// reset at debug level through the configured slog.Logger.
package buddy
