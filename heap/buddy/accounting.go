package buddy

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// Snapshot is a copy of the free-list table, for verification and reporting.
type Snapshot struct {
	Region Region
	Free   [format.OrderCount][]alloc.Addr // free block addresses per order
}

// OrderSize returns the block size in bytes of order within the snapshot's region.
func (s Snapshot) OrderSize(order int) uintptr {
	return s.Region.MinBlockSize << uint(order)
}

// FreeBytes sums the free blocks of the snapshot.
func (s Snapshot) FreeBytes() uintptr {
	var n uintptr
	for order, blocks := range s.Free {
		n += uintptr(len(blocks)) * s.OrderSize(order)
	}
	return n
}

// Total returns the configured heap size.
func (a *Allocator) Total() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.region.Size
}

// Free sums the sizes of every free block. It walks all free lists, so it is
// meant for diagnostics rather than hot paths.
func (a *Allocator) Free() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return uintptr(a.freeBytes())
}

// Used returns Total() - Free().
func (a *Allocator) Used() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.region.Size - uintptr(a.freeBytes())
}

func (a *Allocator) freeBytes() uint64 {
	var n uint64
	for order := range format.OrderCount {
		n += uint64(a.free.count(order)) * a.orderSize(order)
	}
	return n
}

// Region returns the current heap region descriptor.
func (a *Allocator) Region() Region {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.region
}

// FreeBlocks returns the number of free blocks at each order.
func (a *Allocator) FreeBlocks() [format.OrderCount]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	var counts [format.OrderCount]int
	for order := range counts {
		counts[order] = a.free.count(order)
	}
	return counts
}

// Snapshot copies the free-list table.
func (a *Allocator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Snapshot{Region: a.region}
	for order := range format.OrderCount {
		a.free.each(order, func(block uint64) bool {
			s.Free[order] = append(s.Free[order], alloc.Addr(block))
			return true
		})
	}
	return s
}

// Stats returns a copy of the allocator counters.
func (a *Allocator) Stats() alloc.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Bytes returns the n bytes at addr inside the arena, or nil if the range is
// not inside the heap.
func (a *Allocator) Bytes(addr alloc.Addr, n uintptr) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.region.Contains(addr) {
		return nil
	}
	off := uintptr(addr - a.region.Base)
	if n > a.region.Size-off {
		return nil
	}
	return a.mem[off : off+n : off+n]
}

// WriteState prints the free-list table to w, one line per non-empty order.
func (a *Allocator) WriteState(w io.Writer) error {
	s := a.Snapshot()
	if _, err := fmt.Fprintf(w, "heap %s..%s (%d bytes, min block %d)\n",
		s.Region.Base, s.Region.Base+alloc.Addr(s.Region.Size), s.Region.Size, s.Region.MinBlockSize); err != nil {
		return err
	}
	for order, blocks := range s.Free {
		if len(blocks) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "  order %2d (%8d bytes): %d free\n", order, s.OrderSize(order), len(blocks)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  free %d / %d bytes\n", s.FreeBytes(), s.Region.Size)
	return err
}
