package buddy

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// Region describes the heap currently managed by an Allocator.
type Region struct {
	Base          alloc.Addr
	Size          uintptr
	MinBlockSize  uintptr
	MinBlockOrder uint // log2(MinBlockSize)
}

// Contains reports whether addr lies inside the region.
func (r Region) Contains(addr alloc.Addr) bool {
	return addr >= r.Base && uintptr(addr-r.Base) < r.Size
}

// geometry validates a heap region and derives its minimum block size. The
// region size is len(mem) and must equal MinBlockSize << (OrderCount-1).
func geometry(mem []byte, base alloc.Addr) (Region, error) {
	size := uint64(len(mem))
	if !format.IsPow2(size) {
		return Region{}, fmt.Errorf("%w: size %d: %w", ErrBadGeometry, size, format.ErrNotPow2)
	}
	if size < format.MinHeapSize {
		return Region{}, fmt.Errorf("%w: size %d below minimum %d", ErrBadGeometry, size, format.MinHeapSize)
	}
	if !format.IsAligned(uint64(base), format.MinHeapAlign) {
		return Region{}, fmt.Errorf("%w: base %s: %w", ErrBadGeometry, base, format.ErrMisaligned)
	}
	if uint64(base)+size-1 < uint64(base) {
		return Region{}, fmt.Errorf("%w: base %s + size %d overflows", ErrBadGeometry, base, size)
	}

	minBlock := size >> format.TopOrder
	return Region{
		Base:          base,
		Size:          uintptr(size),
		MinBlockSize:  uintptr(minBlock),
		MinBlockOrder: format.Log2(minBlock),
	}, nil
}
