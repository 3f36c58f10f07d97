package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Addr is a linear address inside a managed arena.
type Addr uintptr

// String formats the address in hex.
func (a Addr) String() string {
	return fmt.Sprintf("0x%x", uintptr(a))
}

// Layout describes a memory request: Size bytes aligned to Align.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout returns a Layout after checking that align is a power of two.
func NewLayout(size, align uintptr) (Layout, error) {
	if !format.IsPow2(uint64(align)) {
		return Layout{}, fmt.Errorf("%w: align %d", ErrBadAlign, align)
	}
	return Layout{Size: size, Align: align}, nil
}

// String formats the layout as size/align.
func (l Layout) String() string {
	return fmt.Sprintf("%d/%d", l.Size, l.Align)
}

// Allocator defines the runtime allocation interface of a heap.
//
// Implementations:
//   - buddy.Allocator: reclaiming power-of-two allocator
//   - bump.Allocator: non-reclaiming arena
type Allocator interface {
	// Allocate returns the address of a block of at least l.Size bytes
	// aligned to l.Align. Block contents are unspecified.
	Allocate(l Layout) (Addr, error)

	// Deallocate returns a block obtained from Allocate with the same layout.
	Deallocate(addr Addr, l Layout)

	// Total returns the configured heap size in bytes.
	Total() uintptr

	// Free returns the number of bytes currently available.
	Free() uintptr

	// Used returns Total() - Free().
	Used() uintptr
}
