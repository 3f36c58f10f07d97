package buddy

import (
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// allocationSize returns the block size serving l: the largest of the size,
// the alignment and the minimum block, rounded up to a power of two.
func (a *Allocator) allocationSize(l alloc.Layout) (uint64, error) {
	align := uint64(l.Align)
	if !format.IsPow2(align) || align > format.MaxSupportedAlign {
		return 0, alloc.ErrUnsupported
	}

	size := max(uint64(l.Size), align, uint64(a.region.MinBlockSize))
	// Check before rounding so huge sizes cannot overflow NextPow2.
	if size > uint64(a.region.Size) {
		return 0, alloc.ErrTooLarge
	}
	return format.NextPow2(size), nil
}

// allocationOrder returns the order whose block size serves l.
func (a *Allocator) allocationOrder(l alloc.Layout) (int, error) {
	size, err := a.allocationSize(l)
	if err != nil {
		return 0, err
	}
	return int(format.Log2(size) - a.region.MinBlockOrder), nil
}

// orderSize returns the block size of order.
func (a *Allocator) orderSize(order int) uint64 {
	return 1 << (a.region.MinBlockOrder + uint(order))
}

// buddyOf returns the other half of the order+1 block containing block. The
// top-order block has no buddy.
func (a *Allocator) buddyOf(order int, block uint64) (uint64, bool) {
	size := a.orderSize(order)
	if size >= uint64(a.region.Size) {
		return 0, false
	}
	base := uint64(a.region.Base)
	return base + ((block - base) ^ size), true
}

// OrderFor returns the order Allocate would use for l.
func (a *Allocator) OrderFor(l alloc.Layout) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocationOrder(l)
}

// OrderSize returns the block size in bytes of order.
func (a *Allocator) OrderSize(order int) uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return uintptr(a.orderSize(order))
}

// BuddyOf returns the buddy address of the order-aligned block at addr, or
// false when order is the top order.
func (a *Allocator) BuddyOf(order int, addr alloc.Addr) (alloc.Addr, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buddyOf(order, uint64(addr))
	return alloc.Addr(b), ok
}
