package buddy

import "github.com/joshuapare/heapkit/internal/format"

// freeLists is the free-list table: one singly linked list per order. The
// link of a node is stored in the first format.LinkSize bytes of the free
// block it describes, so the table itself is only the array of heads.
//
// This is the only type that interprets arena bytes as list nodes. Addresses
// passed in and out are absolute (base + offset).
type freeLists struct {
	mem   []byte
	base  uint64
	heads [format.OrderCount]uint64
}

// reset discards every list and installs one top-order block spanning the
// region.
func (f *freeLists) reset(mem []byte, base uint64) {
	f.mem = mem
	f.base = base
	for i := range f.heads {
		f.heads[i] = format.NullLink
	}
	f.insert(format.TopOrder, base)
}

// next reads the link word of a free block.
func (f *freeLists) next(block uint64) uint64 {
	return format.ReadU64(f.mem, int(block-f.base))
}

// setNext writes the link word of a free block.
func (f *freeLists) setNext(block, next uint64) {
	format.PutU64(f.mem, int(block-f.base), next)
}

// pop detaches and returns the head of the list for order.
func (f *freeLists) pop(order int) (uint64, bool) {
	head := f.heads[order]
	if head == format.NullLink {
		return 0, false
	}
	f.heads[order] = f.next(head)
	return head, true
}

// insert pushes block onto the list for order. The caller guarantees block is
// not already on any list.
func (f *freeLists) insert(order int, block uint64) {
	f.setNext(block, f.heads[order])
	f.heads[order] = block
}

// remove unlinks block from the list for order and reports whether it was
// there. Lists are short in a 16-order heap, so a linear scan is fine.
func (f *freeLists) remove(order int, block uint64) bool {
	cur := f.heads[order]
	if cur == block {
		f.heads[order] = f.next(block)
		return true
	}
	for cur != format.NullLink {
		nxt := f.next(cur)
		if nxt == block {
			f.setNext(cur, f.next(block))
			return true
		}
		cur = nxt
	}
	return false
}

// each calls fn for every block on the list for order until fn returns false.
func (f *freeLists) each(order int, fn func(block uint64) bool) {
	for cur := f.heads[order]; cur != format.NullLink; cur = f.next(cur) {
		if !fn(cur) {
			return
		}
	}
}

// count returns the length of the list for order.
func (f *freeLists) count(order int) int {
	n := 0
	f.each(order, func(uint64) bool {
		n++
		return true
	})
	return n
}
