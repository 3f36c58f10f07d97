package verify

import (
	"fmt"
	"slices"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/buddy"
	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes a broken heap invariant.
type ValidationError struct {
	Type    string
	Message string
	Offset  int64 // offset from the heap base, -1 if N/A
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Block is a live allocation: its address and its rounded block size.
type Block struct {
	Addr alloc.Addr
	Size uintptr
}

func (b Block) end() alloc.Addr { return b.Addr + alloc.Addr(b.Size) }

// BuddyInvariants validates all heap invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func BuddyInvariants(s buddy.Snapshot, live []Block) error {
	if err := FreeLists(s); err != nil {
		return err
	}
	blocks := slices.Clone(live)
	for order, free := range s.Free {
		for _, addr := range free {
			blocks = append(blocks, Block{Addr: addr, Size: s.OrderSize(order)})
		}
	}
	if err := NoOverlap(blocks); err != nil {
		return err
	}
	return Conservation(s, live)
}

// FreeLists checks range, alignment and uniqueness of every free block.
func FreeLists(s buddy.Snapshot) error {
	r := s.Region
	seen := make(map[alloc.Addr]int)
	for order, free := range s.Free {
		size := s.OrderSize(order)
		for _, addr := range free {
			off := int64(addr) - int64(r.Base)
			if !r.Contains(addr) || uintptr(off)+size > r.Size {
				return &ValidationError{
					Type:    "FreeLists",
					Message: fmt.Sprintf("order %d block %s outside heap", order, addr),
					Offset:  -1,
					Details: map[string]any{"order": order, "addr": addr},
				}
			}
			if !format.IsAligned(uint64(off), uint64(size)) {
				return &ValidationError{
					Type:    "FreeLists",
					Message: fmt.Sprintf("order %d block not aligned to %d", order, size),
					Offset:  off,
					Details: map[string]any{"order": order},
				}
			}
			if prev, dup := seen[addr]; dup {
				return &ValidationError{
					Type:    "FreeLists",
					Message: fmt.Sprintf("block listed twice (orders %d and %d)", prev, order),
					Offset:  off,
					Details: map[string]any{"orders": []int{prev, order}},
				}
			}
			seen[addr] = order
		}
	}
	return nil
}

// NoOverlap checks that no two blocks share a byte.
func NoOverlap(blocks []Block) error {
	sorted := slices.Clone(blocks)
	slices.SortFunc(sorted, func(x, y Block) int {
		switch {
		case x.Addr < y.Addr:
			return -1
		case x.Addr > y.Addr:
			return 1
		}
		return 0
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Addr < prev.end() {
			return &ValidationError{
				Type:    "NoOverlap",
				Message: fmt.Sprintf("block %s+%d overlaps %s+%d", cur.Addr, cur.Size, prev.Addr, prev.Size),
				Offset:  -1,
				Details: map[string]any{"first": prev, "second": cur},
			}
		}
	}
	return nil
}

// Aligned checks that every block address is a multiple of align.
func Aligned(blocks []Block, align uintptr) error {
	for _, b := range blocks {
		if !format.IsAligned(uint64(b.Addr), uint64(align)) {
			return &ValidationError{
				Type:    "Aligned",
				Message: fmt.Sprintf("block %s not aligned to %d", b.Addr, align),
				Offset:  -1,
			}
		}
	}
	return nil
}

// Conservation checks that free bytes plus live bytes equal the heap size.
func Conservation(s buddy.Snapshot, live []Block) error {
	free := s.FreeBytes()
	var used uintptr
	for _, b := range live {
		used += b.Size
	}
	if free+used != s.Region.Size {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("free %d + live %d != size %d", free, used, s.Region.Size),
			Offset:  -1,
			Details: map[string]any{"free": free, "live": used, "size": s.Region.Size},
		}
	}
	return nil
}
