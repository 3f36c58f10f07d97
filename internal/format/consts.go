// Package format holds the fixed geometry of a heapkit arena and the low-level
// helpers used to read and write words inside it. Higher-level packages build
// on these so the bit arithmetic lives in one place.
package format

const (
	// OrderCount is the number of allocation orders (size classes) managed by
	// the buddy allocator. Order OrderCount-1 spans the whole heap.
	OrderCount = 16

	// TopOrder is the order whose single block covers the entire heap.
	TopOrder = OrderCount - 1

	// MaxSupportedAlign is the largest alignment either strategy will honor.
	// Requests for a larger alignment fail rather than waste a whole order.
	MaxSupportedAlign = 4096

	// MinHeapAlign is the required alignment of a heap base address. Blocks are
	// aligned to their size relative to the base, so a base aligned to
	// MaxSupportedAlign makes every block absolutely aligned as well.
	MinHeapAlign = MaxSupportedAlign

	// LinkSize is the number of bytes of a free block reused as its free-list
	// link. Every block must be at least this large.
	LinkSize = 8

	// MinHeapSize is the smallest heap whose minimum block can hold a link:
	// LinkSize << (OrderCount-1) = 256 KiB.
	MinHeapSize = LinkSize << TopOrder

	// BumpArenaSize is the default arena size for the bump strategy.
	BumpArenaSize = 128 * 1024

	// DefaultHeapSize is the heap size used when no size is configured.
	DefaultHeapSize = 1024 * 1024

	// PoisonByte fills fresh arenas and, when enabled, newly handed-out blocks.
	PoisonByte = 0x55
)

// NullLink terminates a free list. All-ones can never be a block address
// because blocks are at least LinkSize aligned.
const NullLink = ^uint64(0)
