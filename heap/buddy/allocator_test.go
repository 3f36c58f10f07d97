package buddy

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

func TestNew_RejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name string
		size int
		base alloc.Addr
	}{
		{"size not power of two", 3 << 18, testBase},
		{"size below minimum", format.MinHeapSize / 2, testBase},
		{"base misaligned", testHeapSize, testBase + 8},
		{"base wraps address space", testHeapSize, alloc.Addr(^uintptr(0) &^ (format.MinHeapAlign - 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(make([]byte, tt.size), tt.base)
			require.ErrorIs(t, err, ErrBadGeometry)
		})
	}
}

func TestNew_FreshHeap(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	r := a.Region()
	assert.Equal(t, testBase, r.Base)
	assert.Equal(t, uintptr(testHeapSize), r.Size)
	assert.Equal(t, uintptr(32), r.MinBlockSize)
	assert.Equal(t, uint(5), r.MinBlockOrder)

	assert.Equal(t, uintptr(testHeapSize), a.Total())
	assert.Equal(t, uintptr(testHeapSize), a.Free())
	assert.Zero(t, a.Used())

	var want [format.OrderCount]int
	want[format.TopOrder] = 1
	assert.Equal(t, want, a.FreeBlocks())
}

func TestOrderFor(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	tests := []struct {
		name    string
		l       alloc.Layout
		want    int
		wantErr error
	}{
		{"example 100/8", layout(100, 8), 2, nil},
		{"tiny request gets min block", layout(1, 1), 0, nil},
		{"zero size", layout(0, 1), 0, nil},
		{"exact min block", layout(32, 8), 0, nil},
		{"one past min block", layout(33, 1), 1, nil},
		{"alignment dominates size", layout(32, 64), 1, nil},
		{"page alignment", layout(0, 4096), 7, nil},
		{"whole heap", layout(testHeapSize, 8), format.TopOrder, nil},
		{"alignment above max", layout(8, 8192), 0, alloc.ErrUnsupported},
		{"alignment not power of two", layout(8, 24), 0, alloc.ErrUnsupported},
		{"zero alignment", layout(8, 0), 0, alloc.ErrUnsupported},
		{"one past heap", layout(testHeapSize+1, 8), 0, alloc.ErrTooLarge},
		{"max uintptr", layout(^uintptr(0), 8), 0, alloc.ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.OrderFor(tt.l)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderSize(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	assert.Equal(t, uintptr(32), a.OrderSize(0))
	assert.Equal(t, uintptr(128), a.OrderSize(2))
	assert.Equal(t, uintptr(testHeapSize), a.OrderSize(format.TopOrder))
}

// TestAllocate_ExampleScenario: 1 MiB heap, allocate(100, 8) takes a 128-byte
// order-2 block; allocate(5000000, 8) fails without touching accounting.
func TestAllocate_ExampleScenario(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	addr, err := a.Allocate(layout(100, 8))
	require.NoError(t, err)
	assert.Zero(t, uintptr(addr)%8)
	assert.Equal(t, uintptr(128), a.Used())

	free := a.Free()
	_, err = a.Allocate(layout(5000000, 8))
	require.ErrorIs(t, err, alloc.ErrTooLarge)
	assert.Equal(t, free, a.Free())
	assert.Equal(t, uintptr(128), a.Used())
}

func TestAllocate_SplitCascade(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	addr, err := a.Allocate(layout(100, 8))
	require.NoError(t, err)
	assert.Equal(t, testBase, addr, "lower half is kept at every split")

	var want [format.OrderCount]int
	for order := 2; order < format.TopOrder; order++ {
		want[order] = 1
	}
	assert.Equal(t, want, a.FreeBlocks())

	// Each upper half sits one block-size above the base at its order.
	snap := a.Snapshot()
	for order := 2; order < format.TopOrder; order++ {
		require.Len(t, snap.Free[order], 1)
		assert.Equal(t, testBase+alloc.Addr(snap.OrderSize(order)), snap.Free[order][0], "order %d", order)
	}
	assert.Equal(t, format.TopOrder-2, a.Stats().Splits)
}

func TestAllocate_ReusesSmallestOrderFirst(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	first, err := a.Allocate(layout(32, 8))
	require.NoError(t, err)
	second, err := a.Allocate(layout(32, 8))
	require.NoError(t, err)

	assert.Equal(t, testBase, first)
	assert.Equal(t, testBase+32, second, "second request takes the order-0 buddy left by the split")
}

func TestDeallocate_RoundTripRestoresTopBlock(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	before := a.FreeBlocks()

	for _, l := range []alloc.Layout{layout(1, 1), layout(100, 8), layout(4096, 4096), layout(300000, 16)} {
		addr, err := a.Allocate(l)
		require.NoError(t, err)
		a.Deallocate(addr, l)
		assert.Equal(t, uintptr(testHeapSize), a.Free(), "layout %s", l)
		assert.Equal(t, before, a.FreeBlocks(), "layout %s", l)
	}
}

func TestDeallocate_CoalescesOutOfOrder(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	l := layout(32, 8)

	addrs := make([]alloc.Addr, 8)
	for i := range addrs {
		var err error
		addrs[i], err = a.Allocate(l)
		require.NoError(t, err)
	}
	assert.Equal(t, uintptr(8*32), a.Used())

	for _, i := range []int{3, 0, 6, 1, 7, 2, 5, 4} {
		a.Deallocate(addrs[i], l)
	}
	assert.Zero(t, a.Used())
	assert.Equal(t, 1, a.FreeBlocks()[format.TopOrder])
	assert.Positive(t, a.Stats().Coalesces)
}

func TestDeallocate_NoMergeWhenBuddyLive(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	l := layout(32, 8)

	lo, err := a.Allocate(l)
	require.NoError(t, err)
	hi, err := a.Allocate(l)
	require.NoError(t, err)

	a.Deallocate(lo, l)
	counts := a.FreeBlocks()
	assert.Equal(t, 1, counts[0], "freed block waits for its live buddy at order 0")

	a.Deallocate(hi, l)
	assert.Zero(t, a.FreeBlocks()[0])
	assert.Equal(t, 1, a.FreeBlocks()[format.TopOrder])
}

func TestBuddyOf(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	b, ok := a.BuddyOf(0, testBase)
	require.True(t, ok)
	assert.Equal(t, testBase+32, b)

	b, ok = a.BuddyOf(3, testBase+3*256)
	require.True(t, ok)
	assert.Equal(t, testBase+2*256, b)

	_, ok = a.BuddyOf(format.TopOrder, testBase)
	assert.False(t, ok, "the whole-heap block has no buddy")
}

func TestBuddyOf_Symmetry(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	for order := 0; order < format.TopOrder; order++ {
		size := a.OrderSize(order)
		blocks := uintptr(testHeapSize) / size
		for _, i := range []uintptr{0, 1, blocks / 2, blocks - 1} {
			block := testBase + alloc.Addr(i*size)
			b, ok := a.BuddyOf(order, block)
			require.True(t, ok)
			back, ok := a.BuddyOf(order, b)
			require.True(t, ok)
			assert.Equal(t, block, back, "order %d block %d", order, i)
			assert.NotEqual(t, block, b)
		}
	}
}

func TestAllocate_Exhaustion(t *testing.T) {
	a := newTestAllocator(t, format.MinHeapSize) // 8-byte minimum block
	l := layout(8, 8)

	var addrs []alloc.Addr
	for {
		addr, err := a.Allocate(l)
		if err != nil {
			require.ErrorIs(t, err, alloc.ErrNoMemory)
			break
		}
		addrs = append(addrs, addr)
	}
	assert.Len(t, addrs, 1<<format.TopOrder)
	assert.Zero(t, a.Free())
	assert.Equal(t, 1, a.Stats().AllocFailures)

	// A request larger than the heap is rejected as too large, not out of memory.
	_, err := a.Allocate(layout(format.MinHeapSize*2, 8))
	require.ErrorIs(t, err, alloc.ErrTooLarge)

	for _, addr := range addrs {
		a.Deallocate(addr, l)
	}
	assert.Equal(t, uintptr(format.MinHeapSize), a.Free())
	assert.Equal(t, 1, a.FreeBlocks()[format.TopOrder])
}

func TestAllocate_Alignment(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)

	// Knock the heap off its pristine state so alignment is not trivial.
	_, err := a.Allocate(layout(1, 1))
	require.NoError(t, err)

	for _, align := range []uintptr{1, 2, 8, 16, 64, 512, 4096} {
		for _, size := range []uintptr{1, 17, 100, 5000} {
			addr, err := a.Allocate(layout(size, align))
			require.NoError(t, err)
			assert.Zero(t, uintptr(addr)%align, "size %d align %d", size, align)
			assert.Len(t, a.Bytes(addr, size), int(size))
		}
	}
}

func TestDeallocate_PanicsOnInvalidLayout(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	addr, err := a.Allocate(layout(64, 8))
	require.NoError(t, err)

	assert.Panics(t, func() { a.Deallocate(addr, layout(64, 3)) })
	assert.Panics(t, func() { a.Deallocate(testBase-4096, layout(64, 8)) })
	assert.Panics(t, func() { a.Deallocate(addr+8, layout(64, 8)) }, "misaligned for order 1")
}

func TestShadow_DetectsMismatchedLayout(t *testing.T) {
	a := newTestAllocator(t, testHeapSize, WithShadow())

	addr, err := a.Allocate(layout(100, 8))
	require.NoError(t, err)

	assert.PanicsWithValue(t,
		"buddy: deallocate 0x40000000: layout 32/8 maps to order 0, allocated at order 2",
		func() { a.Deallocate(addr, layout(32, 8)) })

	a.Deallocate(addr, layout(100, 8))
	assert.Equal(t, uintptr(testHeapSize), a.Free())

	assert.Panics(t, func() { a.Deallocate(addr, layout(100, 8)) }, "double free")
}

func TestPoison_FillsAllocatedBlock(t *testing.T) {
	a := newTestAllocator(t, testHeapSize, WithPoison(format.PoisonByte))

	addr, err := a.Allocate(layout(100, 8))
	require.NoError(t, err)
	for i, b := range a.Bytes(addr, 128) {
		require.Equal(t, byte(format.PoisonByte), b, "byte %d", i)
	}
}

func TestSetHeap_Resets(t *testing.T) {
	a := newTestAllocator(t, testHeapSize, WithShadow())
	for range 10 {
		_, err := a.Allocate(layout(1000, 8))
		require.NoError(t, err)
	}
	require.NotZero(t, a.Used())

	newBase := alloc.Addr(0x8000_0000)
	require.NoError(t, a.SetHeap(make([]byte, 2*testHeapSize), newBase))

	assert.Equal(t, uintptr(2*testHeapSize), a.Total())
	assert.Equal(t, uintptr(2*testHeapSize), a.Free())
	assert.Zero(t, a.Used())
	assert.Equal(t, uintptr(64), a.Region().MinBlockSize)
	assert.Equal(t, 1, a.Stats().Resets)

	addr, err := a.Allocate(layout(1, 1))
	require.NoError(t, err)
	assert.Equal(t, newBase, addr)
}

func TestSetHeap_BadGeometryKeepsState(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	_, err := a.Allocate(layout(100, 8))
	require.NoError(t, err)

	err = a.SetHeap(make([]byte, 1000), testBase)
	require.ErrorIs(t, err, ErrBadGeometry)
	require.ErrorIs(t, err, format.ErrNotPow2)

	assert.Equal(t, uintptr(testHeapSize), a.Total())
	assert.Equal(t, uintptr(128), a.Used())
	assert.Zero(t, a.Stats().Resets)
}

func TestBytes(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	addr, err := a.Allocate(layout(16, 8))
	require.NoError(t, err)

	buf := a.Bytes(addr, 16)
	require.Len(t, buf, 16)
	copy(buf, "heapkit payload!")
	assert.Equal(t, "heapkit payload!", string(a.Bytes(addr, 16)))

	assert.Nil(t, a.Bytes(testBase-1, 1))
	assert.Nil(t, a.Bytes(testBase+testHeapSize-4, 8))
}

func TestTrace_LogsOperations(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := newTestAllocator(t, testHeapSize, WithLogger(l), WithTrace(true))

	addr, err := a.Allocate(layout(100, 8))
	require.NoError(t, err)
	a.Deallocate(addr, layout(100, 8))

	out := buf.String()
	assert.Contains(t, out, "buddy: alloc")
	assert.Contains(t, out, "buddy: free")
	assert.Contains(t, out, "merged_order=15")
}

func TestWriteState(t *testing.T) {
	a := newTestAllocator(t, testHeapSize)
	_, err := a.Allocate(layout(100, 8))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.WriteState(&buf))
	out := buf.String()
	assert.Contains(t, out, "heap 0x40000000..0x40100000")
	assert.Contains(t, out, "order  2 (     128 bytes): 1 free")
	assert.NotContains(t, out, "order 15")
	assert.Contains(t, out, "free 1048448 / 1048576 bytes")
}
