package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
)

const (
	// testBase is the linear address the test arenas pretend to live at.
	testBase = alloc.Addr(0x4000_0000)

	// testHeapSize gives a 32-byte minimum block with 16 orders.
	testHeapSize = 1 << 20
)

// newTestAllocator creates an allocator over a fresh heap-slice arena.
func newTestAllocator(t testing.TB, size int, opts ...Option) *Allocator {
	t.Helper()
	a, err := New(make([]byte, size), testBase, opts...)
	require.NoError(t, err)
	return a
}

func layout(size, align uintptr) alloc.Layout {
	return alloc.Layout{Size: size, Align: align}
}
