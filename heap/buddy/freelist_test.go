package buddy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func listOf(f *freeLists, order int) []uint64 {
	var out []uint64
	f.each(order, func(block uint64) bool {
		out = append(out, block)
		return true
	})
	return out
}

func TestFreeLists_Reset(t *testing.T) {
	var f freeLists
	f.reset(make([]byte, 4096), 0x1000)

	assert.Equal(t, []uint64{0x1000}, listOf(&f, format.TopOrder))
	for order := range format.TopOrder {
		assert.Zero(t, f.count(order), "order %d", order)
	}
}

func TestFreeLists_InsertPopIsLIFO(t *testing.T) {
	var f freeLists
	f.reset(make([]byte, 4096), 0x1000)

	f.insert(0, 0x1010)
	f.insert(0, 0x1020)
	f.insert(0, 0x1030)
	assert.Equal(t, []uint64{0x1030, 0x1020, 0x1010}, listOf(&f, 0))

	for _, want := range []uint64{0x1030, 0x1020, 0x1010} {
		got, ok := f.pop(0)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := f.pop(0)
	assert.False(t, ok)
}

func TestFreeLists_LinksLiveInArena(t *testing.T) {
	mem := make([]byte, 4096)
	var f freeLists
	f.reset(mem, 0x1000)

	f.insert(1, 0x1040)
	f.insert(1, 0x1080)

	assert.Equal(t, uint64(0x1040), format.ReadU64(mem, 0x80))
	assert.Equal(t, format.NullLink, format.ReadU64(mem, 0x40))
}

func TestFreeLists_Remove(t *testing.T) {
	tests := []struct {
		name    string
		remove  uint64
		found   bool
		wantOut []uint64
	}{
		{"head", 0x1030, true, []uint64{0x1020, 0x1010}},
		{"middle", 0x1020, true, []uint64{0x1030, 0x1010}},
		{"tail", 0x1010, true, []uint64{0x1030, 0x1020}},
		{"missing", 0x1040, false, []uint64{0x1030, 0x1020, 0x1010}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f freeLists
			f.reset(make([]byte, 4096), 0x1000)
			f.insert(0, 0x1010)
			f.insert(0, 0x1020)
			f.insert(0, 0x1030)

			assert.Equal(t, tt.found, f.remove(0, tt.remove))
			assert.Equal(t, tt.wantOut, listOf(&f, 0))
		})
	}
}

func TestFreeLists_RemoveFromEmpty(t *testing.T) {
	var f freeLists
	f.reset(make([]byte, 4096), 0x1000)
	assert.False(t, f.remove(3, 0x1000))
}
