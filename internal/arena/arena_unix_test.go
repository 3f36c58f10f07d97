//go:build linux || darwin || freebsd

package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymousIsPageAlignedAndWritable(t *testing.T) {
	r, err := Anonymous(1 << 20)
	require.NoError(t, err)
	defer r.Close()

	assert.Zero(t, r.Addr()%4096, "mapping should be page aligned")
	data := r.Bytes()
	data[0], data[len(data)-1] = 0xAA, 0xBB
	assert.Equal(t, byte(0xAA), r.Bytes()[0])
	assert.NoError(t, r.Flush(), "flush of anonymous region is a no-op")
}

func TestMapFilePersists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "arena.img")

	r, err := MapFile(path, 64*1024)
	require.NoError(t, err)
	assert.True(t, r.FileBacked())
	copy(r.Bytes()[100:], []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, r.Flush())
	require.NoError(t, r.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 64*1024)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got[100:104])
}

func TestDiscardAnonymous(t *testing.T) {
	r, err := Anonymous(64 * 1024)
	require.NoError(t, err)
	defer r.Close()

	r.Bytes()[4096] = 0x55
	require.NoError(t, r.Discard())
	assert.Zero(t, r.Bytes()[4096], "private anonymous pages read back as zero")
}
