// Package arena provides the contiguous memory regions that heapkit allocators
// manage: anonymous mappings, file-backed shared mappings, or plain byte slices
// on platforms without mmap.
package arena

import (
	"errors"
	"os"
	"unsafe"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// ErrBadSize indicates a non-positive region size.
	ErrBadSize = errors.New("arena: size must be positive")
	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("arena: region closed")
)

// Region is a contiguous, fixed-size block of memory.
type Region struct {
	data  []byte
	f     *os.File // non-nil for file-backed regions
	unmap func([]byte) error
}

// Bytes returns the region contents. The slice is valid until Close.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the region size in bytes.
func (r *Region) Len() int { return len(r.data) }

// Addr returns the linear address of the first byte of the region, or 0 for
// an empty or closed region.
func (r *Region) Addr() uintptr {
	if len(r.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&r.data[0]))
}

// FileBacked reports whether writes to the region reach a file.
func (r *Region) FileBacked() bool { return r.f != nil }

// Close releases the mapping and the backing file, if any. Close is idempotent.
func (r *Region) Close() error {
	var err error
	if r.data != nil && r.unmap != nil {
		err = r.unmap(r.data)
	}
	r.data = nil
	if r.f != nil {
		if cerr := r.f.Close(); err == nil {
			err = cerr
		}
		r.f = nil
	}
	return err
}

// Slice allocates a region on the Go heap, aligned to align bytes (a power of
// two). It is the fallback when mapping is unavailable and the default for tests.
func Slice(size, align int) (*Region, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	if align < 1 {
		align = 1
	}
	raw := make([]byte, size+align)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	skip := int(format.AlignUp(uint64(addr), uint64(align)) - uint64(addr))
	return &Region{data: raw[skip : skip+size : skip+size]}, nil
}
