//go:build !linux && !darwin && !freebsd

package arena

import (
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Anonymous allocates size bytes on the Go heap when mmap is not available.
func Anonymous(size int) (*Region, error) {
	return Slice(size, format.MinHeapAlign)
}

// MapFile reads path into memory (creating it if needed); Flush writes it back.
func MapFile(path string, size int) (*Region, error) {
	r, err := Slice(size, format.MinHeapAlign)
	if err != nil {
		return nil, err
	}
	if existing, err := os.ReadFile(path); err == nil {
		copy(r.data, existing)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	r.f = f
	return r, r.Flush()
}

// Flush writes a file-backed region to disk. It is a no-op for other regions.
func (r *Region) Flush() error {
	if r.f == nil {
		return nil
	}
	if r.data == nil {
		return ErrClosed
	}
	if _, err := r.f.WriteAt(r.data, 0); err != nil {
		return err
	}
	return r.f.Truncate(int64(len(r.data)))
}

// Discard zeroes an in-memory region. File-backed regions are left alone.
func (r *Region) Discard() error {
	if r.data == nil {
		return ErrClosed
	}
	if r.f == nil {
		clear(r.data)
	}
	return nil
}
