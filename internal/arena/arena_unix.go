//go:build linux || darwin || freebsd

package arena

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Anonymous maps size bytes of private, zero-filled memory.
func Anonymous(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap anonymous %d bytes: %w", size, err)
	}
	return &Region{data: data, unmap: munmap}, nil
}

// MapFile maps path read-write and shared so the arena image persists. The
// file is created if needed and sized to exactly size bytes.
func MapFile(path string, size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("arena: size %s: %w", path, err)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("arena: mmap %s: %w", path, err)
	}
	return &Region{data: data, f: f, unmap: munmap}, nil
}

// Flush writes a file-backed region to disk. It is a no-op for other regions.
func (r *Region) Flush() error {
	if r.f == nil {
		return nil
	}
	if r.data == nil {
		return ErrClosed
	}
	return unix.Msync(r.data, unix.MS_SYNC)
}

// Discard gives the pages of an anonymous region back to the kernel. They read
// as zero afterwards. File-backed regions are left alone.
func (r *Region) Discard() error {
	if r.data == nil {
		return ErrClosed
	}
	if r.f != nil {
		return nil
	}
	if r.unmap == nil {
		clear(r.data)
		return nil
	}
	return unix.Madvise(r.data, unix.MADV_DONTNEED)
}

func munmap(data []byte) error {
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
