package alloc

import "errors"

var (
	// ErrUnsupported indicates an alignment that is not a power of two or
	// exceeds the largest supported alignment.
	ErrUnsupported = errors.New("alloc: unsupported layout")

	// ErrTooLarge indicates a request larger than the whole heap.
	ErrTooLarge = errors.New("alloc: request exceeds heap size")

	// ErrNoMemory indicates that no free block large enough exists right now.
	ErrNoMemory = errors.New("alloc: out of memory")

	// ErrBadAlign indicates a Layout built with an invalid alignment.
	ErrBadAlign = errors.New("alloc: alignment must be a power of two")
)
