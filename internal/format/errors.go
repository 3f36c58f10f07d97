package format

import "errors"

var (
	// ErrNotPow2 indicates a size or alignment that must be a power of two was not.
	ErrNotPow2 = errors.New("format: not a power of two")
	// ErrMisaligned indicates an address that violates a required alignment.
	ErrMisaligned = errors.New("format: misaligned address")
)
