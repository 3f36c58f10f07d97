package format

import "math/bits"

// Power-of-two utilities. All heap sizes, block sizes and alignments are
// powers of two, so rounding and order arithmetic reduce to shifts and masks.

// IsPow2 reports whether n is a non-zero power of two.
func IsPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// NextPow2 returns the smallest power of two >= n. NextPow2(0) is 1.
//
// Example:
//
//	NextPow2(100) = 128
//	NextPow2(128) = 128
//	NextPow2(129) = 256
func NextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

// Log2 returns floor(log2(n)). Log2(0) is 0, matching the reference helper.
func Log2(n uint64) uint {
	if n == 0 {
		return 0
	}
	return uint(bits.Len64(n) - 1)
}

// AlignUp rounds n up to a multiple of align (a power of two).
func AlignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// AlignDown rounds n down to a multiple of align (a power of two).
func AlignDown(n, align uint64) uint64 {
	return n &^ (align - 1)
}

// IsAligned reports whether n is a multiple of align (a power of two).
func IsAligned(n, align uint64) bool {
	return n&(align-1) == 0
}
