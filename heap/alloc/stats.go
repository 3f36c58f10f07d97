package alloc

// Stats holds allocator counters for diagnostics and tests.
type Stats struct {
	AllocCalls    int    // Total Allocate() calls
	AllocFailures int    // Allocate() calls that returned an error
	FreeCalls     int    // Total Deallocate() calls
	Splits        int    // Blocks halved on the allocate path
	Coalesces     int    // Buddy merges on the deallocate path
	Resets        int    // Heap reconfigurations
	BytesAlloc    uint64 // Bytes handed out (rounded block sizes)
	BytesFreed    uint64 // Bytes returned (rounded block sizes)
}

// Live returns the number of bytes handed out and not yet returned.
func (s Stats) Live() uint64 {
	return s.BytesAlloc - s.BytesFreed
}
