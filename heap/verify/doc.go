// Package verify checks the structural invariants of a buddy heap.
//
// # Overview
//
// The checks work on a buddy.Snapshot (a copy of the free-list table) plus the
// list of blocks the caller believes are live. They are primarily used in
// tests and by heapctl after every replayed operation.
//
// Validation categories:
//   - FreeLists: every free block is inside the heap, aligned to its order
//     size, and listed exactly once
//   - NoOverlap: no two blocks, free or live, share a byte
//   - Conservation: free bytes plus live bytes equal the heap size
//
// # Quick Start
//
//	snap := a.Snapshot()
//	if err := verify.BuddyInvariants(snap, live); err != nil {
//	    fmt.Printf("heap corrupt: %v\n", err)
//	}
//
// All functions return *ValidationError on failure:
//
//	if verr, ok := err.(*verify.ValidationError); ok {
//	    fmt.Printf("Type: %s\n", verr.Type)
//	    fmt.Printf("Offset: 0x%X\n", verr.Offset)
//	}
package verify
