// Package heap selects, provisions and binds a heapkit allocator.
//
// A Heap owns a backing arena (anonymous memory or a file-backed mapping) and
// one allocator strategy over it:
//
//   - StrategyBuddy: power-of-two buddy allocator with splitting and coalescing
//   - StrategyBump: non-reclaiming arena carved downward
//
// Open follows the kernel boot flow: the buddy allocator is built on a small
// provisional region first and then pointed at the real arena with SetHeap.
//
// # Process-wide binding
//
// Register installs a Heap as the process allocator exactly once. The package
// functions Allocate and Deallocate forward to it.
//
// # Diagnostics
//
// Report returns a Usage snapshot; LogUsage writes one as a structured log
// record and Monitor does so periodically, warning when pressure crosses a
// threshold.
package heap
