package trace

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Result summarises a replay.
type Result struct {
	Allocs   int
	Failures int // allocations the heap refused
	Frees    int
	Skipped  int // frees of allocations that had failed
	PeakUsed uintptr
	Live     int // allocations still outstanding at the end
	Errors   map[string]int
}

// ErrUnknownID is returned for a free naming an ID that is not live, or an
// alloc reusing a live ID.
var ErrUnknownID = errors.New("trace: unknown or duplicate id")

// Replay runs ops against a. A refused allocation is counted, not fatal; a free
// for that allocation is then skipped.
func Replay(a alloc.Allocator, ops []Op) (Result, error) {
	type block struct {
		addr alloc.Addr
		l    alloc.Layout
		ok   bool
	}
	res := Result{Errors: make(map[string]int)}
	live := make(map[string]block)

	for i, op := range ops {
		switch op.Kind {
		case KindAlloc:
			if _, dup := live[op.ID]; dup {
				return res, fmt.Errorf("op %d: alloc %s: %w", i, op.ID, ErrUnknownID)
			}
			res.Allocs++
			addr, err := a.Allocate(op.Layout)
			if err != nil {
				res.Failures++
				res.Errors[err.Error()]++
				live[op.ID] = block{}
				continue
			}
			live[op.ID] = block{addr: addr, l: op.Layout, ok: true}
			res.PeakUsed = max(res.PeakUsed, a.Used())

		case KindFree:
			b, found := live[op.ID]
			if !found {
				return res, fmt.Errorf("op %d: free %s: %w", i, op.ID, ErrUnknownID)
			}
			delete(live, op.ID)
			if !b.ok {
				res.Skipped++
				continue
			}
			res.Frees++
			a.Deallocate(b.addr, b.l)
		}
	}
	for _, b := range live {
		if b.ok {
			res.Live++
		}
	}
	return res, nil
}
