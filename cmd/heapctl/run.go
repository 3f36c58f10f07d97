package main

import (
	"context"
	"io"
	"os"
	"sort"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/trace"
)

// stdout returns the current os.Stdout so tests can redirect it.
func stdout() io.Writer { return os.Stdout }

// runReport is the JSON document printed by simulate and replay.
type runReport struct {
	Strategy string         `json:"strategy"`
	Ops      int            `json:"ops"`
	Allocs   int            `json:"allocs"`
	Failures int            `json:"failures"`
	Frees    int            `json:"frees"`
	Skipped  int            `json:"skipped"`
	Live     int            `json:"live"`
	PeakUsed uint64         `json:"peak_used"`
	Used     uint64         `json:"used"`
	Size     uint64         `json:"size"`
	Errors   map[string]int `json:"errors,omitempty"`
	Valid    *bool          `json:"valid,omitempty"`
	Problem  string         `json:"problem,omitempty"`
}

// alignChecker checks every address the wrapped allocator grants against the
// requested alignment and keeps the first violation.
type alignChecker struct {
	alloc.Allocator
	err error
}

func (c *alignChecker) Allocate(l alloc.Layout) (alloc.Addr, error) {
	addr, err := c.Allocator.Allocate(l)
	if err == nil && c.err == nil {
		c.err = verify.Aligned([]verify.Block{{Addr: addr, Size: l.Size}}, l.Align)
	}
	return addr, err
}

// runOps replays ops against a freshly opened heap and checks the buddy free
// lists afterwards. A drained workload is checked against the full invariant
// set, since every block must then be back on a free list.
func runOps(ctx context.Context, ops []trace.Op) (runReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	h, err := openHeap()
	if err != nil {
		return runReport{}, err
	}
	defer h.Close()

	chk := &alignChecker{Allocator: h}
	res, err := trace.Replay(chk, ops)
	if err != nil {
		return runReport{}, err
	}

	rep := runReport{
		Strategy: h.Strategy().String(),
		Ops:      len(ops),
		Allocs:   res.Allocs,
		Failures: res.Failures,
		Frees:    res.Frees,
		Skipped:  res.Skipped,
		Live:     res.Live,
		PeakUsed: uint64(res.PeakUsed),
		Used:     uint64(h.Used()),
		Size:     uint64(h.Total()),
		Errors:   res.Errors,
	}
	verr := chk.err
	b := h.Buddy()
	if b != nil && verr == nil {
		snap := b.Snapshot()
		if res.Live == 0 {
			verr = verify.BuddyInvariants(snap, nil)
		} else {
			verr = verify.FreeLists(snap)
		}
	}
	if b != nil || verr != nil {
		ok := verr == nil
		rep.Valid = &ok
		if verr != nil {
			rep.Problem = verr.Error()
			logger.Warn("heapctl: heap validation failed", "error", verr)
		}
	}
	logger.Info("heapctl: workload replayed",
		"strategy", rep.Strategy, "ops", rep.Ops, "failures", rep.Failures, "peak_used", rep.PeakUsed)
	if verbose {
		h.LogUsage(ctx, nil)
	}
	return rep, nil
}

func printRunReport(rep runReport) error {
	if jsonOut {
		return printJSON(rep)
	}

	printInfo("\nWorkload (%s):\n", rep.Strategy)
	printInfo("  Operations: %s\n", formatCount(rep.Ops))
	printInfo("  Allocations: %s (%s refused)\n", formatCount(rep.Allocs), formatCount(rep.Failures))
	printInfo("  Frees: %s (%s skipped)\n", formatCount(rep.Frees), formatCount(rep.Skipped))
	printInfo("  Live at end: %s\n", formatCount(rep.Live))
	printInfo("  Peak used: %s of %s\n", formatBytes(rep.PeakUsed), formatBytes(rep.Size))
	printInfo("  Used at end: %s\n", formatBytes(rep.Used))

	if len(rep.Errors) > 0 {
		printInfo("\nRefusals:\n")
		keys := make([]string, 0, len(rep.Errors))
		for k := range rep.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			printInfo("  %s: %s\n", k, formatCount(rep.Errors[k]))
		}
	}

	if rep.Valid != nil {
		printInfo("\nValidation:\n")
		if *rep.Valid {
			printInfo("  ✓ Allocations aligned\n")
			printInfo("  ✓ Free lists consistent\n")
		} else {
			printInfo("  ✗ %s\n", rep.Problem)
		}
	}
	return nil
}

