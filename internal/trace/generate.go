package trace

import (
	"math/rand/v2"
	"strconv"
)

// GenOptions shapes a generated workload.
type GenOptions struct {
	Seed     uint64
	Ops      int     // number of operations to emit
	MaxSize  uintptr // largest request size
	MaxAlign uintptr // largest alignment, a power of two
	FreeBias float64 // probability of freeing when something is live
	Drain    bool    // free everything still live at the end
}

// DefaultGenOptions returns a mixed small-object workload.
func DefaultGenOptions() GenOptions {
	return GenOptions{
		Seed:     1,
		Ops:      1000,
		MaxSize:  4096,
		MaxAlign: 64,
		FreeBias: 0.4,
		Drain:    true,
	}
}

// Generate produces a deterministic workload for opts.Seed. Every free refers
// to an earlier, not yet freed allocation.
func Generate(opts GenOptions) []Op {
	if opts.MaxSize == 0 {
		opts.MaxSize = 1
	}
	if opts.MaxAlign == 0 {
		opts.MaxAlign = 1
	}
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var alignShifts uint
	for a := opts.MaxAlign; a > 1; a >>= 1 {
		alignShifts++
	}

	ops := make([]Op, 0, opts.Ops)
	var live []string
	next := 0
	for range opts.Ops {
		if len(live) > 0 && r.Float64() < opts.FreeBias {
			i := r.IntN(len(live))
			ops = append(ops, Op{Kind: KindFree, ID: live[i]})
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		id := "a" + strconv.Itoa(next)
		next++
		op := Op{Kind: KindAlloc, ID: id}
		op.Layout.Size = 1 + uintptr(r.Uint64N(uint64(opts.MaxSize)))
		op.Layout.Align = 1 << r.UintN(alignShifts+1)
		ops = append(ops, op)
		live = append(live, id)
	}
	if opts.Drain {
		for _, id := range live {
			ops = append(ops, Op{Kind: KindFree, ID: id})
		}
	}
	return ops
}
