package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	simSeed     uint64
	simOps      int
	simMaxSize  uint64
	simMaxAlign uint64
	simFreeBias float64
	simNoDrain  bool
	simOut      string
)

func init() {
	rootCmd.AddCommand(newSimulateCmd())
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a seeded random workload against a heap",
		Long: `The simulate command generates a deterministic allocation workload,
replays it against a freshly opened heap and reports refusals, peak usage and
(for buddy heaps) free-list consistency.

Example:
  heapctl simulate --seed 7 --ops 10000
  heapctl simulate --strategy bump --max-size 512
  heapctl simulate --out workload.trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd)
		},
	}
	addHeapFlags(cmd)
	d := trace.DefaultGenOptions()
	f := cmd.Flags()
	f.Uint64Var(&simSeed, "seed", d.Seed, "Workload seed")
	f.IntVar(&simOps, "ops", d.Ops, "Number of operations to generate")
	f.Uint64Var(&simMaxSize, "max-size", uint64(d.MaxSize), "Largest request size in bytes")
	f.Uint64Var(&simMaxAlign, "max-align", uint64(d.MaxAlign), "Largest request alignment (power of two)")
	f.Float64Var(&simFreeBias, "free-bias", d.FreeBias, "Probability of a free when blocks are live")
	f.BoolVar(&simNoDrain, "no-drain", false, "Leave live blocks allocated at the end")
	f.StringVarP(&simOut, "out", "o", "", "Also write the generated trace to this file")
	return cmd
}

func runSimulate(cmd *cobra.Command) error {
	ops := trace.Generate(trace.GenOptions{
		Seed:     simSeed,
		Ops:      simOps,
		MaxSize:  uintptr(simMaxSize),
		MaxAlign: uintptr(simMaxAlign),
		FreeBias: simFreeBias,
		Drain:    !simNoDrain,
	})
	printVerbose("Generated %d operations (seed %d)\n", len(ops), simSeed)

	if simOut != "" {
		f, err := os.Create(simOut)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		if err := trace.Write(f, ops); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write trace: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		printVerbose("Wrote trace to %s\n", simOut)
	}

	rep, err := runOps(cmd.Context(), ops)
	if err != nil {
		return err
	}
	return printRunReport(rep)
}
