package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/trace"
)

func init() {
	rootCmd.AddCommand(newReplayCmd())
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay a recorded allocation trace against a heap",
		Long: `The replay command reads a trace file of "alloc <id> <size> [align]"
and "free <id>" lines (UTF-8 or UTF-16 with BOM) and replays it against a
freshly opened heap.

Example:
  heapctl replay boot.trace
  heapctl replay boot.trace --strategy bump --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args)
		},
	}
	addHeapFlags(cmd)
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	path := args[0]
	printVerbose("Reading trace: %s\n", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	ops, err := trace.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse trace: %w", err)
	}

	rep, err := runOps(cmd.Context(), ops)
	if err != nil {
		return err
	}
	return printRunReport(rep)
}
