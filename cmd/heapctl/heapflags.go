package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Heap selection flags shared by every command that opens a heap.
var (
	heapStrategy string
	heapSize     uint64
	heapFile     string
	heapShadow   bool
	heapSpin     bool
	heapPoison   bool
)

func addHeapFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&heapStrategy, "strategy", "s", "buddy", "Allocator strategy (buddy, bump)")
	f.Uint64Var(&heapSize, "size", 0, "Arena size in bytes (0 = strategy default)")
	f.StringVar(&heapFile, "file", "", "Map the arena onto this file instead of anonymous memory")
	f.BoolVar(&heapShadow, "shadow", false, "Track live blocks and panic on mismatched frees (buddy only)")
	f.BoolVar(&heapSpin, "spin", false, "Guard the allocator with a spin lock")
	f.BoolVar(&heapPoison, "poison", false, "Fill handed-out buddy blocks with 0x55")
}

func resetHeapFlags() {
	heapStrategy = "buddy"
	heapSize = 0
	heapFile = ""
	heapShadow = false
	heapSpin = false
	heapPoison = false
}

// openHeap builds a heap from the selection flags.
func openHeap() (*heap.Heap, error) {
	strategy, err := heap.ParseStrategy(heapStrategy)
	if err != nil {
		return nil, err
	}
	cfg := heap.Config{
		Strategy:    strategy,
		Size:        uintptr(heapSize),
		BackingFile: heapFile,
		Shadow:      heapShadow,
		Spin:        heapSpin,
		Poison:      heapPoison,
		Logger:      logger.L,
	}
	printVerbose("Opening %s heap (size %d, file %q)\n", strategy, heapSize, heapFile)
	logger.Debug("heapctl: opening heap", "strategy", strategy, "size", heapSize, "file", heapFile)
	h, err := heap.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open heap: %w", err)
	}
	return h, nil
}
