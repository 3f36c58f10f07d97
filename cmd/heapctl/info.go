package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Open a heap and report its geometry",
		Long: `The info command opens a heap with the given strategy and size and
displays its base address, minimum block size, per-order block sizes and
free-list lengths.

Example:
  heapctl info
  heapctl info --size 4194304 --json
  heapctl info --strategy bump`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
	addHeapFlags(cmd)
	return cmd
}

// orderInfo is one row of the order table.
type orderInfo struct {
	Order     int    `json:"order"`
	BlockSize uint64 `json:"block_size"`
	FreeCount int    `json:"free_blocks"`
}

// heapInfo is the info command's JSON document.
type heapInfo struct {
	Strategy     string      `json:"strategy"`
	Base         string      `json:"base"`
	Size         uint64      `json:"size"`
	Free         uint64      `json:"free"`
	Used         uint64      `json:"used"`
	MinBlockSize uint64      `json:"min_block_size,omitempty"`
	Orders       []orderInfo `json:"orders,omitempty"`
	FileBacked   bool        `json:"file_backed"`
}

func describeHeap(h *heap.Heap) heapInfo {
	u := h.Report()
	info := heapInfo{
		Strategy:   u.Strategy.String(),
		Size:       uint64(u.Total),
		Free:       uint64(u.Free),
		Used:       uint64(u.Used),
		FileBacked: heapFile != "",
	}
	if b := h.Buddy(); b != nil {
		r := b.Region()
		info.Base = r.Base.String()
		info.MinBlockSize = uint64(r.MinBlockSize)
		for order := range format.OrderCount {
			info.Orders = append(info.Orders, orderInfo{
				Order:     order,
				BlockSize: uint64(b.OrderSize(order)),
				FreeCount: u.FreeBlocks[order],
			})
		}
	}
	return info
}

func runInfo() error {
	h, err := openHeap()
	if err != nil {
		return err
	}
	defer h.Close()

	info := describeHeap(h)
	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nHeap Information:\n")
	printInfo("  Strategy: %s\n", info.Strategy)
	if info.Base != "" {
		printInfo("  Base: %s\n", info.Base)
	}
	printInfo("  Size: %s\n", formatBytes(info.Size))
	printInfo("  Free: %s\n", formatBytes(info.Free))
	printInfo("  Used: %s\n", formatBytes(info.Used))
	if info.MinBlockSize != 0 {
		printInfo("  Min block: %s\n", formatBytes(info.MinBlockSize))
		printInfo("\nOrders:\n")
		for _, o := range info.Orders {
			printInfo("  %2d  %22s  %s free\n", o.Order, formatBytes(o.BlockSize), formatCount(o.FreeCount))
		}
	}
	if verbose && h.Buddy() != nil {
		printInfo("\n")
		if err := h.Buddy().WriteState(stdout()); err != nil {
			return fmt.Errorf("failed to write free-list state: %w", err)
		}
	}
	return nil
}
