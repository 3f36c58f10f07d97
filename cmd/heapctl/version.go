package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..." by release builds. Anything left at
// its default is filled in from the module build info.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type buildInfo struct {
	Version string
	Commit  string
	Date    string
	Go      string
	Dirty   bool
}

// readBuildInfo merges the linker-stamped values with what the toolchain
// recorded in the binary.
func readBuildInfo() buildInfo {
	b := buildInfo{Version: version, Commit: commit, Date: date, Go: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "none" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Dirty = s.Value == "true"
		}
	}
	return b
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		b := readBuildInfo()
		rev := b.Commit
		if b.Dirty {
			rev += " (modified)"
		}
		fmt.Printf("heapctl %s\n", b.Version)
		fmt.Printf("  commit: %s\n", rev)
		fmt.Printf("  built: %s\n", b.Date)
		fmt.Printf("  go: %s\n", b.Go)
	},
}

func init() {
	rootCmd.Version = readBuildInfo().Version
	rootCmd.AddCommand(versionCmd)
}
