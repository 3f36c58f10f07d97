package heap

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
)

// Config controls how Open provisions a Heap.
type Config struct {
	Strategy Strategy

	// Size of the arena in bytes. Zero picks the strategy default
	// (format.DefaultHeapSize for buddy, format.BumpArenaSize for bump).
	// Buddy heaps need a power of two of at least format.MinHeapSize.
	Size uintptr

	// BackingFile maps the arena onto a file instead of anonymous memory.
	BackingFile string

	// Shadow enables the buddy shadow table that catches mismatched frees.
	Shadow bool

	// Spin guards the allocator with a spin lock instead of a mutex.
	Spin bool

	// Poison fills each buddy block with format.PoisonByte when handed out.
	// Bump arenas are always pre-filled.
	Poison bool

	// Logger receives telemetry and tracing. Defaults to logger.L.
	Logger *slog.Logger
}

// DefaultConfig returns a 1 MiB anonymous buddy heap.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategyBuddy,
		Size:     format.DefaultHeapSize,
	}
}

// withDefaults fills zero fields and validates the geometry.
func (c Config) withDefaults() (Config, error) {
	switch c.Strategy {
	case StrategyBuddy:
		if c.Size == 0 {
			c.Size = format.DefaultHeapSize
		}
		if err := validateBuddySize(c.Size); err != nil {
			return c, err
		}
	case StrategyBump:
		if c.Size == 0 {
			c.Size = format.BumpArenaSize
		}
		if c.Shadow {
			return c, fmt.Errorf("%w: shadow table requires the buddy strategy", ErrBadConfig)
		}
	default:
		return c, fmt.Errorf("%w: %w: %s", ErrBadConfig, ErrUnknownStrategy, c.Strategy)
	}
	return c, nil
}

func validateBuddySize(size uintptr) error {
	if !format.IsPow2(uint64(size)) {
		return fmt.Errorf("%w: size %d: %w", ErrBadConfig, size, format.ErrNotPow2)
	}
	if size < format.MinHeapSize {
		return fmt.Errorf("%w: size %d below minimum %d", ErrBadConfig, size, format.MinHeapSize)
	}
	return nil
}
