package heap

import (
	"fmt"
	"strings"
)

// Strategy selects the allocator implementation.
type Strategy int

const (
	// StrategyBuddy uses heap/buddy.
	StrategyBuddy Strategy = iota
	// StrategyBump uses heap/bump.
	StrategyBump
)

func (s Strategy) String() string {
	switch s {
	case StrategyBuddy:
		return "buddy"
	case StrategyBump:
		return "bump"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps "buddy" or "bump" (any case) to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buddy":
		return StrategyBuddy, nil
	case "bump":
		return StrategyBump, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}
