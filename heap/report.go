package heap

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Usage is a point-in-time view of a heap.
type Usage struct {
	Strategy Strategy
	Total    uintptr
	Free     uintptr
	Used     uintptr
	Pressure float64 // Used / Total

	// FreeBlocks counts free blocks per order (buddy only).
	FreeBlocks []int
	Stats      alloc.Stats
}

// Report samples the heap. After Close only Strategy and Stats are filled in.
func (h *Heap) Report() Usage {
	u, _ := h.sample()
	return u
}

// sample reads every figure under one shared lock, so Close cannot unmap the
// arena halfway through. It reports false once the heap is closed.
func (h *Heap) sample() (Usage, bool) {
	u := Usage{Strategy: h.cfg.Strategy, Stats: h.Stats()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return u, false
	}
	u.Total = h.a.Total()
	u.Free = h.a.Free()
	u.Used = u.Total - u.Free
	if u.Total > 0 {
		u.Pressure = float64(u.Used) / float64(u.Total)
	}
	if h.buddy != nil {
		counts := h.buddy.FreeBlocks()
		u.FreeBlocks = counts[:]
	}
	return u, true
}

// LogAttrs renders the usage as slog attributes.
func (u Usage) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("strategy", u.Strategy.String()),
		slog.Uint64("total", uint64(u.Total)),
		slog.Uint64("free", uint64(u.Free)),
		slog.Uint64("used", uint64(u.Used)),
		slog.Float64("pressure", u.Pressure),
		slog.Int("allocs", u.Stats.AllocCalls),
		slog.Int("failures", u.Stats.AllocFailures),
		slog.Int("frees", u.Stats.FreeCalls),
	}
}

// LogUsage writes one usage record to l (the heap logger when nil).
func (h *Heap) LogUsage(ctx context.Context, l *slog.Logger) {
	if l == nil {
		l = h.log
	}
	u, ok := h.sample()
	msg := "heap: usage"
	if !ok {
		msg = "heap: usage after close"
	}
	l.LogAttrs(ctx, slog.LevelInfo, msg, u.LogAttrs()...)
}

// Monitor logs usage every interval until ctx is done or the heap is closed,
// warning whenever pressure is at or above threshold. Run it in its own
// goroutine.
func (h *Heap) Monitor(ctx context.Context, interval time.Duration, threshold float64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		u, ok := h.sample()
		if !ok {
			return
		}
		level := slog.LevelInfo
		msg := "heap: usage"
		if u.Pressure >= threshold {
			level = slog.LevelWarn
			msg = "heap: memory pressure"
		}
		h.log.LogAttrs(ctx, level, msg, u.LogAttrs()...)
	}
}
