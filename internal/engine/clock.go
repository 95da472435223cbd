package engine

import (
	"sync/atomic"
	"time"

	"github.com/roach88/livegraph/internal/graph"
)

// FrameClock yields the time step for each frame.
//
// Implemented by FixedClock (deterministic runs and tests) and WallClock
// (interactive runs). The runtime context clamps whatever it is given to
// [0, graph.MaxFrameDT].
type FrameClock interface {
	Tick() float32
}

// FixedClock returns the same step every frame and counts ticks.
//
// Thread-safety: FixedClock is safe for concurrent use (atomic counter).
type FixedClock struct {
	dt    float32
	ticks atomic.Int64
}

// NewFixedClock creates a clock that advances by dt every tick.
func NewFixedClock(dt float32) *FixedClock {
	return &FixedClock{dt: dt}
}

// Tick returns dt and records the tick.
func (c *FixedClock) Tick() float32 {
	c.ticks.Add(1)
	return c.dt
}

// Ticks returns how many frames the clock has produced.
func (c *FixedClock) Ticks() int64 {
	return c.ticks.Load()
}

// WallClock measures real elapsed time between ticks.
//
// The first tick returns 0. Long stalls (debugger, window drag) are clamped
// to graph.MaxFrameDT so one slow frame cannot make time jump.
type WallClock struct {
	now  func() time.Time
	last time.Time
}

// NewWallClock creates a clock reading time from now; nil uses time.Now.
func NewWallClock(now func() time.Time) *WallClock {
	if now == nil {
		now = time.Now
	}
	return &WallClock{now: now}
}

// Tick returns seconds since the previous tick.
func (c *WallClock) Tick() float32 {
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return 0
	}
	dt := float32(t.Sub(c.last).Seconds())
	c.last = t
	if dt < 0 {
		return 0
	}
	if dt > graph.MaxFrameDT {
		return graph.MaxFrameDT
	}
	return dt
}
