package testutil

import "sync"

// ScriptedClock replays a fixed sequence of frame steps for tests.
//
// Once the script is exhausted the last step repeats, so a scenario can
// list only the frames that differ. An empty script ticks 0.
//
// Implements engine.FrameClock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedClock struct {
	mu    sync.Mutex
	steps []float32
	idx   int
}

// NewScriptedClock creates a clock that returns steps in order.
func NewScriptedClock(steps ...float32) *ScriptedClock {
	return &ScriptedClock{steps: append([]float32(nil), steps...)}
}

// Tick returns the next scripted step.
func (c *ScriptedClock) Tick() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.steps) == 0 {
		return 0
	}
	i := c.idx
	if i >= len(c.steps) {
		i = len(c.steps) - 1
	}
	c.idx++
	return c.steps[i]
}

// Ticks returns how many steps have been taken.
func (c *ScriptedClock) Ticks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx
}

// Reset rewinds to the first step.
func (c *ScriptedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idx = 0
}
