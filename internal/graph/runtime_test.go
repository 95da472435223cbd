package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRuntime_AdvanceClampsDT tests dt clamping and the frame counter.
func TestRuntime_AdvanceClampsDT(t *testing.T) {
	var rt Runtime

	rt.Advance(0.5)
	assert.InDelta(t, 0.1, rt.DT, 1e-6)
	assert.InDelta(t, 0.1, rt.Time, 1e-6)

	rt.Advance(-1)
	assert.Equal(t, float32(0), rt.DT)
	assert.InDelta(t, 0.1, rt.Time, 1e-6)
	assert.Equal(t, uint32(2), rt.Frame)

	rt.Reset()
	assert.Equal(t, float32(0), rt.Time)
	assert.Equal(t, uint32(0), rt.Frame)
	assert.Equal(t, float32(0), rt.DT)
}

// TestRuntime_ButtonEdges tests pressed and released derivation.
func TestRuntime_ButtonEdges(t *testing.T) {
	var rt Runtime

	rt.UpdateButtons(ButtonCross | ButtonStart)
	assert.Equal(t, ButtonCross|ButtonStart, rt.Pressed)
	assert.Equal(t, Buttons(0), rt.Released)

	rt.UpdateButtons(ButtonCross | ButtonL1)
	assert.Equal(t, ButtonL1, rt.Pressed)
	assert.Equal(t, ButtonStart, rt.Released)
	assert.True(t, rt.Held.Has(ButtonCross|ButtonL1))
	assert.False(t, rt.Held.Has(ButtonStart))
}

// TestRuntime_AxesClamp tests analog range clamping.
func TestRuntime_AxesClamp(t *testing.T) {
	var rt Runtime
	rt.SetSticks(-2, 0.5, 3, -0.25)
	rt.SetTriggers(-1, 2)

	assert.Equal(t, float32(-1), rt.LX)
	assert.Equal(t, float32(0.5), rt.LY)
	assert.Equal(t, float32(1), rt.RX)
	assert.Equal(t, float32(-0.25), rt.RY)
	assert.Equal(t, float32(0), rt.L2)
	assert.Equal(t, float32(1), rt.R2)
}
