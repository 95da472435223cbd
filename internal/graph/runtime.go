package graph

// MaxFrameDT caps a single frame step so a stall never produces a huge jump.
const MaxFrameDT = 0.1

// Buttons is a 16-bit pad button mask.
type Buttons uint16

// Button bits, in controller report order.
const (
	ButtonSelect Buttons = 1 << iota
	ButtonL3
	ButtonR3
	ButtonStart
	ButtonUp
	ButtonRight
	ButtonDown
	ButtonLeft
	ButtonL2
	ButtonR2
	ButtonL1
	ButtonR1
	ButtonTriangle
	ButtonCircle
	ButtonCross
	ButtonSquare
)

// Has reports whether every bit of mask is set.
func (b Buttons) Has(mask Buttons) bool {
	return b&mask == mask
}

// Runtime is the per-frame context handed read-only to node behaviors.
// The timing and input collaborators produce it before each evaluation.
type Runtime struct {
	Time  float32 // monotonic seconds
	DT    float32 // clamped to [0, MaxFrameDT]
	Frame uint32

	// Analog sticks in [-1, 1].
	LX, LY, RX, RY float32
	// Analog triggers in [0, 1].
	L2, R2 float32

	Held     Buttons
	Pressed  Buttons
	Released Buttons
}

// Reset rewinds time and the frame counter. DT and pad state are kept so
// a restart does not glitch held inputs.
func (rt *Runtime) Reset() {
	rt.Time = 0
	rt.Frame = 0
}

// Advance steps time by dt, clamped to [0, MaxFrameDT], and counts a frame.
func (rt *Runtime) Advance(dt float32) {
	if dt < 0 {
		dt = 0
	}
	if dt > MaxFrameDT {
		dt = MaxFrameDT
	}
	rt.DT = dt
	rt.Time += dt
	rt.Frame++
}

// SetSticks stores already-normalized stick axes, clamping to [-1, 1].
func (rt *Runtime) SetSticks(lx, ly, rx, ry float32) {
	rt.LX = clampf(lx, -1, 1)
	rt.LY = clampf(ly, -1, 1)
	rt.RX = clampf(rx, -1, 1)
	rt.RY = clampf(ry, -1, 1)
}

// SetTriggers stores trigger pressure, clamping to [0, 1].
func (rt *Runtime) SetTriggers(l2, r2 float32) {
	rt.L2 = clampf(l2, 0, 1)
	rt.R2 = clampf(r2, 0, 1)
}

// UpdateButtons records the held mask and derives edge masks against the
// previous frame.
func (rt *Runtime) UpdateButtons(held Buttons) {
	prev := rt.Held
	rt.Held = held
	rt.Pressed = held &^ prev
	rt.Released = prev &^ held
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
