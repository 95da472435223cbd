package nodes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/graph"
)

const tol = 1e-5

// newNode returns a node of type t with registry defaults applied.
func newNode(r *Registry, t graph.NodeType, params ...float32) *graph.Node {
	n := &graph.Node{Type: t, Params: r.Defaults(t), State: graph.ResetState(t)}
	copy(n.Params[:], params)
	return n
}

func eval(r *Registry, n *graph.Node, in graph.Ports, rt *graph.Runtime) graph.Ports {
	if rt == nil {
		rt = &graph.Runtime{DT: 1.0 / 60}
	}
	return r.Lookup(n.Type)(n, in, rt)
}

func assertPorts(t *testing.T, want, got graph.Ports) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "port %d", i)
	}
}

// TestStatelessBehaviors tests every pure behavior with a representative input.
func TestStatelessBehaviors(t *testing.T) {
	r := New()
	rt := &graph.Runtime{Time: 2, DT: 0.5, LX: 0.1, LY: 0.2, RX: 0.3, RY: 0.4, L2: 0.5, R2: 0.6}

	tests := []struct {
		name   string
		typ    graph.NodeType
		params []float32
		in     graph.Ports
		want   graph.Ports
	}{
		{"const", graph.TypeConst, []float32{7}, graph.Ports{}, graph.Ports{7}},
		{"time default scale", graph.TypeTime, nil, graph.Ports{}, graph.Ports{2, 0.5}},
		{"time zero scale", graph.TypeTime, []float32{0}, graph.Ports{}, graph.Ports{2, 0.5}},
		{"time scaled", graph.TypeTime, []float32{3}, graph.Ports{}, graph.Ports{6, 1.5}},
		{"pad channel 0", graph.TypePad, []float32{0}, graph.Ports{}, graph.Ports{0.1, 0.2, 0.3, 0.4}},
		{"pad channel 1", graph.TypePad, []float32{1}, graph.Ports{}, graph.Ports{0.3, 0.4, 0.5, 0.6}},
		{"pad channel 3", graph.TypePad, []float32{3}, graph.Ports{}, graph.Ports{0.1, 0.2, 0.3, 0.4}},
		{"add", graph.TypeAdd, nil, graph.Ports{2, 3, 9, 9}, graph.Ports{5}},
		{"mul", graph.TypeMul, nil, graph.Ports{2, 3}, graph.Ports{6}},
		{"sub", graph.TypeSub, nil, graph.Ports{2, 3}, graph.Ports{-1}},
		{"div", graph.TypeDiv, nil, graph.Ports{3, 2}, graph.Ports{1.5}},
		{"div by zero", graph.TypeDiv, nil, graph.Ports{3, 0.00001}, graph.Ports{0}},
		{"mod", graph.TypeMod, nil, graph.Ports{7, 3}, graph.Ports{1}},
		{"mod negative", graph.TypeMod, nil, graph.Ports{-7, 3}, graph.Ports{-1}},
		{"mod by zero", graph.TypeMod, nil, graph.Ports{7, 0}, graph.Ports{0}},
		{"abs", graph.TypeAbs, nil, graph.Ports{-4}, graph.Ports{4}},
		{"neg", graph.TypeNeg, nil, graph.Ports{4}, graph.Ports{-4}},
		{"min", graph.TypeMin, nil, graph.Ports{4, -1}, graph.Ports{-1}},
		{"max", graph.TypeMax, nil, graph.Ports{4, -1}, graph.Ports{4}},
		{"clamp low", graph.TypeClamp, nil, graph.Ports{-2}, graph.Ports{0}},
		{"clamp high", graph.TypeClamp, nil, graph.Ports{2}, graph.Ports{1}},
		{"map", graph.TypeMap, []float32{0, 10, 100, 200}, graph.Ports{5}, graph.Ports{150, 0.5}},
		{"map degenerate", graph.TypeMap, []float32{1, 1, 100, 200}, graph.Ports{5}, graph.Ports{100, 0}},
		{"sin", graph.TypeSin, nil, graph.Ports{math.Pi / 2}, graph.Ports{1}},
		{"sin freq amp offset", graph.TypeSin, []float32{2, 3, 1}, graph.Ports{math.Pi / 4}, graph.Ports{4}},
		{"sin zero freq amp", graph.TypeSin, []float32{0, 0}, graph.Ports{math.Pi / 2}, graph.Ports{1}},
		{"cos", graph.TypeCos, nil, graph.Ports{0}, graph.Ports{1}},
		{"tan clamped", graph.TypeTan, nil, graph.Ports{1.5707}, graph.Ports{1000}},
		{"tan", graph.TypeTan, nil, graph.Ports{math.Pi / 4}, graph.Ports{1}},
		{"atan2", graph.TypeAtan2, nil, graph.Ports{1, 0}, graph.Ports{math.Pi / 2, 0.5, 0.75}},
		{"lerp", graph.TypeLerp, nil, graph.Ports{0, 10, 0.25}, graph.Ports{2.5}},
		{"lerp clamps t", graph.TypeLerp, nil, graph.Ports{0, 10, 4}, graph.Ports{10}},
		{"step hard below", graph.TypeStep, nil, graph.Ports{0.4}, graph.Ports{0}},
		{"step hard at", graph.TypeStep, nil, graph.Ports{0.5}, graph.Ports{1}},
		{"step soft mid", graph.TypeStep, []float32{0.5, 0.1}, graph.Ports{0.5}, graph.Ports{0.5}},
		{"compare lt", graph.TypeCompare, []float32{0}, graph.Ports{1, 2}, graph.Ports{1, -1}},
		{"compare le", graph.TypeCompare, []float32{1}, graph.Ports{2, 2}, graph.Ports{1, 0}},
		{"compare eq", graph.TypeCompare, []float32{2}, graph.Ports{2, 2.00001}, graph.Ports{1, -0.00001}},
		{"compare ge", graph.TypeCompare, []float32{3}, graph.Ports{1, 2}, graph.Ports{0, -1}},
		{"compare gt", graph.TypeCompare, []float32{4}, graph.Ports{3, 2}, graph.Ports{1, 1}},
		{"compare unknown mode", graph.TypeCompare, []float32{9}, graph.Ports{3, 2}, graph.Ports{0, 1}},
		{"select a", graph.TypeSelect, nil, graph.Ports{1, 2, 0}, graph.Ports{1}},
		{"select b", graph.TypeSelect, nil, graph.Ports{1, 2, 0.5}, graph.Ports{2}},
		{"gate open", graph.TypeGate, nil, graph.Ports{3, 1}, graph.Ports{3}},
		{"gate closed", graph.TypeGate, nil, graph.Ports{3, 0.1}, graph.Ports{0}},
		{"split", graph.TypeSplit, nil, graph.Ports{3, 9, 9, 9}, graph.Ports{3, 3, 3, 3}},
		{"combine", graph.TypeCombine, nil, graph.Ports{1, 2, 3, 4}, graph.Ports{1, 2, 3, 4}},
		{"debug", graph.TypeDebug, nil, graph.Ports{1, 2, 3, 4}, graph.Ports{1, 2, 3, 4}},
		{"colorize", graph.TypeColorize, []float32{1, 0.5, 0}, graph.Ports{0.5}, graph.Ports{0.5, 0.25, 0}},
		{"colorize clamps", graph.TypeColorize, nil, graph.Ports{3}, graph.Ports{1, 1, 1}},
		{"hsv red", graph.TypeHSV, nil, graph.Ports{0, 1, 1}, graph.Ports{1, 0, 0, 1}},
		{"hsv green", graph.TypeHSV, nil, graph.Ports{1.0 / 3, 1, 1}, graph.Ports{0, 1, 0, 1}},
		{"hsv wraps", graph.TypeHSV, nil, graph.Ports{-1.0 / 3, 1, 1}, graph.Ports{0, 0, 1, 1}},
		{"hsv grey", graph.TypeHSV, nil, graph.Ports{0.7, 0, 0.5}, graph.Ports{0.5, 0.5, 0.5, 1}},
		{"gradient", graph.TypeGradient, nil, graph.Ports{0.5}, graph.Ports{0.5, 0.5, 0.5, 1}},
		{"gradient clamps", graph.TypeGradient, []float32{1, 0, 0, 0, 0, 1}, graph.Ports{-1}, graph.Ports{1, 0, 0, 1}},
		{"transform offset", graph.TypeTransform2D, []float32{1, 2, 0, 1}, graph.Ports{1, 1, 0}, graph.Ports{2, 3, 1}},
		{"transform rotate", graph.TypeTransform2D, []float32{0, 0, math.Pi / 2, 2}, graph.Ports{1, 0, 3}, graph.Ports{0, 1, 6}},
		{"render2d", graph.TypeRender2D, nil, graph.Ports{1, 1, 1, 1}, graph.Ports{0.3, 0.3, 0.4, 0.4}},
		{"circle", graph.TypeRenderCircle, nil, graph.Ports{1, 1, 1, 1}, graph.Ports{0.5, 0.5, 0.1, 0}},
		{"line", graph.TypeRenderLine, nil, graph.Ports{1, 1, 1, 1}, graph.Ports{0.2, 0.2, 0.8, 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNode(r, tt.typ, tt.params...)
			assertPorts(t, tt.want, eval(r, n, tt.in, rt))
		})
	}
}

// TestLookup_UnknownTypeZeroesOutputs tests the no-op fallback.
func TestLookup_UnknownTypeZeroesOutputs(t *testing.T) {
	r := New()
	for _, typ := range []graph.NodeType{graph.TypeNone, graph.TypeCount, 4000} {
		n := &graph.Node{Type: typ}
		assert.Equal(t, graph.Ports{}, r.Lookup(typ)(n, graph.Ports{1, 2, 3, 4}, &graph.Runtime{}))
	}
}

// TestLFO_Shapes tests each waveform at a quarter period.
func TestLFO_Shapes(t *testing.T) {
	r := New()
	rt := &graph.Runtime{Time: 0.25}

	tests := []struct {
		shape float32
		value float32
	}{
		{0, 1},    // sine peak
		{1, 0},    // triangle rising through zero
		{2, -0.5}, // saw
		{3, 1},    // square high half
	}
	for _, tt := range tests {
		n := newNode(r, graph.TypeLFO, 1, 0, tt.shape)
		out := eval(r, n, graph.Ports{}, rt)
		assert.InDelta(t, tt.value, out[0], tol, "shape %v", tt.shape)
		assert.InDelta(t, (tt.value+1)/2, out[1], tol)
		assert.InDelta(t, 0.25, out[2], tol)
	}

	// Negative phase wraps into [0, 1).
	n := newNode(r, graph.TypeLFO, 1, -0.5, 2)
	out := eval(r, n, graph.Ports{}, &graph.Runtime{Time: 0.25})
	assert.InDelta(t, 0.75, out[2], tol)
}

// TestDelay_ThreeFrames tests that the output lags the input by exactly the frame count.
func TestDelay_ThreeFrames(t *testing.T) {
	r := New()
	n := newNode(r, graph.TypeDelay, 3)

	for i := 0; i < 40; i++ {
		out := eval(r, n, graph.Ports{float32(i + 1)}, nil)
		if i < 3 {
			assert.Equal(t, float32(0), out[0], "evaluation %d", i)
			continue
		}
		assert.Equal(t, float32(i+1-3), out[0], "evaluation %d", i)
	}
}

// TestDelay_ClampsFrames tests frames outside [1, 16].
func TestDelay_ClampsFrames(t *testing.T) {
	r := New()

	low := newNode(r, graph.TypeDelay, 0)
	eval(r, low, graph.Ports{5}, nil)
	assert.Equal(t, float32(5), eval(r, low, graph.Ports{6}, nil)[0])

	high := newNode(r, graph.TypeDelay, 99)
	for i := 0; i < graph.DelayCapacity; i++ {
		assert.Equal(t, float32(0), eval(r, high, graph.Ports{float32(i + 1)}, nil)[0])
	}
	assert.Equal(t, float32(1), eval(r, high, graph.Ports{0}, nil)[0])
}

// TestSmooth_ConvergesToTarget tests exponential smoothing state.
func TestSmooth_ConvergesToTarget(t *testing.T) {
	r := New()
	n := newNode(r, graph.TypeSmooth, 5)
	rt := &graph.Runtime{DT: 0.1}

	first := eval(r, n, graph.Ports{1}, rt)[0]
	assert.InDelta(t, 1-math.Exp(-0.5), first, tol)

	var last float32
	for i := 0; i < 200; i++ {
		last = eval(r, n, graph.Ports{1}, rt)[0]
	}
	assert.InDelta(t, 1, last, 1e-3)
	assert.Equal(t, last, n.State.A)
}

// TestPulse_RisingEdge tests trigger, duration countdown and edge output.
func TestPulse_RisingEdge(t *testing.T) {
	r := New()
	n := newNode(r, graph.TypePulse, 0.5, 0.25)
	rt := &graph.Runtime{DT: 0.1}

	out := eval(r, n, graph.Ports{0}, rt)
	assert.Equal(t, graph.Ports{0, 0}, out)

	out = eval(r, n, graph.Ports{1}, rt)
	assert.Equal(t, graph.Ports{1, 1}, out)

	out = eval(r, n, graph.Ports{1}, rt) // held high: no new edge
	assert.Equal(t, graph.Ports{1, 0}, out)

	out = eval(r, n, graph.Ports{1}, rt)
	assert.Equal(t, float32(1), out[0])

	out = eval(r, n, graph.Ports{1}, rt)
	assert.Equal(t, float32(0), out[0], "timer expired")
}

// TestHold_SamplesOnTrigger tests sample-and-hold.
func TestHold_SamplesOnTrigger(t *testing.T) {
	r := New()
	n := newNode(r, graph.TypeHold)

	assert.Equal(t, float32(0), eval(r, n, graph.Ports{3, 0}, nil)[0])
	assert.Equal(t, float32(4), eval(r, n, graph.Ports{4, 1}, nil)[0])
	assert.Equal(t, float32(4), eval(r, n, graph.Ports{5, 1}, nil)[0])
	assert.Equal(t, float32(4), eval(r, n, graph.Ports{6, 0}, nil)[0])
	assert.Equal(t, float32(7), eval(r, n, graph.Ports{7, 1}, nil)[0])
}

// TestNoise_Deterministic tests the LCG seeding and output ranges.
func TestNoise_Deterministic(t *testing.T) {
	r := New()
	rt := &graph.Runtime{Time: 1.5, DT: 1.0 / 60}

	a := newNode(r, graph.TypeNoise)
	b := newNode(r, graph.TypeNoise)
	for i := 0; i < 50; i++ {
		oa := eval(r, a, graph.Ports{}, rt)
		ob := eval(r, b, graph.Ports{}, rt)
		require.Equal(t, oa, ob)
		assert.GreaterOrEqual(t, oa[0], float32(0))
		assert.LessOrEqual(t, oa[0], float32(1))
		assert.InDelta(t, oa[0]*2-1, oa[2], tol)
		assert.Equal(t, float32(0), oa[3])
	}
	assert.NotZero(t, a.State.Seed)

	// First value for seed 1501.
	c := newNode(r, graph.TypeNoise)
	out := eval(r, c, graph.Ports{}, rt)
	seed := uint32(1501)
	seed = (seed*1103515245 + 12345) & 0x7fffffff
	assert.InDelta(t, float32(seed&0xFFFF)/65535, out[0], tol)
}
