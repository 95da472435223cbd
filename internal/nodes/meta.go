package nodes

import "github.com/roach88/livegraph/internal/graph"

// Default bounds for any param without an explicit range.
const (
	DefaultParamMin float32 = -1000
	DefaultParamMax float32 = 1000
)

// Meta is the static description of a node type.
//
// Inputs, Outputs and Params are the counts actually used by the type; the
// fixed capacities are graph.MaxInputs, graph.MaxOutputs and graph.MaxParams.
type Meta struct {
	Type        graph.NodeType
	Name        string
	Ident       string // lower-case identifier used in graph documents
	Category    string
	InputNames  []string
	OutputNames []string
	ParamNames  []string
	Defaults    [graph.MaxParams]float32
	Min         [graph.MaxParams]float32
	Max         [graph.MaxParams]float32
}

// Inputs returns the number of input ports in use.
func (m *Meta) Inputs() int { return len(m.InputNames) }

// Outputs returns the number of output ports in use.
func (m *Meta) Outputs() int { return len(m.OutputNames) }

// Params returns the number of params in use.
func (m *Meta) Params() int { return len(m.ParamNames) }

// InBounds reports whether v lies within the range of param idx.
func (m *Meta) InBounds(idx int, v float32) bool {
	if idx < 0 || idx >= graph.MaxParams {
		return false
	}
	return v >= m.Min[idx] && v <= m.Max[idx]
}

type paramDef struct {
	name     string
	def      float32
	min, max float32
}

// p declares a param with the default range.
func p(name string, def float32) paramDef {
	return paramDef{name: name, def: def, min: DefaultParamMin, max: DefaultParamMax}
}

// pr declares a param with an explicit range.
func pr(name string, def, min, max float32) paramDef {
	return paramDef{name: name, def: def, min: min, max: max}
}

type typeDef struct {
	typ      graph.NodeType
	name     string
	ident    string
	category string
	inputs   []string
	outputs  []string
	params   []paramDef
	eval     Behavior
}

func names(s ...string) []string { return s }

var rgba = names("R", "G", "B", "A")

// definitions lists every node type in enum order.
var definitions = []typeDef{
	// Sources
	{graph.TypeConst, "Const", "const", "source", nil, names("value"),
		[]paramDef{p("value", 0)}, evalConst},
	{graph.TypeTime, "Time", "time", "source", nil, names("time", "dt"),
		[]paramDef{p("scale", 1)}, evalTime},
	{graph.TypePad, "Pad", "pad", "source", nil, names("lx", "ly", "rx", "ry"),
		[]paramDef{pr("channel", 0, 0, 3)}, evalPad},
	{graph.TypeNoise, "Noise", "noise", "source", nil, names("raw", "smooth", "bipolar"),
		[]paramDef{pr("speed", 5, 0.1, 50)}, evalNoise},
	{graph.TypeLFO, "LFO", "lfo", "source", nil, names("value", "uni", "phase"),
		[]paramDef{pr("freq", 1, 0.01, 20), p("phase", 0), pr("shape", 0, 0, 3)}, evalLFO},

	// Math
	{graph.TypeAdd, "Add", "add", "math", names("a", "b"), names("sum"), nil, evalAdd},
	{graph.TypeMul, "Mul", "mul", "math", names("a", "b"), names("product"), nil, evalMul},
	{graph.TypeSub, "Sub", "sub", "math", names("a", "b"), names("diff"), nil, evalSub},
	{graph.TypeDiv, "Div", "div", "math", names("a", "b"), names("quot"), nil, evalDiv},
	{graph.TypeMod, "Mod", "mod", "math", names("a", "b"), names("rem"), nil, evalMod},
	{graph.TypeAbs, "Abs", "abs", "math", names("in"), names("out"), nil, evalAbs},
	{graph.TypeNeg, "Neg", "neg", "math", names("in"), names("out"), nil, evalNeg},
	{graph.TypeMin, "Min", "min", "math", names("a", "b"), names("min"), nil, evalMin},
	{graph.TypeMax, "Max", "max", "math", names("a", "b"), names("max"), nil, evalMax},
	{graph.TypeClamp, "Clamp", "clamp", "math", names("in"), names("out"),
		[]paramDef{p("min", 0), p("max", 1)}, evalClamp},
	{graph.TypeMap, "Map", "map", "math", names("in"), names("out", "norm"),
		[]paramDef{p("in_min", 0), p("in_max", 1), p("out_min", 0), p("out_max", 1)}, evalMap},

	// Trig
	{graph.TypeSin, "Sin", "sin", "trig", names("angle"), names("value"),
		[]paramDef{p("freq", 1), p("amp", 1), p("offset", 0)}, evalSin},
	{graph.TypeCos, "Cos", "cos", "trig", names("angle"), names("value"),
		[]paramDef{p("freq", 1), p("amp", 1), p("offset", 0)}, evalCos},
	{graph.TypeTan, "Tan", "tan", "trig", names("angle"), names("value"), nil, evalTan},
	{graph.TypeAtan2, "Atan2", "atan2", "trig", names("y", "x"), names("rad", "norm", "uni"), nil, evalAtan2},

	// Filters
	{graph.TypeLerp, "Lerp", "lerp", "filter", names("a", "b", "t"), names("value"), nil, evalLerp},
	{graph.TypeSmooth, "Smooth", "smooth", "filter", names("input"), names("output"),
		[]paramDef{pr("speed", 5, 0.1, 100)}, evalSmooth},
	{graph.TypeStep, "Step", "step", "filter", names("in"), names("out"),
		[]paramDef{p("threshold", 0.5), p("edge", 0)}, evalStep},
	{graph.TypePulse, "Pulse", "pulse", "filter", names("trigger"), names("pulse", "edge"),
		[]paramDef{p("threshold", 0.5), pr("duration", 0.1, 0.01, 5)}, evalPulse},
	{graph.TypeHold, "Hold", "hold", "filter", names("value", "trigger"), names("held"),
		[]paramDef{p("threshold", 0.5)}, evalHold},
	{graph.TypeDelay, "Delay", "delay", "filter", names("in"), names("delayed"),
		[]paramDef{pr("frames", 5, 1, graph.DelayCapacity)}, evalDelay},

	// Logic
	{graph.TypeCompare, "Compare", "compare", "logic", names("a", "b"), names("result", "diff"),
		[]paramDef{pr("mode", 0, 0, 4)}, evalCompare},
	{graph.TypeSelect, "Select", "select", "logic", names("a", "b", "cond"), names("out"),
		[]paramDef{p("threshold", 0.5)}, evalSelect},
	{graph.TypeGate, "Gate", "gate", "logic", names("signal", "gate"), names("out"),
		[]paramDef{p("threshold", 0.5)}, evalGate},

	// Vector and color
	{graph.TypeSplit, "Split", "split", "vector", names("in"), names("out0", "out1", "out2", "out3"), nil, evalSplit},
	{graph.TypeCombine, "Combine", "combine", "vector", names("in0", "in1", "in2", "in3"),
		names("out0", "out1", "out2", "out3"), nil, evalPassThrough},
	{graph.TypeColorize, "Colorize", "colorize", "color", names("value"), names("r", "g", "b"),
		[]paramDef{pr("base_r", 1, 0, 1), pr("base_g", 1, 0, 1), pr("base_b", 1, 0, 1)}, evalColorize},
	{graph.TypeHSV, "HSV", "hsv", "color", names("H", "S", "V"), rgba, nil, evalHSV},
	{graph.TypeGradient, "Gradient", "gradient", "color", names("t"), rgba,
		[]paramDef{
			pr("r1", 0, 0, 1), pr("g1", 0, 0, 1), pr("b1", 0, 0, 1),
			pr("r2", 1, 0, 1), pr("g2", 1, 0, 1), pr("b2", 1, 0, 1),
		}, evalGradient},

	// Transform
	{graph.TypeTransform2D, "Transform2D", "transform2d", "transform", names("x", "y", "scale"),
		names("x", "y", "scale"),
		[]paramDef{p("offset_x", 0), p("offset_y", 0), p("rotation", 0), p("scale_mul", 1)}, evalTransform2D},

	// Sinks
	{graph.TypeRender2D, "Render2D", "render2d", "sink", rgba, names("x", "y", "w", "h"),
		[]paramDef{pr("X", 0.3, 0, 1), pr("Y", 0.3, 0, 1), pr("W", 0.4, 0, 1), pr("H", 0.4, 0, 2)}, evalRender2D},
	{graph.TypeRenderCircle, "Circle", "render_circle", "sink", rgba, names("x", "y", "r"),
		[]paramDef{pr("X", 0.5, 0, 1), pr("Y", 0.5, 0, 1), pr("radius", 0.1, 0.01, 0.5)}, evalRenderCircle},
	{graph.TypeRenderLine, "Line", "render_line", "sink", rgba, names("x1", "y1", "x2", "y2"),
		[]paramDef{pr("X1", 0.2, 0, 1), pr("Y1", 0.2, 0, 1), pr("X2", 0.8, 0, 1), pr("Y2", 0.8, 0, 1)}, evalRenderLine},

	// Utility
	{graph.TypeDebug, "Debug", "debug", "utility", names("in0", "in1", "in2", "in3"),
		names("out0", "out1", "out2", "out3"), nil, evalPassThrough},
}

func newMeta(t graph.NodeType, name, ident string) Meta {
	m := Meta{Type: t, Name: name, Ident: ident}
	for i := range m.Min {
		m.Min[i] = DefaultParamMin
		m.Max[i] = DefaultParamMax
	}
	return m
}

func (d typeDef) meta() Meta {
	m := newMeta(d.typ, d.name, d.ident)
	m.Category = d.category
	m.InputNames = d.inputs
	m.OutputNames = d.outputs
	for i, pd := range d.params {
		m.ParamNames = append(m.ParamNames, pd.name)
		m.Defaults[i] = pd.def
		m.Min[i] = pd.min
		m.Max[i] = pd.max
	}
	return m
}
