package nodes

import (
	"math"

	"github.com/roach88/livegraph/internal/graph"
)

// epsilon guards divisions and equality comparisons.
const epsilon = 0.0001

func evalNone(_ *graph.Node, _ graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{}
}

func evalPassThrough(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return in
}

// Sources

func evalConst(n *graph.Node, _ graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{n.Params[0]}
}

func evalTime(n *graph.Node, _ graph.Ports, rt *graph.Runtime) graph.Ports {
	scale := n.Params[0]
	if scale == 0 {
		scale = 1
	}
	return graph.Ports{rt.Time * scale, rt.DT * scale}
}

func evalPad(n *graph.Node, _ graph.Ports, rt *graph.Runtime) graph.Ports {
	if int(n.Params[0]) == 1 {
		return graph.Ports{rt.RX, rt.RY, rt.L2, rt.R2}
	}
	return graph.Ports{rt.LX, rt.LY, rt.RX, rt.RY}
}

func nextRand(seed *uint32) uint32 {
	*seed = (*seed*1103515245 + 12345) & 0x7fffffff
	return *seed
}

func evalNoise(n *graph.Node, _ graph.Ports, rt *graph.Runtime) graph.Ports {
	s := &n.State
	speed := n.Params[0]
	if speed < 0.1 {
		speed = 1
	}
	if s.Seed == 0 {
		s.Seed = uint32(rt.Time*1000) + 1
	}

	raw := float32(nextRand(&s.Seed)&0xFFFF) / 65535
	s.A += (raw - s.A) * blend(speed, rt.DT)

	return graph.Ports{raw, s.A, raw*2 - 1}
}

func evalLFO(n *graph.Node, _ graph.Ports, rt *graph.Runtime) graph.Ports {
	freq := n.Params[0]
	phase := n.Params[1]
	shape := int(n.Params[2])
	if freq < 0.001 {
		freq = 1
	}

	t := float32(math.Mod(float64(rt.Time*freq+phase), 1))
	if t < 0 {
		t++
	}

	var v float32
	switch shape {
	case 1: // triangle
		if t < 0.5 {
			v = t*4 - 1
		} else {
			v = 3 - t*4
		}
	case 2: // saw
		v = t*2 - 1
	case 3: // square
		if t < 0.5 {
			v = 1
		} else {
			v = -1
		}
	default:
		v = float32(math.Sin(float64(t) * 2 * math.Pi))
	}

	return graph.Ports{v, (v + 1) * 0.5, t}
}

// Math

func evalAdd(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{in[0] + in[1]}
}

func evalMul(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{in[0] * in[1]}
}

func evalSub(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{in[0] - in[1]}
}

func evalDiv(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	if abs32(in[1]) < epsilon {
		return graph.Ports{}
	}
	return graph.Ports{in[0] / in[1]}
}

func evalMod(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	if abs32(in[1]) < epsilon {
		return graph.Ports{}
	}
	return graph.Ports{float32(math.Mod(float64(in[0]), float64(in[1])))}
}

func evalAbs(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{abs32(in[0])}
}

func evalNeg(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{-in[0]}
}

func evalMin(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{min(in[0], in[1])}
}

func evalMax(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{max(in[0], in[1])}
}

func evalClamp(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	v := in[0]
	if v < n.Params[0] {
		v = n.Params[0]
	}
	if v > n.Params[1] {
		v = n.Params[1]
	}
	return graph.Ports{v}
}

func evalMap(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	inMin, inMax := n.Params[0], n.Params[1]
	outMin, outMax := n.Params[2], n.Params[3]

	var t float32
	if abs32(inMax-inMin) >= epsilon {
		t = (in[0] - inMin) / (inMax - inMin)
	}
	return graph.Ports{outMin + t*(outMax-outMin), t}
}

// Trig

func oscParams(n *graph.Node) (freq, amp, offset float32) {
	freq, amp, offset = n.Params[0], n.Params[1], n.Params[2]
	if freq == 0 {
		freq = 1
	}
	if amp == 0 {
		amp = 1
	}
	return freq, amp, offset
}

func evalSin(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	freq, amp, offset := oscParams(n)
	return graph.Ports{float32(math.Sin(float64(in[0]*freq)))*amp + offset}
}

func evalCos(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	freq, amp, offset := oscParams(n)
	return graph.Ports{float32(math.Cos(float64(in[0]*freq)))*amp + offset}
}

func evalTan(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{clamp32(float32(math.Tan(float64(in[0]))), -1000, 1000)}
}

func evalAtan2(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	a := math.Atan2(float64(in[0]), float64(in[1]))
	return graph.Ports{
		float32(a),
		float32(a / math.Pi),
		float32((a + math.Pi) / (2 * math.Pi)),
	}
}

// helpers

// blend is the frame-rate independent smoothing factor 1 - e^(-speed*dt).
func blend(speed, dt float32) float32 {
	return 1 - float32(math.Exp(float64(-speed*dt)))
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
