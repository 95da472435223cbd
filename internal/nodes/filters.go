package nodes

import (
	"math"

	"github.com/roach88/livegraph/internal/graph"
)

// Filters. These are the only behaviors that carry state between frames;
// all of it lives in the node's own State.

func evalLerp(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	t := clamp32(in[2], 0, 1)
	return graph.Ports{in[0] + (in[1]-in[0])*t}
}

func evalSmooth(n *graph.Node, in graph.Ports, rt *graph.Runtime) graph.Ports {
	speed := n.Params[0]
	if speed < 0.1 {
		speed = 0.1
	}
	s := &n.State
	s.A += (in[0] - s.A) * blend(speed, rt.DT)
	return graph.Ports{s.A}
}

func evalStep(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	v, threshold, edge := in[0], n.Params[0], n.Params[1]

	if edge < 0.001 {
		if v >= threshold {
			return graph.Ports{1}
		}
		return graph.Ports{0}
	}

	t := clamp32((v-threshold+edge)/(2*edge), 0, 1)
	return graph.Ports{t * t * (3 - 2*t)}
}

func evalPulse(n *graph.Node, in graph.Ports, rt *graph.Runtime) graph.Ports {
	s := &n.State // A = previous input, B = timer
	v, threshold, duration := in[0], n.Params[0], n.Params[1]
	if duration < 0.01 {
		duration = 0.1
	}

	var out graph.Ports
	if v >= threshold && s.A < threshold {
		out[1] = 1
		s.B = duration
	}
	s.A = v

	if s.B > 0 {
		out[0] = 1
		s.B -= rt.DT
	}
	return out
}

func evalHold(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	s := &n.State // A = previous trigger, B = held value
	v, trigger, threshold := in[0], in[1], n.Params[0]

	if trigger >= threshold && s.A < threshold {
		s.B = v
	}
	s.A = trigger
	return graph.Ports{s.B}
}

func evalDelay(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	const size = graph.DelayCapacity
	s := &n.State

	frames := int(n.Params[0])
	if frames < 1 {
		frames = 1
	}
	if frames > size {
		frames = size
	}

	w := int(s.Head) % size
	r := (w - frames + size) % size

	out := s.Ring[r]
	s.Ring[w] = in[0]
	s.Head = uint8((w + 1) % size)
	return graph.Ports{out}
}

// Logic

func evalCompare(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	a, b := in[0], in[1]

	var ok bool
	switch int(n.Params[0]) {
	case 0:
		ok = a < b
	case 1:
		ok = a <= b
	case 2:
		ok = abs32(a-b) < epsilon
	case 3:
		ok = a >= b
	case 4:
		ok = a > b
	}
	return graph.Ports{boolf(ok), a - b}
}

func evalSelect(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	if in[2] >= n.Params[0] {
		return graph.Ports{in[1]}
	}
	return graph.Ports{in[0]}
}

func evalGate(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	if in[1] >= n.Params[0] {
		return graph.Ports{in[0]}
	}
	return graph.Ports{}
}

// Vector and color

func evalSplit(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{in[0], in[0], in[0], in[0]}
}

func evalColorize(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	v := clamp32(in[0], 0, 1)
	return graph.Ports{n.Params[0] * v, n.Params[1] * v, n.Params[2] * v}
}

func evalHSV(_ *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	h := float32(math.Mod(float64(in[0]), 1))
	if h < 0 {
		h++
	}
	s := clamp32(in[1], 0, 1)
	v := clamp32(in[2], 0, 1)

	c := v * s
	hi := int(h * 6)
	x := c * (1 - abs32(float32(math.Mod(float64(h*6), 2))-1))
	m := v - c

	var r, g, b float32
	switch hi % 6 {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	case 5:
		r, g, b = c, 0, x
	}
	return graph.Ports{r + m, g + m, b + m, 1}
}

func evalGradient(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	t := clamp32(in[0], 0, 1)
	p := &n.Params
	return graph.Ports{
		p[0] + (p[3]-p[0])*t,
		p[1] + (p[4]-p[1])*t,
		p[2] + (p[5]-p[2])*t,
		1,
	}
}

// Transform

func evalTransform2D(n *graph.Node, in graph.Ports, _ *graph.Runtime) graph.Ports {
	x, y, scaleIn := in[0], in[1], in[2]
	if scaleIn == 0 {
		scaleIn = 1
	}
	ox, oy, rot, scaleMul := n.Params[0], n.Params[1], n.Params[2], n.Params[3]
	if scaleMul == 0 {
		scaleMul = 1
	}

	sin, cos := math.Sincos(float64(rot))
	c, s := float32(cos), float32(sin)
	return graph.Ports{
		x*c - y*s + ox,
		x*s + y*c + oy,
		scaleIn * scaleMul,
	}
}

// Sinks. Geometry comes from params; color inputs are deliberately not
// forwarded. The render pass reads them straight from the output bank.

func evalRender2D(n *graph.Node, _ graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{n.Params[0], n.Params[1], n.Params[2], n.Params[3]}
}

func evalRenderCircle(n *graph.Node, _ graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{n.Params[0], n.Params[1], n.Params[2]}
}

func evalRenderLine(n *graph.Node, _ graph.Ports, _ *graph.Runtime) graph.Ports {
	return graph.Ports{n.Params[0], n.Params[1], n.Params[2], n.Params[3]}
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
