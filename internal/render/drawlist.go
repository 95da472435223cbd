package render

import (
	"github.com/roach88/livegraph/internal/engine"
	"github.com/roach88/livegraph/internal/graph"
)

// MinExtent is the smallest width, height or radius that is drawn.
const MinExtent = 0.001

// Shape identifies a draw command's primitive.
type Shape uint8

const (
	ShapeRect Shape = iota + 1
	ShapeCircle
	ShapeLine
)

func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	default:
		return "unknown"
	}
}

// Color is a straight-alpha color with channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Command is one primitive. Geom holds x, y, w, h for rects; x, y, radius
// for circles; x1, y1, x2, y2 for lines.
type Command struct {
	Shape Shape
	Node  graph.NodeID
	Geom  [4]float32
	Color Color
}

// DrawList is a fixed-capacity list of commands in ascending slot order.
type DrawList struct {
	Commands [graph.MaxNodes]Command
	Count    int
}

// Reset empties the list.
func (l *DrawList) Reset() {
	l.Count = 0
}

// Items returns the filled commands. The slice aliases the list.
func (l *DrawList) Items() []Command {
	return l.Commands[:l.Count]
}

func (l *DrawList) push(c Command) {
	if l.Count < len(l.Commands) {
		l.Commands[l.Count] = c
		l.Count++
	}
}

// Collect rebuilds list from every active sink of g, in ascending slot order.
// Geometry is read from the sink's outputs in bank. Rects narrower or shorter
// than MinExtent and circles with a smaller radius are skipped.
func Collect(g *graph.Graph, bank *graph.OutputBank, list *DrawList) {
	if list == nil {
		return
	}
	list.Reset()
	if g == nil || bank == nil {
		return
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if !n.Type.IsSink() {
			continue
		}
		id := graph.NodeID(i)
		var geom [4]float32
		for p := range geom {
			geom[p] = engine.Output(bank, id, p)
		}

		var shape Shape
		switch n.Type {
		case graph.TypeRender2D:
			if geom[2] < MinExtent || geom[3] < MinExtent {
				continue
			}
			shape = ShapeRect
		case graph.TypeRenderCircle:
			if geom[2] < MinExtent {
				continue
			}
			geom[3] = 0
			shape = ShapeCircle
		case graph.TypeRenderLine:
			shape = ShapeLine
		}

		list.push(Command{Shape: shape, Node: id, Geom: geom, Color: SinkColor(bank, n)})
	}
}

// SinkColor reads the RGBA inputs of sink n from bank, clamped to [0, 1].
// Disconnected channels read 1.
func SinkColor(bank *graph.OutputBank, n *graph.Node) Color {
	var ch [4]float32
	for i, c := range n.Inputs {
		v := float32(1)
		if c.IsConnected() {
			v = engine.Output(bank, c.Src, int(c.Port))
		}
		ch[i] = clamp01(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
