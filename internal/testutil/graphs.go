package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
)

// PulseGraph holds the ids of the reference Time → Sin → Colorize → Render2D
// graph.
type PulseGraph struct {
	Graph    *graph.Graph
	Time     graph.NodeID
	Sin      graph.NodeID
	Colorize graph.NodeID
	Render   graph.NodeID
}

// BuildPulse builds the reference graph: Time feeds Sin, Sin feeds Colorize,
// and Colorize's r/g/b feed the R/G/B inputs of a Render2D sink. All params
// keep their defaults.
func BuildPulse(t testing.TB, reg *nodes.Registry) PulseGraph {
	t.Helper()

	g := graph.New()
	p := PulseGraph{Graph: g}
	p.Time = MustAlloc(t, g, reg, graph.TypeTime)
	p.Sin = MustAlloc(t, g, reg, graph.TypeSin)
	p.Colorize = MustAlloc(t, g, reg, graph.TypeColorize)
	p.Render = MustAlloc(t, g, reg, graph.TypeRender2D)

	MustConnect(t, g, p.Time, 0, p.Sin, 0)
	MustConnect(t, g, p.Sin, 0, p.Colorize, 0)
	for port := uint8(0); port < 3; port++ {
		MustConnect(t, g, p.Colorize, port, p.Render, port)
	}
	return p
}

// MustAlloc allocates a node or fails the test.
func MustAlloc(t testing.TB, g *graph.Graph, reg *nodes.Registry, typ graph.NodeType) graph.NodeID {
	t.Helper()
	id, err := g.Alloc(typ, reg)
	require.NoError(t, err, "alloc %v", typ)
	return id
}

// MustConnect connects src.srcPort to dst.dstPort or fails the test.
func MustConnect(t testing.TB, g *graph.Graph, src graph.NodeID, srcPort uint8, dst graph.NodeID, dstPort uint8) {
	t.Helper()
	require.NoError(t, g.Connect(src, srcPort, dst, dstPort),
		"connect %d.%d -> %d.%d", src, srcPort, dst, dstPort)
}

// BuildChain builds n Add nodes wired in a line, feeding a Render2D sink.
// The chain is allocated in reverse so slot order disagrees with topological
// order.
func BuildChain(t testing.TB, reg *nodes.Registry, n int) (*graph.Graph, []graph.NodeID) {
	t.Helper()

	g := graph.New()
	sink := MustAlloc(t, g, reg, graph.TypeRender2D)
	ids := make([]graph.NodeID, n)
	for i := range ids {
		ids[i] = MustAlloc(t, g, reg, graph.TypeAdd)
	}
	// ids[n-1] -> ids[n-2] -> ... -> ids[0] -> sink
	for i := n - 1; i > 0; i-- {
		MustConnect(t, g, ids[i], 0, ids[i-1], 0)
	}
	if n > 0 {
		MustConnect(t, g, ids[0], 0, sink, 0)
	}
	return g, append(ids, sink)
}
