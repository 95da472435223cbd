package graphio

import "github.com/roach88/livegraph/internal/graph"

// Sanitize repairs structurally invalid data in place and returns the
// number of repairs:
//
//   - a node with an out-of-range type becomes TypeNone
//   - a connection to an out-of-range or inactive node, or from an
//     out-of-range port, becomes disconnected
//   - state tagged for the wrong kind, or a delay head past the ring, is
//     reset for the node's type
//
// NodeCount is then recomputed. Types are fixed before connections are
// checked, so a second call always reports 0.
func Sanitize(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	repairs := 0

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type != graph.TypeNone && !n.Type.Valid() {
			n.Type = graph.TypeNone
			repairs++
		}
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type == graph.TypeNone {
			continue
		}

		for p := range n.Inputs {
			c := n.Inputs[p]
			if !c.IsConnected() {
				continue
			}
			if !g.Active(c.Src) || int(c.Port) >= graph.MaxOutputs {
				n.Inputs[p] = graph.Disconnected()
				repairs++
			}
		}

		want := graph.StateKindFor(n.Type)
		if n.State.Kind != want || (want == graph.StateDelay && int(n.State.Head) >= graph.DelayCapacity) {
			n.State = graph.ResetState(n.Type)
			repairs++
		}
	}

	g.NodeCount = g.CountActive()
	return repairs
}
