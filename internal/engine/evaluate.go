package engine

import (
	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
)

// Run evaluates one pass of g in plan order, writing each node's four
// outputs into bank.
//
// The order is clamped to plan.Count and inactive entries are skipped, so a
// stale plan can produce wrong values but never an out-of-range access.
// A nil runtime evaluates against a zero context.
func Run(g *graph.Graph, plan *compiler.EvalPlan, bank *graph.OutputBank, rt *graph.Runtime, reg *nodes.Registry) {
	if g == nil || plan == nil || bank == nil || reg == nil {
		return
	}
	if rt == nil {
		rt = &graph.Runtime{}
	}

	for _, id := range plan.Nodes() {
		if !g.Active(id) {
			continue
		}
		n := &g.Nodes[id]
		in := GatherInputs(g, bank, n)
		bank.Out[id] = reg.Lookup(n.Type)(n, in, rt)
	}
}

// GatherInputs reads the current values feeding n from bank. Disconnected
// inputs and inputs from inactive or out-of-range sources read 0.
func GatherInputs(g *graph.Graph, bank *graph.OutputBank, n *graph.Node) graph.Ports {
	var in graph.Ports
	for i, c := range n.Inputs {
		if !g.Active(c.Src) || int(c.Port) >= graph.MaxOutputs {
			continue
		}
		in[i] = bank.Out[c.Src][c.Port]
	}
	return in
}

// Output returns bank[id][port], or 0 for an invalid id or port.
func Output(bank *graph.OutputBank, id graph.NodeID, port int) float32 {
	if bank == nil || !id.Valid() || port < 0 || port >= graph.MaxOutputs {
		return 0
	}
	return bank.Out[id][port]
}

// SinkOutput returns an output of the plan's primary sink.
func SinkOutput(bank *graph.OutputBank, plan *compiler.EvalPlan, port int) float32 {
	if plan == nil {
		return 0
	}
	return Output(bank, plan.Sink, port)
}
