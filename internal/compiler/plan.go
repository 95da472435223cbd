package compiler

import (
	"github.com/roach88/livegraph/internal/graph"
)

// EvalPlan is a validated evaluation order plus the primary sink.
//
// Order[:Count] is a permutation of the active node ids in which every
// producer precedes its consumers. A plan is only valid for the exact
// graph it was built from; any store mutation invalidates it.
type EvalPlan struct {
	Count uint16
	Sink  graph.NodeID
	Order [graph.MaxNodes]graph.NodeID
}

// Reset empties the plan and invalidates the sink.
func (p *EvalPlan) Reset() {
	p.Count = 0
	p.Sink = graph.InvalidNode
}

// Nodes returns the ordered ids. The slice aliases the plan.
func (p *EvalPlan) Nodes() []graph.NodeID {
	n := int(p.Count)
	if n > graph.MaxNodes {
		n = graph.MaxNodes
	}
	return p.Order[:n]
}

// IndexOf returns the position of id in the order, or -1.
func (p *EvalPlan) IndexOf(id graph.NodeID) int {
	for i, n := range p.Nodes() {
		if n == id {
			return i
		}
	}
	return -1
}

// BuildEvalPlan validates g and returns its topological evaluation order.
// See BuildEvalPlanInto.
func BuildEvalPlan(g *graph.Graph) (*EvalPlan, error) {
	plan := &EvalPlan{}
	if err := BuildEvalPlanInto(g, plan); err != nil {
		return plan, err
	}
	return plan, nil
}

// BuildEvalPlanInto validates g and writes its evaluation order into plan
// without allocating.
//
// The steps, in order:
//  1. Find the primary sink: the lowest-index active Render2D node.
//     None found fails NO_SINK.
//  2. Check every connection of every active node. A connection must be
//     disconnected or name an active source and an output port < 4.
//     Any violation fails VALIDATION_FAIL.
//  3. Count in-degrees, one per input edge from an active source.
//  4. Kahn's algorithm with a FIFO queue seeded by ascending slot index.
//     After each dequeue, unvisited nodes are scanned in ascending index
//     and enqueued the moment their in-degree reaches zero, so ties are
//     always broken by slot index.
//  5. If fewer nodes were ordered than are active, the remainder holds a
//     cycle: fails CYCLE_DETECTED with Count = 0 and Sink invalid.
//
// On any error the plan is left empty; a partial order is never returned.
func BuildEvalPlanInto(g *graph.Graph, plan *EvalPlan) error {
	if plan == nil {
		return graph.NewError("plan", graph.ErrCodeValidationFail)
	}
	plan.Reset()
	if g == nil {
		return graph.NewError("plan", graph.ErrCodeValidationFail)
	}

	sink := graph.InvalidNode
	active := 0
	for i := range g.Nodes {
		t := g.Nodes[i].Type
		if t == graph.TypeNone {
			continue
		}
		active++
		if sink == graph.InvalidNode && t == graph.PrimarySink {
			sink = graph.NodeID(i)
		}
	}
	if sink == graph.InvalidNode {
		return graph.NewError("plan", graph.ErrCodeNoSink)
	}

	if id, port, ok := checkConnections(g); !ok {
		return &graph.Error{Code: graph.ErrCodeValidationFail, Op: "plan", Node: id, Port: port}
	}

	var (
		inDegree [graph.MaxNodes]uint16
		visited  [graph.MaxNodes]bool
		queue    [graph.MaxNodes]graph.NodeID
		head     int
		tail     int
	)

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type == graph.TypeNone {
			continue
		}
		for _, in := range n.Inputs {
			if g.Active(in.Src) {
				inDegree[i]++
			}
		}
	}

	for i := range g.Nodes {
		if g.Nodes[i].Type != graph.TypeNone && inDegree[i] == 0 {
			queue[tail] = graph.NodeID(i)
			tail++
			visited[i] = true
		}
	}

	count := 0
	for head < tail {
		cur := queue[head]
		head++
		plan.Order[count] = cur
		count++

		for i := range g.Nodes {
			n := &g.Nodes[i]
			if n.Type == graph.TypeNone || visited[i] {
				continue
			}
			for _, in := range n.Inputs {
				if in.Src == cur && inDegree[i] > 0 {
					inDegree[i]--
				}
			}
			if inDegree[i] == 0 {
				queue[tail] = graph.NodeID(i)
				tail++
				visited[i] = true
			}
		}
	}

	if count != active {
		plan.Reset()
		return graph.NewError("plan", graph.ErrCodeCycleDetected)
	}

	plan.Count = uint16(count)
	plan.Sink = sink
	return nil
}

// checkConnections returns the first bad connection, if any.
func checkConnections(g *graph.Graph) (graph.NodeID, int, bool) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type == graph.TypeNone {
			continue
		}
		for j, in := range n.Inputs {
			if !in.IsConnected() {
				continue
			}
			if !g.Active(in.Src) || int(in.Port) >= graph.MaxOutputs {
				return graph.NodeID(i), j, false
			}
		}
	}
	return graph.InvalidNode, -1, true
}
