package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/livegraph/internal/graph"
)

// Cycle describes one strongly connected group of nodes.
//
// The scheduler only reports that a cycle exists. FindCycles is the
// diagnostic pass that names the nodes involved so an editor can point at
// them; it never affects the evaluation plan.
type Cycle struct {
	Nodes   []graph.NodeID `json:"nodes"`   // ascending slot order
	Path    []graph.NodeID `json:"path"`    // closed walk: first == last
	Message string         `json:"message"` // human-readable description
}

// FindCycles returns every cycle among the active nodes of g, ordered by
// lowest member id.
//
// The algorithm:
//  1. Build producer → consumer edges from active connections
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each component with more than one node, or with a self-loop
//
// An acyclic graph returns nil.
func FindCycles(g *graph.Graph) []Cycle {
	if g == nil {
		return nil
	}

	edges := buildEdges(g)
	sccs := tarjanSCC(g, edges)

	var cycles []Cycle
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], edges) {
			cycles = append(cycles, sccToCycle(scc, edges))
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Nodes[0] < cycles[j].Nodes[0]
	})
	return cycles
}

// edgeList maps a producer to the consumers reading from it, ascending.
type edgeList map[graph.NodeID][]graph.NodeID

// buildEdges constructs producer → consumer edges. Duplicate edges (one
// producer feeding several ports of the same consumer) collapse to one.
func buildEdges(g *graph.Graph) edgeList {
	edges := make(edgeList)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type == graph.TypeNone {
			continue
		}
		dst := graph.NodeID(i)
		for _, in := range n.Inputs {
			if !g.Active(in.Src) {
				continue
			}
			if !containsID(edges[in.Src], dst) {
				edges[in.Src] = append(edges[in.Src], dst)
			}
		}
	}
	return edges
}

func hasSelfLoop(id graph.NodeID, edges edgeList) bool {
	return containsID(edges[id], id)
}

func containsID(list []graph.NodeID, id graph.NodeID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Roots are visited in ascending slot order so results are deterministic.
func tarjanSCC(g *graph.Graph, edges edgeList) [][]graph.NodeID {
	var (
		index   = 0
		stack   []graph.NodeID
		indices = make(map[graph.NodeID]int)
		lowlink = make(map[graph.NodeID]int)
		onStack = make(map[graph.NodeID]bool)
		sccs    [][]graph.NodeID
	)

	var strongConnect func(graph.NodeID)
	strongConnect = func(v graph.NodeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []graph.NodeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
			sccs = append(sccs, scc)
		}
	}

	for i := range g.Nodes {
		id := graph.NodeID(i)
		if g.Nodes[i].Type == graph.TypeNone {
			continue
		}
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}

	return sccs
}

// sccToCycle converts a component to a Cycle with a closed walk through it.
func sccToCycle(scc []graph.NodeID, edges edgeList) Cycle {
	if len(scc) == 1 {
		id := scc[0]
		return Cycle{
			Nodes:   scc,
			Path:    []graph.NodeID{id, id},
			Message: fmt.Sprintf("node %d feeds itself", id),
		}
	}

	path := reconstructCyclePath(scc, edges)
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return Cycle{
		Nodes:   scc,
		Path:    path,
		Message: fmt.Sprintf("cycle detected: %s", strings.Join(parts, " → ")),
	}
}

// reconstructCyclePath walks from the lowest member along edges that stay
// inside the component until it returns to the start. A depth-first search
// is used so the walk always closes even when the component has branches.
func reconstructCyclePath(scc []graph.NodeID, edges edgeList) []graph.NodeID {
	inSCC := make(map[graph.NodeID]bool, len(scc))
	for _, id := range scc {
		inSCC[id] = true
	}

	start := scc[0]
	seen := map[graph.NodeID]bool{start: true}
	path := []graph.NodeID{start}

	var walk func(v graph.NodeID) bool
	walk = func(v graph.NodeID) bool {
		for _, w := range edges[v] {
			if !inSCC[w] {
				continue
			}
			if w == start {
				path = append(path, start)
				return true
			}
			if seen[w] {
				continue
			}
			seen[w] = true
			path = append(path, w)
			if walk(w) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}

	if !walk(start) {
		// Unreachable for a real component; fall back to the member list.
		return append(append([]graph.NodeID{}, scc...), start)
	}
	return path
}
