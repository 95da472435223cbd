package nodes

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/livegraph/internal/graph"
)

// Behavior evaluates one node for one frame.
//
// It receives the gathered input values and the frame context, and returns
// all four outputs (unused outputs zero). A behavior may read the node's
// params and read or write the node's own State; it must not allocate or
// touch any other node.
type Behavior func(n *graph.Node, in graph.Ports, rt *graph.Runtime) graph.Ports

// Registry maps node types to behaviors and metadata.
//
// A Registry is immutable once New returns and may be shared read-only by
// the store, scheduler and evaluator.
type Registry struct {
	behaviors [graph.TypeCount]Behavior
	meta      [graph.TypeCount]Meta
	unknown   Meta
	byName    map[string]graph.NodeType
}

// New builds the registry of every built-in node type.
func New() *Registry {
	r := &Registry{
		unknown: newMeta(graph.TypeCount, "Unknown", "unknown"),
		byName:  make(map[string]graph.NodeType, 2*len(definitions)),
	}

	for i := range r.behaviors {
		r.behaviors[i] = evalNone
		r.meta[i] = newMeta(graph.NodeType(i), "Unknown", "unknown")
	}
	r.meta[graph.TypeNone] = newMeta(graph.TypeNone, "None", "none")

	for _, d := range definitions {
		if !d.typ.Valid() {
			panic(fmt.Sprintf("nodes: definition for invalid type %d", d.typ))
		}
		r.behaviors[d.typ] = d.eval
		r.meta[d.typ] = d.meta()
		r.byName[normalizeName(d.name)] = d.typ
		r.byName[normalizeName(d.ident)] = d.typ
	}

	return r
}

// Lookup returns the behavior for t. Unregistered or out-of-range types
// get a behavior that zeroes every output.
func (r *Registry) Lookup(t graph.NodeType) Behavior {
	if int(t) >= len(r.behaviors) {
		return evalNone
	}
	return r.behaviors[t]
}

// Meta returns the metadata for t, or the "Unknown" entry for an
// out-of-range type.
func (r *Registry) Meta(t graph.NodeType) *Meta {
	if int(t) >= len(r.meta) {
		return &r.unknown
	}
	return &r.meta[t]
}

// Name returns the display name of t.
func (r *Registry) Name(t graph.NodeType) string {
	return r.Meta(t).Name
}

// Defaults implements graph.Defaults.
func (r *Registry) Defaults(t graph.NodeType) [graph.MaxParams]float32 {
	return r.Meta(t).Defaults
}

// TypeByName resolves a display name ("Render2D") or identifier
// ("render_circle") to a node type. Matching is case-insensitive and
// Unicode-normalized.
func (r *Registry) TypeByName(name string) (graph.NodeType, bool) {
	t, ok := r.byName[normalizeName(name)]
	return t, ok
}

// ParamIndex resolves a param name of t to its index.
func (r *Registry) ParamIndex(t graph.NodeType, name string) (int, bool) {
	return indexOf(r.Meta(t).ParamNames, name)
}

// InputIndex resolves an input port name of t to its index.
func (r *Registry) InputIndex(t graph.NodeType, name string) (int, bool) {
	return indexOf(r.Meta(t).InputNames, name)
}

// OutputIndex resolves an output port name of t to its index.
func (r *Registry) OutputIndex(t graph.NodeType, name string) (int, bool) {
	return indexOf(r.Meta(t).OutputNames, name)
}

// Types returns every registered node type in enum order.
func (r *Registry) Types() []graph.NodeType {
	types := make([]graph.NodeType, 0, len(definitions))
	for t := graph.TypeNone + 1; t < graph.TypeCount; t++ {
		types = append(types, t)
	}
	return types
}

func indexOf(list []string, name string) (int, bool) {
	want := normalizeName(name)
	// Exact match first: Render2D has both "X" and "x"-style names.
	for i, n := range list {
		if n == name {
			return i, true
		}
	}
	for i, n := range list {
		if normalizeName(n) == want {
			return i, true
		}
	}
	return 0, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}
