package compiler

import (
	"fmt"

	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
)

// Document errors (E100-E199)
const (
	ErrDocumentInvalid  = "E100" // document failed structural validation
	ErrUnknownNodeType  = "E101" // type name not in the registry
	ErrDuplicateLabel   = "E102" // two nodes share a label
	ErrUnknownParam     = "E103" // param name or index not valid for the type
	ErrBadConnectionRef = "E104" // input or source reference does not resolve
	ErrGraphRejected    = "E105" // graph store refused the operation
	ErrPlanFailed       = "E106" // scheduling failed (cycle, no sink, bad connection)
)

// Lint warnings (W200-W299). Warnings never block publishing.
const (
	WarnParamOutOfRange  = "W201" // param outside the type's declared bounds
	WarnUnusedInputPort  = "W202" // connection into a port the type ignores
	WarnUnusedOutputPort = "W203" // connection from a port the type never writes
	WarnSinkNoColor      = "W204" // sink with no color inputs draws white
)

// ValidationError represents a validation error or lint warning.
type ValidationError struct {
	Field   string       `json:"field"`
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Node    graph.NodeID `json:"node"`
	Line    int          `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the entry is a lint warning.
func (e ValidationError) IsWarning() bool {
	return len(e.Code) > 0 && e.Code[0] == 'W'
}

// Lint checks g against registry metadata and returns every finding.
// Findings are in ascending node order and do not fail fast.
//
// Lint is advisory: the scheduler accepts graphs with lint warnings.
func Lint(g *graph.Graph, reg *nodes.Registry) []ValidationError {
	var errs []ValidationError

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type == graph.TypeNone {
			continue
		}
		id := graph.NodeID(i)
		meta := reg.Meta(n.Type)
		field := fmt.Sprintf("node[%d]", id)

		for p := 0; p < meta.Params(); p++ {
			v := n.Params[p]
			if !meta.InBounds(p, v) {
				errs = append(errs, ValidationError{
					Field: fmt.Sprintf("%s.%s", field, meta.ParamNames[p]),
					Message: fmt.Sprintf("%s %s = %g outside [%g, %g]",
						meta.Name, meta.ParamNames[p], v, meta.Min[p], meta.Max[p]),
					Code: WarnParamOutOfRange,
					Node: id,
				})
			}
		}

		colorInputs := 0
		for port, in := range n.Inputs {
			if !in.IsConnected() {
				continue
			}
			colorInputs++
			if port >= meta.Inputs() {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.inputs[%d]", field, port),
					Message: fmt.Sprintf("%s reads only %d input(s); port %d is ignored", meta.Name, meta.Inputs(), port),
					Code:    WarnUnusedInputPort,
					Node:    id,
				})
			}
			if !g.Active(in.Src) {
				continue
			}
			srcMeta := reg.Meta(g.Nodes[in.Src].Type)
			if int(in.Port) >= srcMeta.Outputs() {
				errs = append(errs, ValidationError{
					Field: fmt.Sprintf("%s.inputs[%d]", field, port),
					Message: fmt.Sprintf("%s (node %d) writes only %d output(s); port %d always reads 0",
						srcMeta.Name, in.Src, srcMeta.Outputs(), in.Port),
					Code: WarnUnusedOutputPort,
					Node: id,
				})
			}
		}

		if n.Type.IsSink() && colorInputs == 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s has no color inputs and draws white", meta.Name),
				Code:    WarnSinkNoColor,
				Node:    id,
			})
		}
	}

	return errs
}
