package compiler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
)

// Document is the human-authored form of a graph, loaded from YAML or CUE.
//
//	name: pulse
//	nodes:
//	  - id: t
//	    type: time
//	  - id: out
//	    type: render2d
//	    params: {X: 0.1, W: 0.8}
//	    inputs: {R: t.time}
//
// Nodes are allocated in document order. Input keys are port names or
// indices of the consuming node; values are "label" (output 0) or
// "label.port" where port is an output name or index of the producer.
type Document struct {
	Name  string    `yaml:"name" json:"name" validate:"required"`
	Nodes []NodeDoc `yaml:"nodes" json:"nodes" validate:"required,min=1,max=256,dive"`
}

// NodeDoc describes one node.
type NodeDoc struct {
	ID     string             `yaml:"id" json:"id" validate:"required,node_label"`
	Type   string             `yaml:"type" json:"type" validate:"required"`
	Params map[string]float32 `yaml:"params,omitempty" json:"params,omitempty" validate:"max=8"`
	Inputs map[string]string  `yaml:"inputs,omitempty" json:"inputs,omitempty" validate:"max=4"`
	UI     *UIDoc             `yaml:"ui,omitempty" json:"ui,omitempty"`
}

// UIDoc carries editor presentation state.
type UIDoc struct {
	X         float32 `yaml:"x" json:"x"`
	Y         float32 `yaml:"y" json:"y"`
	Selected  bool    `yaml:"selected,omitempty" json:"selected,omitempty"`
	Collapsed bool    `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
}

// Compiled is the result of compiling a Document.
type Compiled struct {
	Name   string
	Graph  *graph.Graph
	UI     *graph.UiMetaBank
	Labels map[string]graph.NodeID
}

// CompileError is a document error with the offending field.
type CompileError struct {
	Field   string
	Code    string
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

var (
	documentValidator = newDocumentValidator()
	labelPattern      = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)
)

func newDocumentValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("node_label", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) <= 64 && labelPattern.MatchString(s)
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateDocument checks document structure without touching a graph.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return &CompileError{Field: "document", Code: ErrDocumentInvalid, Message: "document is empty"}
	}
	err := documentValidator.Struct(doc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &CompileError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Document."),
			Code:    ErrDocumentInvalid,
			Message: fieldMessage(fe),
			Err:     err,
		}
	}
	return &CompileError{Field: "document", Code: ErrDocumentInvalid, Message: err.Error(), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum length is %s", fe.Param())
	case "node_label":
		return "label must be letters, digits, '_' or '-' (at most 64)"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

// CompileDocument builds a graph from doc using reg for type names,
// defaults, and port and param names.
func CompileDocument(doc *Document, reg *nodes.Registry) (*Compiled, error) {
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	out := &Compiled{
		Name:   doc.Name,
		Graph:  graph.New(),
		UI:     &graph.UiMetaBank{},
		Labels: make(map[string]graph.NodeID, len(doc.Nodes)),
	}

	// Pass 1: allocate every node so inputs may reference later nodes.
	for i, nd := range doc.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		label := normLabel(nd.ID)
		if _, dup := out.Labels[label]; dup {
			return nil, &CompileError{Field: field + ".id", Code: ErrDuplicateLabel,
				Message: fmt.Sprintf("duplicate node id %q", nd.ID)}
		}

		typ, ok := reg.TypeByName(nd.Type)
		if !ok {
			return nil, &CompileError{Field: field + ".type", Code: ErrUnknownNodeType,
				Message: fmt.Sprintf("unknown node type %q", nd.Type)}
		}

		id, err := out.Graph.Alloc(typ, reg)
		if err != nil {
			return nil, &CompileError{Field: field, Code: ErrGraphRejected, Message: err.Error(), Err: err}
		}
		out.Labels[label] = id

		for _, name := range sortedKeys(nd.Params) {
			idx, ok := resolveIndex(name, reg.Meta(typ).ParamNames, graph.MaxParams)
			if !ok {
				return nil, &CompileError{Field: field + ".params." + name, Code: ErrUnknownParam,
					Message: fmt.Sprintf("%s has no param %q", reg.Name(typ), name)}
			}
			if err := out.Graph.SetParam(id, idx, nd.Params[name]); err != nil {
				return nil, &CompileError{Field: field + ".params." + name, Code: ErrGraphRejected, Message: err.Error(), Err: err}
			}
		}

		if nd.UI != nil {
			out.UI.Meta[id] = graph.UiMeta{
				X:         nd.UI.X,
				Y:         nd.UI.Y,
				Selected:  nd.UI.Selected,
				Collapsed: nd.UI.Collapsed,
			}
		}
	}

	// Pass 2: wire inputs.
	for i, nd := range doc.Nodes {
		dst := out.Labels[normLabel(nd.ID)]
		dstType := out.Graph.Nodes[dst].Type

		for _, key := range sortedKeys(nd.Inputs) {
			field := fmt.Sprintf("nodes[%d].inputs.%s", i, key)

			dstPort, ok := resolveIndex(key, reg.Meta(dstType).InputNames, graph.MaxInputs)
			if !ok {
				return nil, &CompileError{Field: field, Code: ErrBadConnectionRef,
					Message: fmt.Sprintf("%s has no input %q", reg.Name(dstType), key)}
			}

			src, srcPort, err := resolveSource(nd.Inputs[key], out, reg)
			if err != nil {
				return nil, &CompileError{Field: field, Code: ErrBadConnectionRef, Message: err.Error(), Err: err}
			}

			if err := out.Graph.Connect(src, uint8(srcPort), dst, uint8(dstPort)); err != nil {
				return nil, &CompileError{Field: field, Code: ErrGraphRejected, Message: err.Error(), Err: err}
			}
		}
	}

	return out, nil
}

// resolveSource parses "label" or "label.port".
func resolveSource(ref string, c *Compiled, reg *nodes.Registry) (graph.NodeID, int, error) {
	label, port, hasPort := strings.Cut(strings.TrimSpace(ref), ".")
	src, ok := c.Labels[normLabel(label)]
	if !ok {
		return graph.InvalidNode, 0, fmt.Errorf("unknown source node %q", label)
	}
	if !hasPort {
		return src, 0, nil
	}

	srcType := c.Graph.Nodes[src].Type
	idx, ok := resolveIndex(port, reg.Meta(srcType).OutputNames, graph.MaxOutputs)
	if !ok {
		return graph.InvalidNode, 0, fmt.Errorf("%s has no output %q", reg.Name(srcType), port)
	}
	return src, idx, nil
}

// resolveIndex accepts a declared name or a numeric index below limit.
func resolveIndex(key string, declared []string, limit int) (int, bool) {
	if n, err := strconv.Atoi(key); err == nil {
		return n, n >= 0 && n < limit
	}
	for i, name := range declared {
		if name == key {
			return i, true
		}
	}
	for i, name := range declared {
		if strings.EqualFold(name, key) {
			return i, true
		}
	}
	return 0, false
}

func normLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DocumentFromGraph renders g back into document form. Nodes are labelled
// "<ident><slot>"; params equal to the type default are omitted.
func DocumentFromGraph(name string, g *graph.Graph, ui *graph.UiMetaBank, reg *nodes.Registry) *Document {
	doc := &Document{Name: name}
	label := func(id graph.NodeID) string {
		return fmt.Sprintf("%s%d", reg.Meta(g.Nodes[id].Type).Ident, id)
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type == graph.TypeNone {
			continue
		}
		id := graph.NodeID(i)
		meta := reg.Meta(n.Type)
		nd := NodeDoc{ID: label(id), Type: meta.Ident}

		for p := 0; p < meta.Params(); p++ {
			if n.Params[p] != meta.Defaults[p] {
				if nd.Params == nil {
					nd.Params = make(map[string]float32)
				}
				nd.Params[meta.ParamNames[p]] = n.Params[p]
			}
		}

		for port, in := range n.Inputs {
			if !g.Active(in.Src) {
				continue
			}
			if nd.Inputs == nil {
				nd.Inputs = make(map[string]string)
			}
			key := strconv.Itoa(port)
			if port < meta.Inputs() {
				key = meta.InputNames[port]
			}
			srcMeta := reg.Meta(g.Nodes[in.Src].Type)
			portName := strconv.Itoa(int(in.Port))
			if int(in.Port) < srcMeta.Outputs() {
				portName = srcMeta.OutputNames[in.Port]
			}
			nd.Inputs[key] = label(in.Src) + "." + portName
		}

		if ui != nil && ui.Meta[id] != (graph.UiMeta{}) {
			m := ui.Meta[id]
			nd.UI = &UIDoc{X: m.X, Y: m.Y, Selected: m.Selected, Collapsed: m.Collapsed}
		}

		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc
}
