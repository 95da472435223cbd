package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/engine"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/graphio"
	"github.com/roach88/livegraph/internal/nodes"
)

// HeaderInfo is the binary file header.
type HeaderInfo struct {
	Version      uint16 `json:"version"`
	NodeCount    uint16 `json:"node_count"`
	GraphVersion uint16 `json:"graph_version"`
	HasUI        bool   `json:"has_ui"`
	Checksum     string `json:"checksum"`
}

// NamedValue is a param name with its value.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float32 `json:"value"`
}

// InputLink is one connected input port.
type InputLink struct {
	Port   string `json:"port"`
	Source string `json:"source"`
	Output string `json:"output"`
}

// NodeInfo describes one active node.
type NodeInfo struct {
	ID     graph.NodeID  `json:"id"`
	Label  string        `json:"label"`
	Type   string        `json:"type"`
	Params []NamedValue  `json:"params,omitempty"`
	Inputs []InputLink   `json:"inputs,omitempty"`
	UI     *graph.UiMeta `json:"ui,omitempty"`
}

// InspectResult is the full description of a graph.
type InspectResult struct {
	Name      string      `json:"name"`
	Source    string      `json:"source"` // "binary" or "document"
	Header    *HeaderInfo `json:"header,omitempty"`
	Repairs   int         `json:"repairs"`
	Nodes     []NodeInfo  `json:"nodes"`
	Plan      []string    `json:"plan,omitempty"`
	PlanError string      `json:"plan_error,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <graph>",
		Short: "Describe a graph file",
		Long: `Print the header, sanitize repairs, nodes and evaluation plan of a
binary graph file. Documents are described the same way, without a header.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := nodes.New()

	lg, err := LoadGraph(path, reg)
	if err != nil {
		return loadFailure(formatter, err)
	}

	result := InspectResult{Name: lg.Name, Source: "document", Repairs: lg.Repairs, Nodes: []NodeInfo{}}
	if lg.Binary() {
		result.Source = "binary"
		h, err := readFileHeader(path)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeLoadFailed, graphio.ResultString(err), err)
		}
		result.Header = h
	}

	for i := range lg.Graph.Nodes {
		id := graph.NodeID(i)
		if lg.Graph.Active(id) {
			result.Nodes = append(result.Nodes, describeNode(lg, reg, id))
		}
	}

	plan, err := compiler.BuildEvalPlan(lg.Graph)
	if err != nil {
		result.PlanError = engine.ResultString(err)
	} else {
		result.Plan = planLabels(lg, plan)
	}

	return formatter.Result(result, func(w io.Writer) { writeInspect(w, result) })
}

func readFileHeader(path string) (*HeaderInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	h, err := graphio.ReadHeader(data)
	if err != nil {
		return nil, err
	}
	return &HeaderInfo{
		Version:      h.Version,
		NodeCount:    h.NodeCount,
		GraphVersion: h.GraphVersion,
		HasUI:        h.HasUI(),
		Checksum:     fmt.Sprintf("0x%08x", h.Checksum),
	}, nil
}

func describeNode(lg *LoadedGraph, reg *nodes.Registry, id graph.NodeID) NodeInfo {
	n := &lg.Graph.Nodes[id]
	meta := reg.Meta(n.Type)
	info := NodeInfo{ID: id, Label: lg.Label(id), Type: meta.Ident}

	for p, name := range meta.ParamNames {
		info.Params = append(info.Params, NamedValue{Name: name, Value: n.Params[p]})
	}

	for port, in := range n.Inputs {
		if !in.IsConnected() {
			continue
		}
		link := InputLink{Port: portName(meta.InputNames, port), Source: lg.Label(in.Src), Output: strconv.Itoa(int(in.Port))}
		if lg.Graph.Active(in.Src) {
			link.Output = portName(reg.Meta(lg.Graph.Nodes[in.Src].Type).OutputNames, int(in.Port))
		}
		info.Inputs = append(info.Inputs, link)
	}

	if lg.UI != nil && lg.UI.Meta[id] != (graph.UiMeta{}) {
		m := lg.UI.Meta[id]
		info.UI = &m
	}
	return info
}

func portName(declared []string, idx int) string {
	if idx < len(declared) {
		return declared[idx]
	}
	return strconv.Itoa(idx)
}

func writeInspect(w io.Writer, r InspectResult) {
	fmt.Fprintf(w, "name: %s\n", r.Name)
	fmt.Fprintf(w, "source: %s\n", r.Source)
	if r.Header != nil {
		h := r.Header
		fmt.Fprintf(w, "header: version=%d nodes=%d graph_version=%d ui=%t checksum=%s\n",
			h.Version, h.NodeCount, h.GraphVersion, h.HasUI, h.Checksum)
		fmt.Fprintf(w, "repairs: %d\n", r.Repairs)
	}

	fmt.Fprintf(w, "nodes: %d\n", len(r.Nodes))
	for _, n := range r.Nodes {
		fmt.Fprintf(w, "  [%d] %s %s\n", n.ID, n.Label, n.Type)
		if len(n.Params) > 0 {
			parts := make([]string, len(n.Params))
			for i, p := range n.Params {
				parts[i] = fmt.Sprintf("%s=%g", p.Name, p.Value)
			}
			fmt.Fprintf(w, "      params: %s\n", strings.Join(parts, " "))
		}
		if len(n.Inputs) > 0 {
			parts := make([]string, len(n.Inputs))
			for i, in := range n.Inputs {
				parts[i] = fmt.Sprintf("%s=%s.%s", in.Port, in.Source, in.Output)
			}
			fmt.Fprintf(w, "      inputs: %s\n", strings.Join(parts, " "))
		}
		if n.UI != nil {
			fmt.Fprintf(w, "      ui: x=%g y=%g selected=%t collapsed=%t\n", n.UI.X, n.UI.Y, n.UI.Selected, n.UI.Collapsed)
		}
	}

	if r.PlanError != "" {
		fmt.Fprintf(w, "plan: %s\n", r.PlanError)
		return
	}
	fmt.Fprintf(w, "plan: %s\n", strings.Join(r.Plan, " → "))
}
