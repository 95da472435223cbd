package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/livegraph/internal/nodes"
)

// ParamInfo describes one node parameter.
type ParamInfo struct {
	Name    string  `json:"name"`
	Default float32 `json:"default"`
	Min     float32 `json:"min"`
	Max     float32 `json:"max"`
}

// NodeTypeInfo describes one registered node type.
type NodeTypeInfo struct {
	Name     string      `json:"name"`
	Ident    string      `json:"ident"`
	Category string      `json:"category"`
	Inputs   []string    `json:"inputs"`
	Outputs  []string    `json:"outputs"`
	Params   []ParamInfo `json:"params"`
}

// NewNodesCommand creates the nodes command.
func NewNodesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes [type]",
		Short: "List node types",
		Long: `List every node type with its ports and parameters.

With a type name, describe that type only, including parameter defaults and
ranges.

Examples:
  livegraph nodes
  livegraph nodes render2d`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runNodes(rootOpts, name, cmd)
		},
	}
}

func runNodes(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := nodes.New()

	if name != "" {
		t, ok := reg.TypeByName(name)
		if !ok {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("unknown node type %q", name), nil)
		}
		info := describeType(reg.Meta(t))
		return formatter.Result(info, func(w io.Writer) { writeTypeDetail(w, info) })
	}

	var infos []NodeTypeInfo
	for _, t := range reg.Types() {
		infos = append(infos, describeType(reg.Meta(t)))
	}
	return formatter.Result(infos, func(w io.Writer) { writeTypeTable(w, infos) })
}

func describeType(m *nodes.Meta) NodeTypeInfo {
	info := NodeTypeInfo{
		Name:     m.Name,
		Ident:    m.Ident,
		Category: m.Category,
		Inputs:   nonNil(m.InputNames),
		Outputs:  nonNil(m.OutputNames),
		Params:   []ParamInfo{},
	}
	for i, p := range m.ParamNames {
		info.Params = append(info.Params, ParamInfo{Name: p, Default: m.Defaults[i], Min: m.Min[i], Max: m.Max[i]})
	}
	return info
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeTypeTable(w io.Writer, infos []NodeTypeInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCATEGORY\tINPUTS\tOUTPUTS\tPARAMS")
	for _, info := range infos {
		params := make([]string, len(info.Params))
		for i, p := range info.Params {
			params[i] = p.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", info.Ident, info.Category,
			dashIfEmpty(info.Inputs), dashIfEmpty(info.Outputs), dashIfEmpty(params))
	}
	_ = tw.Flush()
}

func writeTypeDetail(w io.Writer, info NodeTypeInfo) {
	fmt.Fprintf(w, "%s (%s, %s)\n", info.Name, info.Ident, info.Category)
	fmt.Fprintf(w, "  inputs:  %s\n", dashIfEmpty(info.Inputs))
	fmt.Fprintf(w, "  outputs: %s\n", dashIfEmpty(info.Outputs))
	if len(info.Params) == 0 {
		fmt.Fprintln(w, "  params:  -")
		return
	}
	fmt.Fprintln(w, "  params:")
	for _, p := range info.Params {
		fmt.Fprintf(w, "    %s = %g [%g, %g]\n", p.Name, p.Default, p.Min, p.Max)
	}
}

func dashIfEmpty(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}
