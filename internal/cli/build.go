package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/engine"
	"github.com/roach88/livegraph/internal/graphio"
	"github.com/roach88/livegraph/internal/nodes"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output  string
	NoCheck bool
}

// BuildResult describes a written graph file.
type BuildResult struct {
	Output  string `json:"output"`
	Name    string `json:"name"`
	Nodes   int    `json:"nodes"`
	Bytes   int    `json:"bytes"`
	Checked bool   `json:"checked"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <document>",
		Short: "Compile a document to a binary graph file",
		Long: `Compile a YAML or CUE graph document into the binary .lgsh format,
including editor layout.

The graph must schedule (a sink, no cycles) unless --no-check is given, so
work in progress with a cycle can still be saved.

Examples:
  livegraph build pulse.yaml
  livegraph build pulse.cue -o /tmp/pulse.lgsh`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: <document>.lgsh)")
	cmd.Flags().BoolVar(&opts.NoCheck, "no-check", false, "write graphs that fail scheduling")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := nodes.New()

	lg, err := LoadGraph(path, reg)
	if err != nil {
		return loadFailure(formatter, err)
	}

	if !opts.NoCheck {
		if _, err := compiler.BuildEvalPlan(lg.Graph); err != nil {
			return formatter.fail(ExitFailure, ErrCodeBuildFailed, engine.ResultString(err), err)
		}
	}

	out := opts.Output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + GraphExt
	}
	if err := graphio.SaveFile(out, lg.Graph, lg.UI); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %s", out, graphio.ResultString(err)), err)
	}
	formatter.VerboseLog("Wrote %s", out)

	result := BuildResult{
		Output:  out,
		Name:    lg.Name,
		Nodes:   int(lg.Graph.NodeCount),
		Bytes:   graphio.SerializedSize(true),
		Checked: !opts.NoCheck,
	}
	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Built %s (%d nodes, %d bytes)\n", result.Output, result.Nodes, result.Bytes)
	})
}
