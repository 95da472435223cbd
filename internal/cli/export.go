package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/nodes"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
	Name   string
}

// ExportResult describes a written document.
type ExportResult struct {
	Output string `json:"output"`
	Name   string `json:"name"`
	Nodes  int    `json:"nodes"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <graph>",
		Short: "Convert a graph to a YAML document",
		Long: `Write a graph as a YAML document. Nodes are labelled <type><slot> and
params left at their defaults are omitted.

Without -o the document is written to stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "document name (default: file name)")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := nodes.New()

	lg, err := LoadGraph(path, reg)
	if err != nil {
		return loadFailure(formatter, err)
	}

	name := opts.Name
	if name == "" {
		name = lg.Name
	}
	doc := compiler.DocumentFromGraph(name, lg.Graph, lg.UI, reg)
	data, err := compiler.MarshalDocument(doc)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, err.Error(), err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", opts.Output, err), err)
	}

	result := ExportResult{Output: opts.Output, Name: name, Nodes: len(doc.Nodes)}
	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Exported %s (%d nodes)\n", result.Output, result.Nodes)
	})
}
