package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/engine"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Name     string                     `json:"name"`
	Nodes    int                        `json:"nodes"`
	Plan     []string                   `json:"plan,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <graph>",
		Short: "Check a graph without running it",
		Long: `Compile a graph document (or read a binary graph), build its evaluation
plan and lint it against node metadata.

Cycles are reported with the nodes that form them. Lint warnings never fail
validation.

Exit codes:
  0 - Graph is valid (warnings allowed)
  1 - Document or scheduling errors
  2 - File not found or unreadable`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := nodes.New()

	lg, err := LoadGraph(path, reg)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.IsDocumentError() {
			return outputValidationErrors(formatter, ValidationResult{
				Name: path,
				Errors: []compiler.ValidationError{{
					Field:   "document",
					Message: loadErr.Message,
					Code:    loadErr.Code,
					Node:    graph.InvalidNode,
				}},
			})
		}
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %s (%d nodes, %d repairs)", path, lg.Graph.NodeCount, lg.Repairs)

	result := validateGraph(lg, reg)
	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}
	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s valid (%d nodes)\n", result.Name, result.Nodes)
		fmt.Fprintf(w, "  plan: %s\n", strings.Join(result.Plan, " → "))
		writeFindings(w, result.Warnings)
	})
}

// validateGraph schedules and lints a loaded graph.
func validateGraph(lg *LoadedGraph, reg *nodes.Registry) ValidationResult {
	result := ValidationResult{Name: lg.Name, Nodes: int(lg.Graph.NodeCount)}

	plan, err := compiler.BuildEvalPlan(lg.Graph)
	if err != nil {
		result.Errors = planFindings(lg, err)
	} else {
		result.Plan = planLabels(lg, plan)
	}

	for _, finding := range compiler.Lint(lg.Graph, reg) {
		finding.Field = relabelField(lg, finding)
		if finding.IsWarning() {
			result.Warnings = append(result.Warnings, finding)
		} else {
			result.Errors = append(result.Errors, finding)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// planFindings turns a scheduling error into findings. A cycle yields one
// finding per strongly connected group.
func planFindings(lg *LoadedGraph, err error) []compiler.ValidationError {
	if graph.IsCycleError(err) {
		var out []compiler.ValidationError
		for _, c := range compiler.FindCycles(lg.Graph) {
			path := make([]string, len(c.Path))
			for i, id := range c.Path {
				path[i] = lg.Label(id)
			}
			out = append(out, compiler.ValidationError{
				Field:   "plan",
				Message: "cycle: " + strings.Join(path, " → "),
				Code:    compiler.ErrPlanFailed,
				Node:    c.Nodes[0],
			})
		}
		if len(out) > 0 {
			return out
		}
	}

	node := graph.InvalidNode
	var gerr *graph.Error
	if errors.As(err, &gerr) {
		node = gerr.Node
	}
	return []compiler.ValidationError{{
		Field:   "plan",
		Message: strings.TrimPrefix(engine.ResultString(err), "Error: "),
		Code:    compiler.ErrPlanFailed,
		Node:    node,
	}}
}

func planLabels(lg *LoadedGraph, plan *compiler.EvalPlan) []string {
	order := plan.Nodes()
	labels := make([]string, len(order))
	for i, id := range order {
		labels[i] = lg.Label(id)
	}
	return labels
}

// relabelField swaps the "node[<id>]" prefix lint uses for the node label.
func relabelField(lg *LoadedGraph, v compiler.ValidationError) string {
	prefix := fmt.Sprintf("node[%d]", v.Node)
	if lg.Binary() || !strings.HasPrefix(v.Field, prefix) {
		return v.Field
	}
	return lg.Label(v.Node) + strings.TrimPrefix(v.Field, prefix)
}

func writeFindings(w io.Writer, findings []compiler.ValidationError) {
	for _, f := range findings {
		fmt.Fprintf(w, "  %s %s: %s\n", f.Code, f.Field, f.Message)
	}
}

// outputValidationErrors outputs a failed validation.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	result.Valid = false
	errs := result.Errors
	if formatter.Format == "json" {
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintln(w, "✗ Validation failed")
		writeFindings(w, errs)
		writeFindings(w, result.Warnings)
	}
	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
