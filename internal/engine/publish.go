package engine

import (
	"errors"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
)

// ErrNullGraph is returned when a publish operation is given a nil graph.
var ErrNullGraph = errors.New("publish: nil graph")

// Publish validates edit and, on success, commits it to active.
//
// On any failure active is left untouched and the error is returned. On
// success active becomes a full copy of edit with Version incremented by
// one, and outPlan (when non-nil) receives the plan built from edit.
//
// Publish is the only operation that writes active.
func Publish(edit, active *graph.Graph, outPlan *compiler.EvalPlan) error {
	if edit == nil || active == nil {
		return ErrNullGraph
	}

	var plan compiler.EvalPlan
	if err := compiler.BuildEvalPlanInto(edit, &plan); err != nil {
		return err
	}

	version := active.Version
	active.CopyFrom(edit)
	active.Version = version + 1

	if outPlan != nil {
		*outPlan = plan
	}
	return nil
}

// PublishValidate runs the publish checks against edit without committing.
func PublishValidate(edit *graph.Graph, outPlan *compiler.EvalPlan) error {
	if edit == nil {
		return ErrNullGraph
	}

	var plan compiler.EvalPlan
	if err := compiler.BuildEvalPlanInto(edit, &plan); err != nil {
		return err
	}
	if outPlan != nil {
		*outPlan = plan
	}
	return nil
}

// InSync reports whether edit and active carry the same version.
func InSync(edit, active *graph.Graph) bool {
	if edit == nil || active == nil {
		return false
	}
	return edit.Version == active.Version
}

// Revert discards unpublished edits by overwriting edit with active.
func Revert(edit, active *graph.Graph) error {
	if edit == nil || active == nil {
		return ErrNullGraph
	}
	edit.CopyFrom(active)
	return nil
}

// ResultString renders a publish result for display.
func ResultString(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrNullGraph):
		return "Error: NULL pointer"
	case graph.IsCycleError(err):
		return "Error: Cycle detected"
	case graph.IsNoSink(err):
		return "Error: No sink node"
	case graph.IsValidationFail(err):
		return "Error: Validation failed"
	default:
		return "Error: " + err.Error()
	}
}
