package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/engine"
	"github.com/roach88/livegraph/internal/nodes"
	"github.com/roach88/livegraph/internal/store"
	"github.com/roach88/livegraph/internal/testutil"
)

// DefaultDT is the frame step when a scenario does not set one.
const DefaultDT = float32(1.0 / 60)

// Harness executes one scenario against a live engine.
type Harness struct {
	reg    *nodes.Registry
	doc    *compiler.Compiled
	engine *engine.Engine
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each run archives into a fresh in-memory database. Execution flow:
//  1. Compile the graph document and publish it at frame 0
//  2. For each frame: apply inputs, apply edits, evaluate, record the trace
//  3. Evaluate assertions against the result
//
// An error is returned only when the scenario cannot run (bad document,
// unknown label in an edit); graph-level rejections are recorded as events.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	reg := nodes.New()

	doc, err := compiler.LoadDocumentFile(scenario.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	compiled, err := compiler.CompileDocument(doc, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to compile graph: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	dt := scenario.DT
	if dt == 0 {
		dt = DefaultDT
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(reg,
		engine.WithLogger(logger),
		engine.WithClock(testutil.NewScriptedClock(dt)),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		engine.WithArchiver(st),
	)
	eng.Load(compiled.Graph, compiled.UI)

	h := &Harness{reg: reg, doc: compiled, engine: eng, store: st, logger: logger}
	result := NewResult()
	result.Session = eng.Session()

	h.publish(ctx, 0, result)

	for f := uint32(1); f <= uint32(scenario.Frames); f++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.applyInputs(scenario.Inputs, f)
		if err := h.applyEdits(ctx, scenario.Edits, f, result); err != nil {
			return nil, err
		}

		err := eng.Step()
		if err != nil && !errors.Is(err, engine.ErrNotPublished) {
			return nil, fmt.Errorf("frame %d: %w", f, err)
		}
		result.Frames = append(result.Frames, h.snapshot(f, err == nil))
	}

	gens, err := h.store.ListGenerations(ctx, result.Session, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	result.Archived = len(gens)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.resolveOutput) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) publish(ctx context.Context, frame uint32, result *Result) {
	err := h.engine.Commit(ctx)
	ev := Event{
		Frame:   frame,
		Kind:    EditPublish,
		Result:  engine.ResultString(err),
		Version: h.engine.Active().Version,
	}
	if plan := h.engine.Plan(); plan != nil {
		for _, id := range plan.Nodes() {
			ev.Order = append(ev.Order, h.doc.LabelOf(id))
		}
	}
	result.Events = append(result.Events, ev)
}

// applyInputs installs the input steps that start at frame. Pad state
// persists until the next step.
func (h *Harness) applyInputs(inputs []InputStep, frame uint32) {
	rt := h.engine.Runtime()
	for _, in := range inputs {
		if in.Frame != frame {
			continue
		}
		rt.SetSticks(in.LX, in.LY, in.RX, in.RY)
		rt.SetTriggers(in.L2, in.R2)
		rt.UpdateButtons(ParseButtons(in.Buttons))
	}
}

func (h *Harness) applyEdits(ctx context.Context, edits []EditStep, frame uint32, result *Result) error {
	for i, e := range edits {
		if e.Frame != frame {
			continue
		}
		if e.Publish {
			h.publish(ctx, frame, result)
			continue
		}
		detail, err := h.applyEdit(e)
		if err != nil {
			return fmt.Errorf("edits[%d]: %w", i, err)
		}
		result.Events = append(result.Events, Event{
			Frame:  frame,
			Kind:   e.Kind(),
			Detail: detail.text,
			Result: engine.ResultString(detail.err),
		})
	}
	return nil
}

type editOutcome struct {
	text string
	err  error
}

// applyEdit resolves labels and applies e to the edit graph. Resolution
// failures are returned as errors; graph rejections are reported in the
// outcome.
func (h *Harness) applyEdit(e EditStep) (editOutcome, error) {
	g := h.engine.Edit()
	switch {
	case e.SetParam != nil:
		p := e.SetParam
		id, idx, err := h.doc.Param(p.Node, p.Param, h.reg)
		if err != nil {
			return editOutcome{}, err
		}
		return editOutcome{
			text: fmt.Sprintf("%s.%s=%s", p.Node, p.Param, formatFloat(p.Value)),
			err:  g.SetParam(id, idx, p.Value),
		}, nil

	case e.Connect != nil:
		c := e.Connect
		src, srcPort, err := h.doc.Output(c.From, h.reg)
		if err != nil {
			return editOutcome{}, err
		}
		label, port, ok := strings.Cut(c.To, ".")
		if !ok {
			return editOutcome{}, fmt.Errorf("connect target %q must be label.port", c.To)
		}
		dst, dstPort, err := h.doc.Input(label, port, h.reg)
		if err != nil {
			return editOutcome{}, err
		}
		return editOutcome{
			text: fmt.Sprintf("%s->%s", c.From, c.To),
			err:  g.Connect(src, uint8(srcPort), dst, uint8(dstPort)),
		}, nil

	case e.Disconnect != nil:
		d := e.Disconnect
		dst, port, err := h.doc.Input(d.Node, d.Port, h.reg)
		if err != nil {
			return editOutcome{}, err
		}
		return editOutcome{
			text: fmt.Sprintf("%s.%s", d.Node, d.Port),
			err:  g.Disconnect(dst, uint8(port)),
		}, nil
	}
	return editOutcome{}, fmt.Errorf("empty edit")
}

// snapshot records the active graph's outputs in slot order. Nodes freed
// since compilation are omitted.
func (h *Harness) snapshot(frame uint32, evaluated bool) FrameTrace {
	ft := FrameTrace{Frame: frame, Time: h.engine.Runtime().Time}
	if !evaluated {
		return ft
	}
	active := h.engine.Active()
	bank := h.engine.Bank()
	for _, label := range h.doc.SortedLabels() {
		id := h.doc.Labels[label]
		if !active.Active(id) {
			continue
		}
		meta := h.reg.Meta(active.Nodes[id].Type)
		nt := NodeTrace{Label: label, Ports: meta.OutputNames}
		for p := range meta.OutputNames {
			nt.Outputs = append(nt.Outputs, engine.Output(bank, id, p))
		}
		ft.Nodes = append(ft.Nodes, nt)
	}
	return ft
}

// resolveOutput maps an assertion's node and port to a label and output
// index.
func (h *Harness) resolveOutput(node, port string) (string, int, error) {
	ref := node
	if port != "" {
		ref = node + "." + port
	}
	id, idx, err := h.doc.Output(ref, h.reg)
	if err != nil {
		return "", 0, err
	}
	return h.doc.LabelOf(id), idx, nil
}
