package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
)

// ErrNotPublished is returned by Step before the first successful commit.
var ErrNotPublished = errors.New("engine: nothing published")

// Archiver records every successful publish. Implemented by *store.Store.
type Archiver interface {
	ArchivePublish(ctx context.Context, session string, g *graph.Graph, ui *graph.UiMetaBank, plan *compiler.EvalPlan) error
}

// FrameFunc observes the engine after each evaluated frame.
type FrameFunc func(frame uint32, e *Engine) error

// Engine owns an edit/active graph pair and drives frame evaluation.
//
// All structures are allocated once in New; Step performs no allocation.
//
// INVARIANTS:
//   - active topology and params are written only by Commit; evaluation
//     touches nothing but node State
//   - plan is nil until the first successful Commit and always matches active
//   - the registry is immutable and shared read-only
type Engine struct {
	reg    *nodes.Registry
	edit   *graph.Graph
	active *graph.Graph
	ui     *graph.UiMetaBank
	bank   *graph.OutputBank
	rt     graph.Runtime

	plan      compiler.EvalPlan
	published bool

	clock    FrameClock
	sessions SessionGenerator
	session  string
	archiver Archiver
	logger   *slog.Logger
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock sets the frame clock. Default: NewFixedClock(1/60).
func WithClock(c FrameClock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSessionGenerator sets the session id source. Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) EngineOption {
	return func(e *Engine) {
		e.sessions = g
	}
}

// WithArchiver records every successful commit. Default: none.
func WithArchiver(a Archiver) EngineOption {
	return func(e *Engine) {
		e.archiver = a
	}
}

// New creates an engine with empty edit and active graphs.
func New(reg *nodes.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		reg:      reg,
		edit:     graph.New(),
		active:   graph.New(),
		ui:       &graph.UiMetaBank{},
		bank:     &graph.OutputBank{},
		clock:    NewFixedClock(1.0 / 60.0),
		sessions: UUIDv7Generator{},
		logger:   slog.Default(),
	}
	e.plan.Reset()

	for _, opt := range opts {
		opt(e)
	}

	e.session = e.sessions.Generate()
	return e
}

// Registry returns the node registry.
func (e *Engine) Registry() *nodes.Registry { return e.reg }

// Edit returns the mutable working graph.
func (e *Engine) Edit() *graph.Graph { return e.edit }

// Active returns the published graph. Callers must treat it as read-only.
func (e *Engine) Active() *graph.Graph { return e.active }

// UI returns the editor metadata bank.
func (e *Engine) UI() *graph.UiMetaBank { return e.ui }

// Bank returns the output bank written by the last Step.
func (e *Engine) Bank() *graph.OutputBank { return e.bank }

// Runtime returns the runtime context for input collaborators to update.
func (e *Engine) Runtime() *graph.Runtime { return &e.rt }

// Session returns the id grouping this engine's archived generations.
func (e *Engine) Session() string { return e.session }

// Plan returns the plan for the active graph, or nil before the first commit.
func (e *Engine) Plan() *compiler.EvalPlan {
	if !e.published {
		return nil
	}
	return &e.plan
}

// Load replaces the edit graph and UI metadata. The active graph is not
// touched; call Commit to publish.
func (e *Engine) Load(g *graph.Graph, ui *graph.UiMetaBank) {
	e.edit.CopyFrom(g)
	if ui != nil {
		*e.ui = *ui
	} else {
		e.ui.Reset()
	}
}

// Validate runs the publish checks against the edit graph.
func (e *Engine) Validate() error {
	return PublishValidate(e.edit, nil)
}

// Commit publishes the edit graph.
//
// On failure the active graph and plan are unchanged. On success the edit
// graph adopts the new version so InSync reports true, and the generation is
// handed to the archiver. Archive failures are logged, not returned: the
// publish has already happened.
func (e *Engine) Commit(ctx context.Context) error {
	if err := Publish(e.edit, e.active, &e.plan); err != nil {
		e.logger.Warn("publish rejected",
			"result", ResultString(err),
			"error", err,
			"nodes", e.edit.NodeCount)
		return err
	}
	e.published = true
	e.edit.Version = e.active.Version

	e.logger.Info("published",
		"version", e.active.Version,
		"nodes", e.active.NodeCount,
		"sink", e.plan.Sink)

	if e.archiver != nil {
		if err := e.archiver.ArchivePublish(ctx, e.session, e.active, e.ui, &e.plan); err != nil {
			e.logger.Error("archive publish",
				"session", e.session,
				"version", e.active.Version,
				"error", err)
		}
	}
	return nil
}

// Revert discards unpublished edits.
func (e *Engine) Revert() {
	_ = Revert(e.edit, e.active)
}

// InSync reports whether the edit graph has no unpublished version bump.
func (e *Engine) InSync() bool {
	return InSync(e.edit, e.active)
}

// Reset rewinds time, clears the output bank and resets every active
// node's state, so the next frames replay from the start.
func (e *Engine) Reset() {
	e.rt.Reset()
	e.bank.Reset()
	for i := range e.active.Nodes {
		n := &e.active.Nodes[i]
		if n.Type != graph.TypeNone {
			n.State = graph.ResetState(n.Type)
		}
	}
}

// Step advances the runtime by one clock tick and evaluates the active
// graph once.
func (e *Engine) Step() error {
	e.rt.Advance(e.clock.Tick())
	if !e.published {
		return ErrNotPublished
	}
	Run(e.active, &e.plan, e.bank, &e.rt, e.reg)
	return nil
}

// RunFrames evaluates n frames, calling fn after each. It stops early when
// ctx is cancelled or fn returns an error.
func (e *Engine) RunFrames(ctx context.Context, n int, fn FrameFunc) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(); err != nil {
			return err
		}
		if fn != nil {
			if err := fn(e.rt.Frame, e); err != nil {
				return fmt.Errorf("frame %d: %w", e.rt.Frame, err)
			}
		}
	}
	return nil
}
