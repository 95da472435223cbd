package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
	"github.com/roach88/livegraph/internal/testutil"
)

// recordingArchiver captures archived generations.
type recordingArchiver struct {
	sessions []string
	versions []uint16
	sinks    []graph.NodeID
	err      error
}

func (a *recordingArchiver) ArchivePublish(_ context.Context, session string, g *graph.Graph, _ *graph.UiMetaBank, plan *compiler.EvalPlan) error {
	a.sessions = append(a.sessions, session)
	a.versions = append(a.versions, g.Version)
	a.sinks = append(a.sinks, plan.Sink)
	return a.err
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	base := []EngineOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSessionGenerator(testutil.NewFixedSessionGenerator("session-1")),
		WithClock(NewFixedClock(0.0625)),
	}
	return New(nodes.New(), append(base, opts...)...)
}

func TestEngine_New(t *testing.T) {
	e := newTestEngine(t)

	assert.NotNil(t, e.Registry())
	assert.Equal(t, "session-1", e.Session())
	assert.Nil(t, e.Plan(), "no plan before the first commit")
	assert.True(t, e.InSync())
	assert.Equal(t, uint16(0), e.Active().NodeCount)
}

func TestEngine_DefaultSessionIsUUIDv7(t *testing.T) {
	e := New(nodes.New(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	parsed, err := uuid.Parse(e.Session())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestEngine_StepBeforeCommit(t *testing.T) {
	e := newTestEngine(t)
	assert.ErrorIs(t, e.Step(), ErrNotPublished)
	assert.Equal(t, float32(0.0625), e.Runtime().Time, "time still advances")
}

func TestEngine_CommitAndStep(t *testing.T) {
	arch := &recordingArchiver{}
	e := newTestEngine(t, WithArchiver(arch))
	p := testutil.BuildPulse(t, e.Registry())
	e.Load(p.Graph, nil)

	require.NoError(t, e.Commit(context.Background()))
	assert.Equal(t, uint16(1), e.Active().Version)
	assert.True(t, e.InSync(), "edit adopts the published version")
	require.NotNil(t, e.Plan())
	assert.Equal(t, p.Render, e.Plan().Sink)

	require.NoError(t, e.Step())
	assert.Equal(t, float32(0.0625), Output(e.Bank(), p.Time, 0))

	assert.Equal(t, []string{"session-1"}, arch.sessions)
	assert.Equal(t, []uint16{1}, arch.versions)
	assert.Equal(t, []graph.NodeID{p.Render}, arch.sinks)
}

func TestEngine_RejectedCommitKeepsActive(t *testing.T) {
	arch := &recordingArchiver{}
	e := newTestEngine(t, WithArchiver(arch))
	p := testutil.BuildPulse(t, e.Registry())
	e.Load(p.Graph, nil)
	require.NoError(t, e.Commit(context.Background()))
	before := *e.Active()

	require.NoError(t, e.Edit().Free(p.Render))
	err := e.Commit(context.Background())
	assert.True(t, graph.IsNoSink(err))
	assert.Equal(t, before, *e.Active())
	assert.Equal(t, p.Render, e.Plan().Sink, "plan still matches active")
	assert.Len(t, arch.versions, 1, "rejected commits are not archived")

	e.Revert()
	assert.Equal(t, before, *e.Edit())
}

func TestEngine_ArchiveFailureDoesNotFailCommit(t *testing.T) {
	arch := &recordingArchiver{err: errors.New("disk full")}
	e := newTestEngine(t, WithArchiver(arch))
	e.Load(testutil.BuildPulse(t, e.Registry()).Graph, nil)

	require.NoError(t, e.Commit(context.Background()))
	assert.Equal(t, uint16(1), e.Active().Version)
}

func TestEngine_LoadKeepsUI(t *testing.T) {
	e := newTestEngine(t)
	var ui graph.UiMetaBank
	ui.Meta[2] = graph.UiMeta{X: 10, Y: 20}

	e.Load(graph.New(), &ui)
	assert.Equal(t, float32(10), e.UI().Meta[2].X)

	e.Load(graph.New(), nil)
	assert.Equal(t, graph.UiMeta{}, e.UI().Meta[2])
}

func TestEngine_RunFrames(t *testing.T) {
	e := newTestEngine(t)
	p := testutil.BuildPulse(t, e.Registry())
	e.Load(p.Graph, nil)
	require.NoError(t, e.Commit(context.Background()))

	var frames []uint32
	var times []float32
	err := e.RunFrames(context.Background(), 4, func(frame uint32, e *Engine) error {
		frames = append(frames, frame)
		times = append(times, Output(e.Bank(), p.Time, 0))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, frames)
	assert.Equal(t, []float32{0.0625, 0.125, 0.1875, 0.25}, times)
}

func TestEngine_RunFramesStopsOnError(t *testing.T) {
	e := newTestEngine(t)
	e.Load(testutil.BuildPulse(t, e.Registry()).Graph, nil)
	require.NoError(t, e.Commit(context.Background()))

	stop := errors.New("stop")
	calls := 0
	err := e.RunFrames(context.Background(), 10, func(frame uint32, _ *Engine) error {
		calls++
		if frame == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Contains(t, err.Error(), "frame 2")
	assert.Equal(t, 2, calls)
}

func TestEngine_RunFramesCancelled(t *testing.T) {
	e := newTestEngine(t)
	e.Load(testutil.BuildPulse(t, e.Registry()).Graph, nil)
	require.NoError(t, e.Commit(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.RunFrames(ctx, 5, nil), context.Canceled)
	assert.Equal(t, uint32(0), e.Runtime().Frame)
}

func TestEngine_ResetReplaysState(t *testing.T) {
	e := newTestEngine(t)
	g := graph.New()
	reg := e.Registry()
	tm := testutil.MustAlloc(t, g, reg, graph.TypeTime)
	d := testutil.MustAlloc(t, g, reg, graph.TypeDelay)
	testutil.MustAlloc(t, g, reg, graph.TypeRender2D)
	testutil.MustConnect(t, g, tm, 0, d, 0)
	e.Load(g, nil)
	require.NoError(t, e.Commit(context.Background()))

	record := func() []float32 {
		var out []float32
		require.NoError(t, e.RunFrames(context.Background(), 8, func(_ uint32, e *Engine) error {
			out = append(out, Output(e.Bank(), d, 0))
			return nil
		}))
		return out
	}

	first := record()
	e.Reset()
	assert.Equal(t, first, record())
}

func TestFixedClock(t *testing.T) {
	c := NewFixedClock(0.5)
	assert.Equal(t, float32(0.5), c.Tick())
	assert.Equal(t, float32(0.5), c.Tick())
	assert.Equal(t, int64(2), c.Ticks())
}

func TestWallClock(t *testing.T) {
	base := time.Unix(1000, 0)
	now := base
	c := NewWallClock(func() time.Time { return now })

	assert.Equal(t, float32(0), c.Tick(), "first tick")

	now = base.Add(20 * time.Millisecond)
	assert.InDelta(t, 0.02, c.Tick(), 1e-6)

	now = now.Add(5 * time.Second)
	assert.Equal(t, float32(graph.MaxFrameDT), c.Tick(), "stalls are clamped")

	now = now.Add(-time.Second)
	assert.Equal(t, float32(0), c.Tick(), "time going backwards ticks 0")
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("s1", "s2")
	assert.Equal(t, "s1", gen.Generate())
	assert.Equal(t, "s2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
