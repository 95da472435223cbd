package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/livegraph/internal/engine"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
	"github.com/roach88/livegraph/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Frames   int
	DT       float64
	Database string
	Archive  bool

	// SessionGenerator overrides the engine session ids (for testing).
	// If nil, the engine uses UUIDv7Generator.
	SessionGenerator engine.SessionGenerator
}

// SinkOutput is the last evaluated output of one sink.
type SinkOutput struct {
	Label   string             `json:"label"`
	Type    string             `json:"type"`
	Outputs map[string]float32 `json:"outputs"`
	names   []string
}

// RunResult summarizes a headless run.
type RunResult struct {
	Session  string       `json:"session"`
	Version  uint16       `json:"version"`
	Nodes    int          `json:"nodes"`
	Frames   uint32       `json:"frames"`
	Time     float32      `json:"time"`
	Sinks    []SinkOutput `json:"sinks"`
	Archived string       `json:"archived,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <graph>",
		Short: "Publish a graph and evaluate frames",
		Long: `Publish a graph document or binary file, evaluate it for a number of
fixed-step frames and print the final output of every sink.

With --archive the published generation is written to the SQLite archive
(--db, or LIVEGRAPH_DB).

Examples:
  livegraph run pulse.yaml --frames 120
  livegraph run pulse.lgsh --dt 0.02 --archive --db ./history.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Frames, "frames", 0, "frames to evaluate (default: LIVEGRAPH_FRAMES)")
	cmd.Flags().Float64Var(&opts.DT, "dt", 0, "fixed frame step in seconds (default: LIVEGRAPH_DT)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite archive (default: LIVEGRAPH_DB)")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "archive the published generation")

	return cmd
}

// frameSettings resolves frames and dt from flags, falling back to config.
func frameSettings(opts *RootOptions, frames int, dt float64) (int, float32, error) {
	cfg := opts.settings()
	if frames == 0 {
		frames = cfg.Frames
	}
	if dt == 0 {
		dt = cfg.DT
	}
	if frames < 1 {
		return 0, 0, fmt.Errorf("frames must be positive, got %d", frames)
	}
	if dt <= 0 || dt > graph.MaxFrameDT {
		return 0, 0, fmt.Errorf("dt must be in (0, %g], got %g", graph.MaxFrameDT, dt)
	}
	return frames, float32(dt), nil
}

// signalContext cancels on interrupt. Uses the command's context if set
// (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// startEngine loads lg into a new engine and publishes it.
func startEngine(ctx context.Context, lg *LoadedGraph, reg *nodes.Registry, logger *slog.Logger, dt float32, extra ...engine.EngineOption) (*engine.Engine, error) {
	opts := append([]engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithClock(engine.NewFixedClock(dt)),
	}, extra...)
	eng := engine.New(reg, opts...)
	eng.Load(lg.Graph, lg.UI)
	if err := eng.Commit(ctx); err != nil {
		return nil, err
	}
	return eng, nil
}

func runGraph(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	reg := nodes.New()

	frames, dt, err := frameSettings(opts.RootOptions, opts.Frames, opts.DT)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), err)
	}

	lg, err := LoadGraph(path, reg)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if lg.Repairs > 0 {
		logger.Warn("graph file repaired", "path", path, "repairs", lg.Repairs)
	}

	var extra []engine.EngineOption
	if opts.SessionGenerator != nil {
		extra = append(extra, engine.WithSessionGenerator(opts.SessionGenerator))
	}

	dbPath := ""
	if opts.Archive {
		dbPath = opts.Database
		if dbPath == "" {
			dbPath = opts.settings().DB
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("failed to open database %s", dbPath), err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		extra = append(extra, engine.WithArchiver(st))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	eng, err := startEngine(ctx, lg, reg, logger, dt, extra...)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeBuildFailed, engine.ResultString(err), err)
	}

	err = eng.RunFrames(ctx, frames, func(frame uint32, e *engine.Engine) error {
		logger.Debug("frame", "frame", frame, "time", e.Runtime().Time)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	if ctx.Err() != nil {
		logger.Info("run interrupted", "frame", eng.Runtime().Frame)
	}

	result := RunResult{
		Session:  eng.Session(),
		Version:  eng.Active().Version,
		Nodes:    int(eng.Active().NodeCount),
		Frames:   eng.Runtime().Frame,
		Time:     eng.Runtime().Time,
		Sinks:    collectSinks(eng, lg),
		Archived: dbPath,
	}
	return formatter.Result(result, func(w io.Writer) { writeRun(w, result) })
}

// collectSinks reads the outputs of every active sink in slot order.
func collectSinks(eng *engine.Engine, lg *LoadedGraph) []SinkOutput {
	g := eng.Active()
	sinks := []SinkOutput{}
	for i := range g.Nodes {
		id := graph.NodeID(i)
		if !g.Active(id) || !g.Nodes[id].Type.IsSink() {
			continue
		}
		meta := eng.Registry().Meta(g.Nodes[id].Type)
		s := SinkOutput{
			Label:   lg.Label(id),
			Type:    meta.Ident,
			Outputs: make(map[string]float32, meta.Outputs()),
			names:   meta.OutputNames,
		}
		for port, name := range meta.OutputNames {
			s.Outputs[name] = engine.Output(eng.Bank(), id, port)
		}
		sinks = append(sinks, s)
	}
	return sinks
}

func writeRun(w io.Writer, r RunResult) {
	fmt.Fprintf(w, "session: %s\n", r.Session)
	fmt.Fprintf(w, "published: version %d, %d nodes\n", r.Version, r.Nodes)
	fmt.Fprintf(w, "frames: %d (t=%g)\n", r.Frames, r.Time)
	for _, s := range r.Sinks {
		parts := make([]string, len(s.names))
		for i, name := range s.names {
			parts[i] = fmt.Sprintf("%s=%g", name, s.Outputs[name])
		}
		fmt.Fprintf(w, "  %s %s %s\n", s.Label, s.Type, strings.Join(parts, " "))
	}
	if r.Archived != "" {
		fmt.Fprintf(w, "archived: %s\n", r.Archived)
	}
}
