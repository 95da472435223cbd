package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Session  string
	Limit    int
}

// GenerationInfo summarizes one archived generation.
type GenerationInfo struct {
	ID        int64     `json:"id"`
	Version   uint16    `json:"version"`
	Nodes     uint16    `json:"nodes"`
	Checksum  string    `json:"checksum"`
	HasUI     bool      `json:"has_ui"`
	Sink      *uint16   `json:"sink,omitempty"`
	Order     []uint16  `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionHistory lists the generations of one session.
type SessionHistory struct {
	Session     string           `json:"session"`
	Generations []GenerationInfo `json:"generations"`
}

// HistoryResult holds the listing.
type HistoryResult struct {
	Sessions []SessionHistory `json:"sessions"`
	Total    int              `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived generations",
		Long: `List the generations archived by "run --archive", grouped by engine
session in the order sessions first published.

Exit codes:
  0 - Listing printed (possibly empty)
  2 - Command error (database not found, etc.)

Examples:
  livegraph history --db ./history.db
  livegraph history --session 01920000-... --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite archive (default: LIVEGRAPH_DB)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "list one session only")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "most recent generations per session (0 = all)")

	return cmd
}

// openArchive opens an existing archive. Unlike store.Open it refuses to
// create a new database.
func openArchive(opts *RootOptions, path string) (*store.Store, string, error) {
	if path == "" {
		path = opts.settings().DB
	}
	if _, err := os.Stat(path); err != nil {
		return nil, path, fmt.Errorf("database not found: %s", path)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, path, err
	}
	return st, path, nil
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := context.Background()

	st, path, err := openArchive(opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, err.Error(), err)
	}
	defer st.Close()
	formatter.VerboseLog("Reading %s", path)

	sessions := []string{opts.Session}
	if opts.Session == "" {
		sessions, err = st.Sessions(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to list sessions", err)
		}
	}

	result := HistoryResult{Sessions: []SessionHistory{}}
	for _, session := range sessions {
		gens, err := st.ListGenerations(ctx, session, opts.Limit)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to list session %s", session), err)
		}
		if len(gens) == 0 {
			continue
		}
		sh := SessionHistory{Session: session, Generations: make([]GenerationInfo, len(gens))}
		for i, g := range gens {
			sh.Generations[i] = generationInfo(g)
		}
		result.Sessions = append(result.Sessions, sh)
		result.Total += len(gens)
	}

	return formatter.Result(result, func(w io.Writer) { writeHistory(w, result) })
}

func generationInfo(g store.Generation) GenerationInfo {
	info := GenerationInfo{
		ID:        g.ID,
		Version:   g.Version,
		Nodes:     g.NodeCount,
		Checksum:  fmt.Sprintf("0x%08x", g.Checksum),
		HasUI:     g.HasUI,
		Order:     g.Plan.Order,
		CreatedAt: g.CreatedAt,
	}
	if info.Order == nil {
		info.Order = []uint16{}
	}
	if graph.NodeID(g.Plan.Sink).Valid() {
		sink := g.Plan.Sink
		info.Sink = &sink
	}
	return info
}

func writeHistory(w io.Writer, r HistoryResult) {
	if r.Total == 0 {
		fmt.Fprintln(w, "No generations archived.")
		return
	}
	for _, s := range r.Sessions {
		fmt.Fprintf(w, "session %s\n", s.Session)
		for _, g := range s.Generations {
			sink := "-"
			if g.Sink != nil {
				sink = fmt.Sprint(*g.Sink)
			}
			order := make([]string, len(g.Order))
			for i, id := range g.Order {
				order[i] = fmt.Sprint(id)
			}
			fmt.Fprintf(w, "  #%d v%d nodes=%d sink=%s order=%s checksum=%s %s\n",
				g.ID, g.Version, g.Nodes, sink, strings.Join(order, ","), g.Checksum,
				g.CreatedAt.UTC().Format(time.RFC3339))
		}
	}
	fmt.Fprintf(w, "%d generation(s)\n", r.Total)
}

// errNotFound reports whether err is a missing generation.
func errNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
