package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/graphio"
)

// ErrNotFound is returned when a requested generation does not exist.
var ErrNotFound = errors.New("generation not found")

// Generation is one archived publish.
type Generation struct {
	ID        int64
	Session   string
	Version   uint16
	NodeCount uint16
	Checksum  uint32
	HasUI     bool
	Plan      PlanSummary
	CreatedAt time.Time

	// Payload is the uncompressed binary graph file.
	Payload []byte
}

// WriteGeneration archives g and its plan under session. The graph is stored
// in the binary file format, zstd-compressed.
//
// Writing the same (session, version) twice is a no-op; the existing row id
// is returned.
func (s *Store) WriteGeneration(ctx context.Context, session string, g *graph.Graph, ui *graph.UiMetaBank, plan *compiler.EvalPlan) (int64, error) {
	if session == "" {
		return 0, fmt.Errorf("write generation: empty session")
	}
	raw, err := graphio.Marshal(g, ui)
	if err != nil {
		return 0, fmt.Errorf("write generation: %w", err)
	}
	h, err := graphio.ReadHeader(raw)
	if err != nil {
		return 0, fmt.Errorf("write generation: %w", err)
	}
	planBlob, err := marshalPlan(SummarizePlan(plan))
	if err != nil {
		return 0, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generations
			(session_id, version, node_count, checksum, has_ui, payload, plan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, version) DO NOTHING
	`, session, h.GraphVersion, h.NodeCount, h.Checksum, h.HasUI(),
		compressPayload(raw), planBlob, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert generation: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM generations WHERE session_id = ? AND version = ?",
		session, h.GraphVersion,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup generation: %w", err)
	}
	return id, nil
}

// ArchivePublish records a successful publish. It satisfies the engine's
// archiver hook.
func (s *Store) ArchivePublish(ctx context.Context, session string, g *graph.Graph, ui *graph.UiMetaBank, plan *compiler.EvalPlan) error {
	_, err := s.WriteGeneration(ctx, session, g, ui, plan)
	return err
}

const generationColumns = `id, session_id, version, node_count, checksum, has_ui, plan, created_at, payload`

// ReadGeneration loads a generation by id.
func (s *Store) ReadGeneration(ctx context.Context, id int64) (*Generation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+generationColumns+" FROM generations WHERE id = ?", id)
	return scanGeneration(row)
}

// LatestGeneration loads the most recent generation of session.
func (s *Store) LatestGeneration(ctx context.Context, session string) (*Generation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+generationColumns+" FROM generations WHERE session_id = ? ORDER BY id DESC LIMIT 1",
		session)
	return scanGeneration(row)
}

// ListGenerations returns the generations of session in archive order. When
// limit > 0 only the most recent limit generations are returned. Payloads
// are not loaded.
func (s *Store) ListGenerations(ctx context.Context, session string, limit int) ([]Generation, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT * FROM (
			SELECT id, session_id, version, node_count, checksum, has_ui, plan, created_at, NULL AS payload
			FROM generations
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, session, limit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}

// Sessions returns every session with at least one generation, ordered by
// first appearance.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id
		FROM generations
		GROUP BY session_id
		ORDER BY MIN(id) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var session string
		if err := rows.Scan(&session); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// RestoreGeneration decodes generation id into g and ui, returning the number
// of repairs the decoder applied. On error g and ui are unchanged.
func (s *Store) RestoreGeneration(ctx context.Context, id int64, g *graph.Graph, ui *graph.UiMetaBank) (int, error) {
	gen, err := s.ReadGeneration(ctx, id)
	if err != nil {
		return 0, err
	}
	repairs, err := graphio.Deserialize(gen.Payload, g, ui)
	if err != nil {
		return 0, fmt.Errorf("restore generation %d: %w", id, err)
	}
	return repairs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (*Generation, error) {
	var (
		gen       Generation
		planBlob  []byte
		payload   []byte
		createdAt int64
	)
	err := row.Scan(&gen.ID, &gen.Session, &gen.Version, &gen.NodeCount, &gen.Checksum,
		&gen.HasUI, &planBlob, &createdAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan generation: %w", err)
	}

	if gen.Plan, err = unmarshalPlan(planBlob); err != nil {
		return nil, err
	}
	gen.CreatedAt = time.UnixMilli(createdAt)
	if payload != nil {
		if gen.Payload, err = decompressPayload(payload); err != nil {
			return nil, err
		}
	}
	return &gen, nil
}
