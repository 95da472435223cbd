package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
)

// Encoders are safe for concurrent EncodeAll/DecodeAll use.
var (
	payloadEncoder, _ = zstd.NewWriter(nil)
	payloadDecoder, _ = zstd.NewReader(nil)
)

// PlanSummary is the archived form of an evaluation plan.
type PlanSummary struct {
	Count uint16   `msgpack:"count"`
	Sink  uint16   `msgpack:"sink"`
	Order []uint16 `msgpack:"order"`
}

// SummarizePlan converts plan to its archived form. A nil plan yields an
// empty summary with an invalid sink.
func SummarizePlan(plan *compiler.EvalPlan) PlanSummary {
	if plan == nil {
		return PlanSummary{Sink: uint16(graph.InvalidNode), Order: []uint16{}}
	}
	ids := plan.Nodes()
	order := make([]uint16, len(ids))
	for i, id := range ids {
		order[i] = uint16(id)
	}
	return PlanSummary{Count: uint16(len(ids)), Sink: uint16(plan.Sink), Order: order}
}

// Plan expands the summary back into an evaluation plan.
func (p PlanSummary) Plan() *compiler.EvalPlan {
	plan := &compiler.EvalPlan{Sink: graph.NodeID(p.Sink)}
	for _, id := range p.Order {
		if int(plan.Count) >= graph.MaxNodes {
			break
		}
		plan.Order[plan.Count] = graph.NodeID(id)
		plan.Count++
	}
	return plan
}

func compressPayload(raw []byte) []byte {
	return payloadEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/4))
}

func decompressPayload(data []byte) ([]byte, error) {
	raw, err := payloadDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return raw, nil
}

func marshalPlan(p PlanSummary) ([]byte, error) {
	b, err := msgpack.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return b, nil
}

func unmarshalPlan(b []byte) (PlanSummary, error) {
	var p PlanSummary
	if err := msgpack.Unmarshal(b, &p); err != nil {
		return PlanSummary{}, fmt.Errorf("unmarshal plan: %w", err)
	}
	return p, nil
}
