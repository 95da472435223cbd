package graphio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
	"github.com/roach88/livegraph/internal/testutil"
)

// TestSanitize_Clean tests that a store-built graph needs no repairs.
func TestSanitize_Clean(t *testing.T) {
	g, _ := sampleGraph(t)
	before := *g
	assert.Zero(t, Sanitize(g))
	assert.Equal(t, before, *g)
}

// TestSanitize_Repairs tests each repair rule.
func TestSanitize_Repairs(t *testing.T) {
	reg := nodes.New()
	g := graph.New()
	a := testutil.MustAlloc(t, g, reg, graph.TypeAdd)
	b := testutil.MustAlloc(t, g, reg, graph.TypeDelay)
	c := testutil.MustAlloc(t, g, reg, graph.TypeSmooth)

	g.Nodes[a].Inputs[0] = graph.Connection{Src: 300}        // out of range
	g.Nodes[a].Inputs[1] = graph.Connection{Src: 200}        // inactive
	g.Nodes[a].Inputs[2] = graph.Connection{Src: b, Port: 7} // bad port
	g.Nodes[a].Inputs[3] = graph.Connection{Src: c, Port: 1} // fine
	g.Nodes[b].State.Head = 16                               // past the ring
	g.Nodes[c].State.Kind = graph.StatePulse                 // wrong kind
	g.NodeCount = 99

	assert.Equal(t, 5, Sanitize(g))
	for p := 0; p < 3; p++ {
		assert.False(t, g.Nodes[a].Inputs[p].IsConnected(), "port %d", p)
	}
	assert.Equal(t, graph.Connection{Src: c, Port: 1}, g.Nodes[a].Inputs[3])
	assert.Equal(t, graph.ResetState(graph.TypeDelay), g.Nodes[b].State)
	assert.Equal(t, graph.StateSmooth, g.Nodes[c].State.Kind)
	assert.Equal(t, uint16(3), g.NodeCount)
}

// TestSanitize_BadTypeCascades tests that connections into a node whose
// type was invalid are cut in the same pass, whatever the slot order.
func TestSanitize_BadTypeCascades(t *testing.T) {
	reg := nodes.New()
	g := graph.New()
	consumer := testutil.MustAlloc(t, g, reg, graph.TypeNeg)
	producer := testutil.MustAlloc(t, g, reg, graph.TypeConst)
	testutil.MustConnect(t, g, producer, 0, consumer, 0)
	g.Nodes[producer].Type = graph.TypeCount + 5

	assert.Equal(t, 2, Sanitize(g))
	assert.Equal(t, graph.TypeNone, g.Nodes[producer].Type)
	assert.False(t, g.Nodes[consumer].Inputs[0].IsConnected())
	assert.Equal(t, uint16(1), g.NodeCount)

	assert.Zero(t, Sanitize(g), "second pass is a no-op")
}

// TestSanitize_Idempotent tests arbitrary corrupted tables.
func TestSanitize_Idempotent(t *testing.T) {
	g, ui := sampleGraph(t)
	buf, err := Marshal(g, ui)
	require.NoError(t, err)

	// Scribble over the node table, then fix the checksum so the data is
	// accepted and handed to Sanitize.
	for i := HeaderSize; i < HeaderSize+nodesSize; i += 7 {
		buf[i] = byte(i * 31)
	}
	le.PutUint32(buf[12:], Checksum(buf[HeaderSize:]))

	got := graph.New()
	repairs, err := Deserialize(buf, got, nil)
	require.NoError(t, err)
	assert.Positive(t, repairs)
	assert.Zero(t, Sanitize(got))
	assert.Equal(t, got.CountActive(), got.NodeCount)
}

// TestSanitize_Nil tests the nil graph.
func TestSanitize_Nil(t *testing.T) {
	assert.Zero(t, Sanitize(nil))
}
