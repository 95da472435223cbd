package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
	"github.com/roach88/livegraph/internal/testutil"
)

func lintCodes(errs []ValidationError) []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

// TestLint_Clean tests that the reference graph lints clean.
func TestLint_Clean(t *testing.T) {
	reg := nodes.New()
	p := testutil.BuildPulse(t, reg)
	assert.Empty(t, Lint(p.Graph, reg))
}

// TestLint_ParamOutOfRange tests the bounds warning.
func TestLint_ParamOutOfRange(t *testing.T) {
	reg := nodes.New()
	g := graph.New()
	pad := testutil.MustAlloc(t, g, reg, graph.TypePad)
	require.NoError(t, g.SetParam(pad, 0, 7))

	errs := Lint(g, reg)
	require.Len(t, errs, 1)
	assert.Equal(t, WarnParamOutOfRange, errs[0].Code)
	assert.Equal(t, pad, errs[0].Node)
	assert.Equal(t, "node[0].channel", errs[0].Field)
	assert.True(t, errs[0].IsWarning())
}

// TestLint_UnusedPorts tests connections into and out of ports a type
// ignores.
func TestLint_UnusedPorts(t *testing.T) {
	reg := nodes.New()
	g := graph.New()
	c := testutil.MustAlloc(t, g, reg, graph.TypeConst)
	neg := testutil.MustAlloc(t, g, reg, graph.TypeNeg)
	// Neg reads only input 0; Const writes only output 0.
	testutil.MustConnect(t, g, c, 0, neg, 2)
	testutil.MustConnect(t, g, c, 3, neg, 0)

	errs := Lint(g, reg)
	assert.Equal(t, []string{WarnUnusedOutputPort, WarnUnusedInputPort}, lintCodes(errs))
	assert.Equal(t, "node[1].inputs[0]", errs[0].Field)
	assert.Equal(t, "node[1].inputs[2]", errs[1].Field)
}

// TestLint_SinkNoColor tests that a sink without color inputs is flagged.
func TestLint_SinkNoColor(t *testing.T) {
	reg := nodes.New()
	g := graph.New()
	testutil.MustAlloc(t, g, reg, graph.TypeRender2D)
	testutil.MustAlloc(t, g, reg, graph.TypeRenderCircle)

	errs := Lint(g, reg)
	assert.Equal(t, []string{WarnSinkNoColor, WarnSinkNoColor}, lintCodes(errs))
	assert.Contains(t, errs[0].Message, "draws white")
}

// TestLint_DoesNotBlockPlan tests that lint findings are advisory.
func TestLint_DoesNotBlockPlan(t *testing.T) {
	reg := nodes.New()
	g := graph.New()
	testutil.MustAlloc(t, g, reg, graph.TypeRender2D)

	require.NotEmpty(t, Lint(g, reg))
	_, err := BuildEvalPlan(g)
	assert.NoError(t, err)
}

// TestValidationError_Format tests message rendering with and without a line.
func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "nodes[1].type", Message: "unknown", Code: ErrUnknownNodeType}
	assert.Equal(t, "[E101] nodes[1].type: unknown", e.Error())
	assert.False(t, e.IsWarning())

	e.Line = 12
	assert.Equal(t, "[E101] line 12: nodes[1].type: unknown", e.Error())
}
