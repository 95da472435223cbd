package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/compiler"
)

func TestValidate_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pulse.yaml", pulseDoc)

	out, _, err := execute(NewValidateCommand(textOpts()), path)
	require.NoError(t, err)
	assert.Equal(t, "✓ pulse valid (4 nodes)\n  plan: t → s → c → out\n", out)
}

func TestValidate_ValidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pulse.yaml", pulseDoc)

	out, _, err := execute(NewValidateCommand(jsonOpts()), path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"t", "s", "c", "out"}, resp.Data.Plan)
}

func TestValidate_Warnings(t *testing.T) {
	doc := `name: bare
nodes:
  - id: out
    type: render2d
    params: {X: 5}
`
	path := writeFile(t, t.TempDir(), "bare.yaml", doc)

	out, _, err := execute(NewValidateCommand(textOpts()), path)
	require.NoError(t, err, "warnings never fail validation")
	assert.Contains(t, out, "✓ bare valid (1 nodes)")
	assert.Contains(t, out, compiler.WarnParamOutOfRange+" out.X:")
	assert.Contains(t, out, compiler.WarnSinkNoColor+" out:")
}

func TestValidate_Cycle(t *testing.T) {
	path := writeFile(t, t.TempDir(), "loop.yaml", cycleDoc)

	out, _, err := execute(NewValidateCommand(textOpts()), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrPlanFailed+" plan: cycle: a → b → a")
}

func TestValidate_CycleJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "loop.yaml", cycleDoc)

	out, _, err := execute(NewValidateCommand(jsonOpts()), path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, compiler.ErrPlanFailed, resp.Error.Code)
}

func TestValidate_NoSink(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nosink.yaml", "name: n\nnodes:\n  - {id: t, type: time}\n")

	out, _, err := execute(NewValidateCommand(textOpts()), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "No sink node")
}

func TestValidate_DocumentError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dup.yaml", "name: d\nnodes:\n  - {id: a, type: time}\n  - {id: a, type: time}\n")

	out, _, err := execute(NewValidateCommand(textOpts()), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, compiler.ErrDuplicateLabel)
	assert.Contains(t, out, `duplicate node id "a"`)
}

func TestValidate_MissingFile(t *testing.T) {
	out, _, err := execute(NewValidateCommand(textOpts()), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidate_MissingArgs(t *testing.T) {
	_, _, err := execute(NewValidateCommand(textOpts()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
