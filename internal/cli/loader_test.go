package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/graphio"
	"github.com/roach88/livegraph/internal/nodes"
)

const padCUE = `name: "pad"
nodes: [
	{id: "p", type: "pad"},
	{id: "out", type: "render2d", inputs: {R: "p.lx", G: "p.ly"}},
]
`

func TestLoadGraph_Document(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pulse.yaml", pulseDoc)

	lg, err := LoadGraph(path, nodes.New())
	require.NoError(t, err)
	assert.Equal(t, "pulse", lg.Name)
	assert.False(t, lg.Binary())
	assert.Equal(t, uint16(4), lg.Graph.NodeCount)
	assert.Equal(t, "out", lg.Label(3))
	assert.Equal(t, float32(320), lg.UI.Meta[3].X)
}

func TestLoadGraph_CUE(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pad.cue", padCUE)

	lg, err := LoadGraph(path, nodes.New())
	require.NoError(t, err)
	assert.Equal(t, "pad", lg.Name)
	assert.Equal(t, uint16(2), lg.Graph.NodeCount)
	assert.Equal(t, graph.TypePad, lg.Graph.Nodes[0].Type)
}

func TestLoadGraph_Binary(t *testing.T) {
	dir := t.TempDir()
	doc, err := LoadGraph(writeFile(t, dir, "pulse.yaml", pulseDoc), nodes.New())
	require.NoError(t, err)

	path := filepath.Join(dir, "pulse.lgsh")
	require.NoError(t, graphio.SaveFile(path, doc.Graph, doc.UI))

	lg, err := LoadGraph(path, nodes.New())
	require.NoError(t, err)
	assert.True(t, lg.Binary())
	assert.Equal(t, "pulse", lg.Name, "binary files are named after the file")
	assert.Equal(t, "#3", lg.Label(3))
	assert.Zero(t, lg.Repairs)
	assert.Equal(t, *doc.Graph, *lg.Graph)
	assert.Equal(t, *doc.UI, *lg.UI)
}

func TestLoadGraph_Errors(t *testing.T) {
	dir := t.TempDir()
	corrupt := writeFile(t, dir, "corrupt.lgsh", "not a graph file at all")

	tests := []struct {
		name    string
		path    string
		code    string
		message string
		doc     bool
	}{
		{"missing file", filepath.Join(dir, "missing.yaml"), ErrCodeNotFound, "file not found", false},
		{"directory", dir, ErrCodeNotFound, "not a file", false},
		{"corrupt binary", corrupt, ErrCodeLoadFailed, "Error: Invalid magic number", false},
		{"bad yaml", writeFile(t, dir, "bad.yaml", "name: x\nnodez: []\n"), ErrCodeLoadFailed, "field nodez not found", false},
		{"unknown type", writeFile(t, dir, "type.yaml", "name: x\nnodes:\n  - {id: a, type: warp}\n"),
			compiler.ErrUnknownNodeType, `nodes[0].type: unknown node type "warp"`, true},
		{"bad reference", writeFile(t, dir, "ref.yaml", "name: x\nnodes:\n  - {id: a, type: neg, inputs: {in: ghost}}\n"),
			compiler.ErrBadConnectionRef, `unknown source node "ghost"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGraph(tt.path, nodes.New())
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.code, loadErr.Code)
			assert.Contains(t, loadErr.Message, tt.message)
			assert.Equal(t, tt.doc, loadErr.IsDocumentError())
		})
	}
}

func TestLoadGraph_CUEPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", "name: \"x\"\nnodes: [\n")

	_, err := LoadGraph(path, nodes.New())
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.True(t, loadErr.Pos.IsValid())
	assert.Contains(t, loadErr.Error(), "bad.cue:")
	assert.Contains(t, loadErr.Error(), ErrCodeLoadFailed)
}

func TestLoadFailure_ExitCodes(t *testing.T) {
	f := &OutputFormatter{Format: "text", Writer: io.Discard}

	err := loadFailure(f, &LoadError{Code: ErrCodeNotFound, Message: "gone"})
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	err = loadFailure(f, &LoadError{Code: compiler.ErrDuplicateLabel, Message: "dup"})
	assert.Equal(t, ExitFailure, GetExitCode(err))

	err = loadFailure(f, os.ErrPermission)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIsGraphFile(t *testing.T) {
	assert.True(t, IsGraphFile("a/b.lgsh"))
	assert.True(t, IsGraphFile("B.LGSH"))
	assert.False(t, IsGraphFile("b.yaml"))
	assert.False(t, IsGraphFile("lgsh"))
}
