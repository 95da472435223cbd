package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livegraph/internal/nodes"
)

func TestNodes_Table(t *testing.T) {
	out, _, err := execute(NewNodesCommand(textOpts()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(nodes.New().Types())+1)
	assert.True(t, strings.HasPrefix(lines[0], "TYPE"))
	assert.Contains(t, out, "render2d")
	assert.Contains(t, out, "R,G,B,A")
}

func TestNodes_Detail(t *testing.T) {
	out, _, err := execute(NewNodesCommand(textOpts()), "render2d")
	require.NoError(t, err)
	assert.Contains(t, out, "Render2D (render2d, sink)")
	assert.Contains(t, out, "outputs: x,y,w,h")
	assert.Contains(t, out, "X = 0.3 [0, 1]")
	assert.Contains(t, out, "H = 0.4 [0, 2]")
}

func TestNodes_DetailJSON(t *testing.T) {
	out, _, err := execute(NewNodesCommand(jsonOpts()), "const")
	require.NoError(t, err)

	var resp struct {
		Data NodeTypeInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "const", resp.Data.Ident)
	assert.Empty(t, resp.Data.Inputs)
	assert.Equal(t, []string{"value"}, resp.Data.Outputs)
}

func TestNodes_UnknownType(t *testing.T) {
	out, _, err := execute(NewNodesCommand(textOpts()), "warp")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `unknown node type "warp"`)
}
