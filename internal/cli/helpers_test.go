package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const pulseDoc = `name: pulse
nodes:
  - id: t
    type: time
  - id: s
    type: sin
    inputs: {angle: t.time}
  - id: c
    type: colorize
    inputs: {value: s}
  - id: out
    type: render2d
    inputs: {R: c.r, G: c.g, B: c.b}
    ui: {x: 320, y: 40}
`

const cycleDoc = `name: loop
nodes:
  - id: a
    type: add
    inputs: {a: b}
  - id: b
    type: add
    inputs: {a: a}
  - id: out
    type: render2d
    inputs: {R: b}
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args, returning stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func textOpts() *RootOptions {
	return &RootOptions{Format: "text"}
}

func jsonOpts() *RootOptions {
	return &RootOptions{Format: "json"}
}
