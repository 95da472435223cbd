package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: pulse-size
description: render2d reports its default size
graph: ../graphs/pulse.yaml
frames: 2
assertions:
  - type: plan_order
    order: [t, s, c, out]
  - type: output
    frame: 2
    node: out
    port: w
    equals: 0.4
`

const failingScenario = `name: pulse-wrong
description: expects the wrong width
graph: ../graphs/pulse.yaml
frames: 1
assertions:
  - type: output
    frame: 1
    node: out
    port: w
    equals: 0.9
`

// scenarioDir lays out graphs/pulse.yaml and a scenarios directory holding
// the given files, returning the scenarios directory.
func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "graphs/pulse.yaml", pulseDoc)
	dir := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
	return dir
}

func TestTest_PassingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"size.yaml": passingScenario})

	out, _, err := execute(NewTestCommand(textOpts()), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ pulse-size\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"size.yaml":  passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, _, err := execute(NewTestCommand(textOpts()), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ pulse-wrong\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_FailingScenarioJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wrong.yaml": failingScenario})

	out, _, err := execute(NewTestCommand(jsonOpts()), dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTest_UpdateThenMatchGolden(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"size.yaml": passingScenario})
	golden := filepath.Join(dir, "golden", "size.golden")

	out, _, err := execute(NewTestCommand(textOpts()), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ pulse-size (golden updated)")
	require.FileExists(t, golden)

	out, _, err = execute(NewTestCommand(jsonOpts()), dir)
	require.NoError(t, err)
	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scenarios, 1, "golden files are not scenarios")
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)

	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0644))
	out, _, err = execute(NewTestCommand(textOpts()), dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_Filter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"size.yaml":  passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, _, err := execute(NewTestCommand(textOpts()), dir, "--filter", "si*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "pulse-wrong")
}

func TestTest_NoScenarios(t *testing.T) {
	out, _, err := execute(NewTestCommand(textOpts()), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTest_MissingPath(t *testing.T) {
	_, _, err := execute(NewTestCommand(textOpts()), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_InvalidScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"bad.yaml": "name: x\n"})

	out, _, err := execute(NewTestCommand(textOpts()), dir)
	require.Error(t, err)
	assert.Contains(t, out, "failed to load scenario")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "")
	writeFile(t, dir, "b.yml", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "nested/c.yaml", "")
	writeFile(t, dir, "golden/d.yaml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)

	files, err = findScenarioFiles(dir, "[ab]")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "offset.golden"), goldenFilePath(filepath.Join("s", "offset.yaml")))
	assert.Equal(t, filepath.Join("golden", "x.golden"), goldenFilePath("x.yml"))
}
