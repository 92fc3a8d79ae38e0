package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScenario(t *testing.T) {
	path := writeScenario(t, pairingYAML)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, `scenario "pairing": 3 frames`)
	assert.Contains(t, output, "[0] primed range=[1,1]")
	assert.Contains(t, output, "[1] primed range=[2,2]")
	assert.Contains(t, output, "[2] retry")
	assert.Contains(t, output, "all assertions passed")
}

func TestRunScenarioJSON(t *testing.T) {
	path := writeScenario(t, pairingYAML)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp struct {
		OK     bool      `json:"ok"`
		Result RunResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "pairing", resp.Result.Scenario)
	assert.True(t, resp.Result.Pass)
	require.Len(t, resp.Result.Frames, 3)
	assert.Equal(t, "primed", resp.Result.Frames[0].State)
	assert.Equal(t, 1, resp.Result.Depths["readings"])
	assert.Empty(t, resp.Result.RunID)
}

func TestRunFailedAssertion(t *testing.T) {
	path := writeScenario(t, `
name: pairing
description: one driver pacing one follower
streams:
  - name: ticks
    role: driver
    policy: next
  - name: readings
    role: follower
    policy: before
script:
  - stream: ticks
    stamps: [1, 2]
  - stream: readings
    stamps: [0, 1, 2]
captures: 3
assertions:
  - type: frame_count
    count: 9
`)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "1 assertion(s) failed")
	assert.Contains(t, buf.String(), "FAIL")
}

func TestRunRecordsToDatabase(t *testing.T) {
	path := writeScenario(t, pairingYAML)
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "recorded as run ")
	assert.FileExists(t, dbPath)
}

func TestRunRecordsRunIDInJSON(t *testing.T) {
	path := writeScenario(t, pairingYAML)
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp struct {
		OK     bool      `json:"ok"`
		Result RunResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.NotEmpty(t, resp.Result.RunID)
}

func TestRunConcurrentMode(t *testing.T) {
	path := writeScenario(t, pairingYAML)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--concurrent", "--timeout", "300ms"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		OK     bool      `json:"ok"`
		Result RunResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.Result.Pass)
	assert.NotEmpty(t, resp.Result.Frames)
	assert.Equal(t, "primed", resp.Result.Frames[0].State)
}

func TestRunMissingScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
	assert.Contains(t, buf.String(), "error E002")
}
