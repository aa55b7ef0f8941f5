package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-4

// r1 scores RMS 0.82 and IPI 0.98 under the defaults; a1 sits inside the
// recency window. r2 has no spec baseline.
const fixture = `
guild_id: "g1"
now: "2025-03-10T20:00:00Z"
raiders:
  - id: "r1"
    name: "Anduin"
    role: "dps"
    attendance_percent: 90
    deaths_per_attempt: 0.25
    avoidable_damage_pct: 5
    baseline:
      deaths_per_attempt: 0.2
      avoidable_damage_pct: 4
    vault_slots: 3
    crest_usage_ratio: 0.1
    heroic_bosses_cleared: 8
    simulated_gain: 80000
    spec_baseline_output: 100000
    activity_score: 0.9
  - id: "r2"
    name: "Varian"
    role: "tank"
    attendance_percent: 90
    deaths_per_attempt: 0.25
    avoidable_damage_pct: 5
    vault_slots: 3
    heroic_bosses_cleared: 8
    simulated_gain: 80000
    spec_baseline_output: 100000
    activity_score: 0.9
awards:
  - id: "a1"
    item_id: "i-212"
    raider_id: "r1"
    awarded_at: "2025-03-05T21:15:00Z"
    flps_at_award: 0.71
    tier: "a"
`

func writeRoster(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// isolate keeps the caller's FLPS_* environment out of the run.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{"FLPS_CONFIG", "FLPS_METRICS_ADDR", "FLPS_LOG_LEVEL", "FLPS_LOG_FORMAT", "FLPS_WORKER_COUNT", "FLPS_QUEUE_SIZE"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	dec := json.NewDecoder(bytes.NewBufferString(out))
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}
	return lines
}

func TestEvaluate(t *testing.T) {
	isolate(t)
	path := writeRoster(t, fixture)

	out, _, err := execute(t, "evaluate", "--roster", path)
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 2)

	assert.Equal(t, "r1", lines[0]["raider_id"])
	assert.Equal(t, true, lines[0]["eligible"])
	assert.InDelta(t, 0.82, lines[0]["rms"], tolerance)
	assert.InDelta(t, 0.98, lines[0]["ipi"], tolerance)
	assert.InDelta(t, 0.9, lines[0]["rdf"], tolerance)
	assert.InDelta(t, 0.82*0.98*0.9, lines[0]["flps"], tolerance)
	assert.NotContains(t, lines[0], "ineligibility")

	assert.Equal(t, "r2", lines[1]["raider_id"])
	assert.Equal(t, "missing_baseline", lines[1]["kind"])
	assert.NotEmpty(t, lines[1]["error"])
}

func TestEvaluateNowOverride(t *testing.T) {
	isolate(t)
	path := writeRoster(t, fixture)

	// Three weeks later the award has left the recency window.
	out, _, err := execute(t, "evaluate", "--roster", path, "--now", "2025-03-31")
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 2)
	assert.InDelta(t, 1.0, lines[0]["rdf"], tolerance)
	assert.InDelta(t, 0.82*0.98, lines[0]["flps"], tolerance)

	_, _, err = execute(t, "evaluate", "--roster", path, "--now", "next tuesday")
	assert.ErrorContains(t, err, "invalid --now")
}

func TestEvaluateStrict(t *testing.T) {
	isolate(t)
	path := writeRoster(t, fixture)

	out, _, err := execute(t, "evaluate", "--roster", path, "--strict")
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing baseline")
	assert.Empty(t, out)
}

func TestEvaluateEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("FLPS_FLPS__TIER_SET__BONUS_CEILING", "1.1")
	path := writeRoster(t, fixture)

	out, _, err := execute(t, "evaluate", "--roster", path)
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 2)
	assert.InDelta(t, 0.7749*0.9, lines[0]["flps"], tolerance)
}

func TestEvaluateRequiresRoster(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "evaluate")
	assert.ErrorContains(t, err, `required flag(s) "roster" not set`)

	_, _, err = execute(t, "evaluate", "--roster", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRevokeCheck(t *testing.T) {
	isolate(t)
	path := writeRoster(t, fixture)

	tests := []struct {
		name      string
		now       string
		revocable bool
	}{
		{name: "inside window", now: "2025-03-10T20:00:00Z", revocable: true},
		{name: "window closed", now: "2025-03-20T20:00:00Z", revocable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "revoke-check", "--roster", path, "--award", "a1", "--now", tt.now)
			require.NoError(t, err)

			lines := decodeLines(t, out)
			require.Len(t, lines, 1)
			assert.Equal(t, "a1", lines[0]["award_id"])
			assert.Equal(t, tt.revocable, lines[0]["revocable"])
			assert.EqualValues(t, 7, lines[0]["max_revocation_days"])
		})
	}

	t.Run("unknown award", func(t *testing.T) {
		_, _, err := execute(t, "revoke-check", "--roster", path, "--award", "a9")
		assert.ErrorContains(t, err, "award a9")
	})
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "flps.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("queue_size: 10\nguilds:\n  g1:\n    recency:\n      window_days: 21\n"), 0o600))

	out, _, err := execute(t, "config", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "queue_size: 10")
	assert.Contains(t, out, "decay_factor: 0.9")
	assert.Contains(t, out, "window_days: 21")

	_, _, err = execute(t, "config", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to load config")
}
