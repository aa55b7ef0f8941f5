package roster_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/roster"
)

const sample = `
guild_id: "stormwind-raiders"
now: "2025-03-10T20:00:00Z"
raiders:
  - id: "r1"
    name: "Anduin"
    role: "healer"
    attendance_percent: 90
    deaths_per_attempt: 0.25
    avoidable_damage_pct: 5
    baseline:
      deaths_per_attempt: 0.2
      avoidable_damage_pct: 4
    vault_slots: 3
    crest_usage_ratio: 0.1
    heroic_bosses_cleared: 8
    tier_pieces_owned: 2
    simulated_gain: 80000
    spec_baseline_output: 100000
    activity_score: 0.9
  - id: "r2"
    name: "Varian"
    role: "tank"
attendance:
  - raider_id: "r1"
    instance_id: "nerubar"
    encounter_id: "ulgrax"
    raid_date: "2025-03-04"
    attended: true
    selected: true
awards:
  - id: "a1"
    item_id: "i-212"
    raider_id: "r1"
    awarded_at: "2025-03-05T21:15:00Z"
    flps_at_award: 0.71
    tier: "a"
bans:
  - raider_id: "r2"
    reason: "ninja looting"
    expires_at: "2025-04-01"
`

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	snap, err := roster.Load(write(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "stormwind-raiders", snap.GuildID)
	assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), snap.Now)

	require.Len(t, snap.Raiders, 2)
	r1 := snap.Raiders[0]
	assert.Equal(t, "r1", r1.ID)
	assert.Equal(t, "stormwind-raiders", r1.GuildID)
	assert.Equal(t, model.RoleHealer, r1.Role)
	assert.Equal(t, 90, r1.AttendancePercent)
	require.NotNil(t, r1.Baseline)
	assert.InDelta(t, 0.2, r1.Baseline.DeathsPerAttempt, 1e-9)
	assert.InDelta(t, 80000.0, r1.SimulatedGain, 1e-9)
	assert.Nil(t, snap.Raiders[1].Baseline)

	require.Len(t, snap.Attendance, 1)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), snap.Attendance[0].RaidDate)
	assert.True(t, snap.Attendance[0].Selected)

	require.Len(t, snap.Awards, 1)
	assert.Equal(t, model.TierA, snap.Awards[0].Tier)
	assert.Equal(t, model.AwardActive, snap.Awards[0].Status)

	require.Len(t, snap.Bans, 1)
	require.NotNil(t, snap.Bans[0].ExpiresAt)
	assert.True(t, snap.Bans[0].IsActive(snap.Now))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		target  error
		message string
	}{
		{
			name:    "missing guild",
			body:    "raiders: []\n",
			target:  roster.ErrInvalidRoster,
			message: "GuildID is required",
		},
		{
			name:    "bad role",
			body:    "guild_id: g\nraiders:\n  - id: r\n    name: n\n    role: bard\n",
			target:  roster.ErrInvalidRoster,
			message: "Raiders[0].Role must be one of dps tank healer, got bard",
		},
		{
			name:    "bad date",
			body:    "guild_id: g\nattendance:\n  - raider_id: r\n    instance_id: i\n    raid_date: \"last tuesday\"\n",
			target:  roster.ErrInvalidRoster,
			message: "attendance[0].raid_date",
		},
		{
			name:    "bad tier",
			body:    "guild_id: g\nawards:\n  - item_id: i\n    raider_id: r\n    awarded_at: \"2025-03-01\"\n    tier: S\n",
			target:  roster.ErrInvalidRoster,
			message: "tier must be one of A, B, C, got S",
		},
		{
			name:   "malformed yaml",
			body:   "guild_id: [unclosed\n",
			target: roster.ErrLoadRoster,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := roster.Load(write(t, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := roster.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, roster.ErrLoadRoster)
	})
}

func TestParseTime(t *testing.T) {
	got, err := roster.ParseTime("2025-03-10T22:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), got)

	got, err = roster.ParseTime(" 2025-03-10 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got)

	_, err = roster.ParseTime("10/03/2025")
	assert.Error(t, err)
}
