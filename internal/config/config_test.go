package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLA_UTC_OFFSET", "")
	t.Setenv("SLA_CACHE_TTL_SECONDS", "")
	t.Setenv("SLA_SWEEP_INTERVAL_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "+07:00", cfg.SLA.UTCOffset)
	assert.Equal(t, 5*time.Minute, cfg.SLA.CacheTTL())
	assert.Equal(t, time.Minute, cfg.SLA.SweepInterval())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	_, err := Load()
	require.Error(t, err)
}

const seedDoc = `
mode: ${TEST_SLA_MODE}
standard_window: {start: "08:00", end: "18:00"}
standard_breaks:
  - {start: "12:00", end: "13:00"}
working_days:
  - {day: monday, enabled: true}
  - {day: Fri, enabled: true, schedule_kind: CUSTOM, custom_window: {end: "16:00"}}
holidays:
  - {name: New Year, date: "2025-01-01", recurring: true}
  - {name: Offsite, date: "2025-06-20", active: false}
`

func TestLoadCalendarSeed(t *testing.T) {
	t.Setenv("TEST_SLA_MODE", "STANDARD")
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0o600))

	seed, err := LoadCalendarSeed(path)
	require.NoError(t, err)

	hours := seed.Hours
	assert.Equal(t, domain.OperatingModeStandard, hours.Mode)
	assert.Equal(t, "08:00", hours.StandardWindow.Start)

	monday := hours.Day(time.Monday)
	assert.True(t, monday.Enabled)
	assert.Equal(t, domain.ScheduleKindStandard, monday.Kind)

	friday := hours.Day(time.Friday)
	assert.Equal(t, domain.ScheduleKindCustom, friday.Kind)
	require.NotNil(t, friday.CustomWindow)
	assert.Equal(t, "16:00", friday.CustomWindow.End)

	tuesday := hours.Day(time.Tuesday)
	assert.False(t, tuesday.Enabled)
	assert.Equal(t, domain.ScheduleKindUnset, tuesday.Kind)
	assert.Equal(t, time.Tuesday, tuesday.Weekday)

	require.Len(t, seed.Holidays, 2)
	assert.True(t, seed.Holidays[0].IsRecurring)
	assert.True(t, seed.Holidays[0].IsActive)
	assert.False(t, seed.Holidays[1].IsActive)
	assert.Equal(t, time.June, seed.Holidays[1].Date.Month())
}

func TestParseCalendarSeedErrors(t *testing.T) {
	tests := map[string]string{
		"unknown weekday": "working_days:\n  - {day: caturday, enabled: true}\n",
		"bad date":        "holidays:\n  - {name: x, date: 01/01/2025}\n",
		"bad yaml":        "standard_window: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCalendarSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestShippedCalendarSeedParses(t *testing.T) {
	seed, err := LoadCalendarSeed(filepath.Join("..", "..", "config", "calendar.yaml"))
	require.NoError(t, err)
	assert.Equal(t, domain.OperatingModeStandard, seed.Hours.Mode)
	assert.Len(t, seed.Holidays, 3)
}
