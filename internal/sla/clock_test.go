package sla

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:00", want: 480},
		{in: "12:30", want: 750},
		{in: "23:59", want: 1439},
		{in: "8:00", wantErr: true},
		{in: "08:0", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "12-00", wantErr: true},
		{in: " 8:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTimeFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestIntervalArithmetic(t *testing.T) {
	lunch := Interval{Start: MustParseClock("12:00"), End: MustParseClock("13:00")}

	assert.Equal(t, time.Hour, lunch.Length())
	assert.True(t, lunch.Contains(12*time.Hour))
	assert.True(t, lunch.Contains(12*time.Hour+59*time.Minute))
	assert.False(t, lunch.Contains(13*time.Hour))
	assert.False(t, lunch.Contains(11*time.Hour+59*time.Minute))

	assert.Equal(t, time.Hour, lunch.Overlap(8*time.Hour, 18*time.Hour))
	assert.Equal(t, 30*time.Minute, lunch.Overlap(12*time.Hour+30*time.Minute, 18*time.Hour))
	assert.Equal(t, time.Duration(0), lunch.Overlap(13*time.Hour, 18*time.Hour))
	assert.Equal(t, "12:00-13:00", lunch.String())
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		seconds int
		wantErr bool
	}{
		{in: "+07:00", seconds: 7 * 3600},
		{in: "-03:30", seconds: -(3*3600 + 30*60)},
		{in: "+0530", seconds: 5*3600 + 30*60},
		{in: "Z", seconds: 0},
		{in: "", seconds: 0},
		{in: "07:00", wantErr: true},
		{in: "+7", wantErr: true},
		{in: "+15:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			zone, err := ParseOffset(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, zone.Location()).Zone()
			assert.Equal(t, tt.seconds, offset)
		})
	}
}

func TestZoneNormalizesFromUTC(t *testing.T) {
	zone := FixedZone("ICT", 7*3600)
	// 20:30 UTC is already the next civil day at +07:00.
	utc := time.Date(2025, 1, 14, 20, 30, 0, 0, time.UTC)

	local := zone.Local(utc)
	assert.Equal(t, 15, local.Day())
	assert.Equal(t, 3, local.Hour())
	assert.Equal(t, time.Wednesday, local.Weekday())
	assert.Equal(t, 3*time.Hour+30*time.Minute, zone.SinceMidnight(utc))
	assert.True(t, zone.UTC(local).Equal(utc))
	assert.Equal(t, time.UTC, zone.UTC(local).Location())
}
