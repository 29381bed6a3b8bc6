package sla

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

var testZone = FixedZone("ICT", 7*3600)

// officeHours: weekdays 08:00-18:00 with lunch 12:00-13:00, Saturday
// 08:00-12:00 without breaks, Sunday off.
func officeHours() domain.OperationalHours {
	cfg := domain.OperationalHours{
		Mode:           domain.OperatingModeStandard,
		StandardWindow: domain.TimeRange{Start: "08:00", End: "18:00"},
		StandardBreaks: []domain.TimeRange{{Start: "12:00", End: "13:00"}},
	}
	for i := range cfg.WorkingDays {
		cfg.WorkingDays[i] = domain.WorkingDay{
			Weekday: time.Weekday(i),
			Enabled: true,
			Kind:    domain.ScheduleKindStandard,
		}
	}
	cfg.WorkingDays[time.Saturday] = domain.WorkingDay{
		Weekday:      time.Saturday,
		Enabled:      true,
		Kind:         domain.ScheduleKindCustom,
		CustomWindow: &domain.TimeRange{Start: "08:00", End: "12:00"},
	}
	cfg.WorkingDays[time.Sunday] = domain.WorkingDay{Weekday: time.Sunday, Enabled: false, Kind: domain.ScheduleKindStandard}
	return cfg
}

func newCalc(t *testing.T, cfg domain.OperationalHours, holidays ...domain.Holiday) *Calculator {
	t.Helper()
	c, err := NewCalculator(cfg, holidays, testZone)
	require.NoError(t, err)
	return c
}

// at builds a local instant in January 2025. The 15th is a Wednesday.
func at(day, hour, minute int) time.Time {
	return testZone.Date(2025, time.January, day, hour, minute)
}

func TestComputeDueDateScenarios(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		hours    float64
		holidays []domain.Holiday
		want     time.Time
	}{
		{
			name:  "same day across lunch",
			start: at(15, 10, 0),
			hours: 4,
			want:  at(15, 15, 0),
		},
		{
			name:  "odd minutes across lunch",
			start: at(17, 10, 13),
			hours: 4,
			want:  at(17, 15, 13),
		},
		{
			name:  "after hours start lands on lunch start",
			start: at(15, 18, 55),
			hours: 4,
			want:  at(16, 12, 0),
		},
		{
			name:  "saturday spills over sunday to monday",
			start: at(18, 10, 47),
			hours: 4,
			want:  at(20, 10, 47),
		},
		{
			name:  "holiday day is skipped",
			start: at(15, 16, 0),
			hours: 4,
			holidays: []domain.Holiday{
				{Name: "Founders Day", Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), IsActive: true},
			},
			want: at(17, 10, 0),
		},
		{
			name:  "recurring holiday from an earlier year is skipped",
			start: at(15, 16, 0),
			hours: 4,
			holidays: []domain.Holiday{
				{Name: "Founders Day", Date: time.Date(2019, 1, 16, 0, 0, 0, 0, time.UTC), IsRecurring: true, IsActive: true},
			},
			want: at(17, 10, 0),
		},
		{
			name:  "inactive holiday is ignored",
			start: at(15, 16, 0),
			hours: 4,
			holidays: []domain.Holiday{
				{Name: "Founders Day", Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), IsActive: false},
			},
			want: at(16, 10, 0),
		},
		{
			name:  "start inside lunch resumes at lunch end",
			start: at(15, 12, 30),
			hours: 1,
			want:  at(15, 14, 0),
		},
		{
			name:  "start exactly at lunch start resumes at lunch end",
			start: at(15, 12, 0),
			hours: 0.5,
			want:  at(15, 13, 30),
		},
		{
			name:  "start before opening",
			start: at(15, 6, 15),
			hours: 2,
			want:  at(15, 10, 0),
		},
		{
			name:  "fills the day exactly to closing",
			start: at(15, 8, 0),
			hours: 9,
			want:  at(15, 18, 0),
		},
		{
			name:  "multi day",
			start: at(13, 8, 0),
			hours: 45,
			want:  at(17, 18, 0),
		},
		{
			name:  "fractional hours round to minutes",
			start: at(15, 8, 0),
			hours: 1.5,
			want:  at(15, 9, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCalc(t, officeHours(), tt.holidays...)
			due, err := c.ComputeDueDate(tt.start.UTC(), FlatHours(tt.hours))
			require.NoError(t, err)
			assert.Equal(t, time.UTC, due.Location())
			assert.True(t, tt.want.Equal(due), "want %s got %s", tt.want, testZone.Local(due))
		})
	}
}

func TestComputeDueDateWithComponents(t *testing.T) {
	c := newCalc(t, officeHours())

	// One working day is worth Monday's nine net hours.
	due, err := c.ComputeDueDate(at(15, 10, 0).UTC(), Components(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, at(16, 10, 0).Equal(due), "got %s", testZone.Local(due))
}

func TestComputeDueDateZeroDurationNormalizesStart(t *testing.T) {
	c := newCalc(t, officeHours())

	due, err := c.ComputeDueDate(at(15, 19, 0).UTC(), FlatHours(0))
	require.NoError(t, err)
	assert.True(t, at(16, 8, 0).Equal(due))
}

func TestIsWorkingInstant(t *testing.T) {
	holiday := domain.Holiday{Name: "Founders Day", Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), IsActive: true}
	c := newCalc(t, officeHours(), holiday)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"window start", at(15, 8, 0), true},
		{"just before window start", at(15, 7, 59), false},
		{"mid morning", at(15, 10, 0), true},
		{"break start", at(15, 12, 0), false},
		{"inside break", at(15, 12, 30), false},
		{"break end", at(15, 13, 0), true},
		{"last minute", at(15, 17, 59), true},
		{"window end", at(15, 18, 0), false},
		{"holiday", at(16, 10, 0), false},
		{"saturday morning", at(18, 9, 0), true},
		{"saturday afternoon", at(18, 13, 0), false},
		{"sunday", at(19, 10, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsWorkingInstant(tt.at.UTC()))
		})
	}
}

func TestNextWorkingInstant(t *testing.T) {
	cfg := officeHours()
	// Adjacent breaks on Thursday must chain.
	cfg.WorkingDays[time.Thursday] = domain.WorkingDay{
		Weekday: time.Thursday,
		Enabled: true,
		Kind:    domain.ScheduleKindCustom,
		Breaks: []domain.TimeRange{
			{Start: "13:00", End: "14:00"},
			{Start: "12:00", End: "13:00"},
		},
	}
	c := newCalc(t, cfg)

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"already working", at(15, 10, 0), at(15, 10, 0)},
		{"before opening", at(15, 5, 0), at(15, 8, 0)},
		{"inside break", at(15, 12, 10), at(15, 13, 0)},
		{"adjacent breaks", at(16, 12, 10), at(16, 14, 0)},
		{"after closing", at(15, 18, 0), at(16, 8, 0)},
		{"saturday afternoon to monday", at(18, 12, 0), at(20, 8, 0)},
		{"sunday to monday", at(19, 23, 59), at(20, 8, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.NextWorkingInstant(tt.from.UTC())
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
			assert.True(t, c.IsWorkingInstant(got))
		})
	}
}

func TestNoWorkingDaysConfigured(t *testing.T) {
	cfg := officeHours()
	for i := range cfg.WorkingDays {
		cfg.WorkingDays[i].Enabled = false
	}
	c := newCalc(t, cfg)

	_, err := c.NextWorkingInstant(at(15, 10, 0))
	assert.True(t, errors.Is(err, ErrNoWorkingDaysConfigured))

	_, err = c.AddWorkingDuration(at(15, 10, 0), time.Hour)
	assert.True(t, errors.Is(err, ErrNoWorkingTimeConfigured))
	assert.True(t, errors.Is(err, ErrNoWorkingDaysConfigured))

	_, err = c.ComputeDueDate(at(15, 10, 0), FlatHours(1))
	assert.True(t, errors.Is(err, ErrNoWorkingDaysConfigured))

	_, err = c.ComponentsToWorkingHours(1, 0, 0)
	assert.True(t, errors.Is(err, ErrNoWorkingDaysConfigured))

	hours, err := c.ComponentsToWorkingHours(0, 3, 30)
	require.NoError(t, err)
	assert.Equal(t, 3.5, hours)
}

func TestEveryDayExcludedTerminates(t *testing.T) {
	var holidays []domain.Holiday
	for d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		holidays = append(holidays, domain.Holiday{Name: d.Format("Jan 2"), Date: d, IsRecurring: true, IsActive: true})
	}
	c := newCalc(t, officeHours(), holidays...)

	_, err := c.AddWorkingDuration(at(15, 10, 0), time.Hour)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoWorkingTimeConfigured))
}

func TestNegativeDuration(t *testing.T) {
	c := newCalc(t, officeHours())

	_, err := c.AddWorkingDuration(at(15, 10, 0), -time.Minute)
	assert.True(t, errors.Is(err, ErrNegativeDuration))

	_, err = c.ComputeDueDate(at(15, 10, 0), FlatHours(-1))
	assert.True(t, errors.Is(err, ErrNegativeDuration))

	_, err = c.ComponentsToWorkingHours(0, -1, 0)
	assert.True(t, errors.Is(err, ErrNegativeDuration))
}

func TestDurationOutOfRange(t *testing.T) {
	c := newCalc(t, officeHours())
	start := at(15, 10, 0)

	for _, hours := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), 1e300, 1e19, 3e6, maxWorkingTime.Hours() + 1} {
		due, err := c.ComputeDueDate(start, FlatHours(hours))
		assert.True(t, errors.Is(err, ErrDurationOutOfRange), "%v hours: due=%s err=%v", hours, due, err)
	}

	for _, d := range []Duration{
		Components(maxAccumulatorDays+1, 0, 0),
		Components(400000, 0, 0),
		Components(math.MaxInt, 0, 0),
		Components(0, maxAccumulatorDays*24+1, 0),
		Components(0, 0, math.MaxInt),
	} {
		_, err := c.ComputeDueDate(start, d)
		assert.True(t, errors.Is(err, ErrDurationOutOfRange), "%s: %v", d, err)
	}

	_, err := c.AddWorkingDuration(start, maxWorkingTime+time.Minute)
	assert.True(t, errors.Is(err, ErrDurationOutOfRange))
}

func TestComponentsToWorkingHoursAtTheBound(t *testing.T) {
	c := newCalc(t, officeHours())

	// Six enabled days, 49 net hours per cycle starting Monday.
	got, err := c.ComponentsToWorkingHours(maxAccumulatorDays, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, float64(maxAccumulatorDays/6*49+2*9), got, 1e-9)

	_, err = c.ComponentsToWorkingHours(0, maxAccumulatorDays*24, 0)
	require.NoError(t, err)

	_, err = c.ComponentsToWorkingHours(maxAccumulatorDays, maxAccumulatorDays*24, 0)
	assert.True(t, errors.Is(err, ErrDurationOutOfRange))

	_, err = c.ComponentsToWorkingHours(math.MaxInt, 0, 0)
	assert.True(t, errors.Is(err, ErrDurationOutOfRange))
}

func TestRoundTheClock(t *testing.T) {
	cfg := officeHours()
	cfg.Mode = domain.OperatingModeRoundTheClock
	// Ignored in round-the-clock mode, malformed or not.
	cfg.StandardWindow = domain.TimeRange{Start: "bogus", End: "18:00"}
	holiday := domain.Holiday{Name: "Founders Day", Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), IsActive: true}
	c := newCalc(t, cfg, holiday)

	assert.True(t, c.IsWorkingInstant(at(19, 3, 0)))
	assert.True(t, c.IsWorkingInstant(at(16, 12, 30)))
	assert.False(t, c.IsExclusionDay(at(16, 0, 0)))

	for _, minutes := range []int{0, 1, 59, 600, 2881, 10000} {
		start := at(15, 18, 55)
		got, err := c.AddWorkingDuration(start, time.Duration(minutes)*time.Minute)
		require.NoError(t, err)
		assert.True(t, start.Add(time.Duration(minutes)*time.Minute).Equal(got))
	}

	hours, err := c.ComponentsToWorkingHours(2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 49.0, hours)
}

func TestComponentsToWorkingHours(t *testing.T) {
	c := newCalc(t, officeHours())

	tests := []struct {
		days, hours, minutes int
		want                 float64
	}{
		{0, 0, 0, 0},
		{0, 4, 0, 4},
		{0, 0, 90, 1.5},
		{1, 0, 0, 9},
		{5, 0, 0, 45},
		{6, 0, 0, 49},
		{7, 0, 0, 58},
		{6, 2, 30, 51.5},
		{400, 0, 0, 3270},
	}

	for _, tt := range tests {
		got, err := c.ComponentsToWorkingHours(tt.days, tt.hours, tt.minutes)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "%dd %dh %dm", tt.days, tt.hours, tt.minutes)
	}
}

func TestComponentsToWorkingHoursPackageLevel(t *testing.T) {
	hours, err := ComponentsToWorkingHours(1, 0, 0, officeHours())
	require.NoError(t, err)
	assert.Equal(t, 9.0, hours)
}

func TestWorkingTimeBetween(t *testing.T) {
	holiday := domain.Holiday{Name: "Founders Day", Date: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), IsActive: true}
	c := newCalc(t, officeHours(), holiday)

	assert.Equal(t, 4*time.Hour, c.WorkingTimeBetween(at(15, 10, 0), at(15, 15, 0)))
	assert.Equal(t, 4*time.Hour, c.WorkingTimeBetween(at(15, 16, 0), at(17, 10, 0)))
	assert.Equal(t, time.Duration(0), c.WorkingTimeBetween(at(15, 15, 0), at(15, 10, 0)))
	assert.Equal(t, time.Duration(0), c.WorkingTimeBetween(at(15, 12, 0), at(15, 13, 0)))
}

func TestWorkingTimeBetweenInvertsAccumulation(t *testing.T) {
	c := newCalc(t, officeHours())
	start := at(15, 9, 17)

	for minutes := 1; minutes < 4000; minutes += 37 {
		required := time.Duration(minutes) * time.Minute
		due, err := c.AddWorkingDuration(start, required)
		require.NoError(t, err)
		assert.Equal(t, required, c.WorkingTimeBetween(start, due), "minutes=%d", minutes)
	}
}

func TestNewCalculatorValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.OperationalHours)
		want   error
	}{
		{
			name:   "malformed standard window",
			mutate: func(c *domain.OperationalHours) { c.StandardWindow.Start = "8:00" },
			want:   ErrInvalidTimeFormat,
		},
		{
			name: "malformed break on a disabled day",
			mutate: func(c *domain.OperationalHours) {
				c.WorkingDays[time.Sunday].Breaks = []domain.TimeRange{{Start: "12:00", End: "25:00"}}
			},
			want: ErrInvalidTimeFormat,
		},
		{
			name:   "window ends before it starts",
			mutate: func(c *domain.OperationalHours) { c.StandardWindow = domain.TimeRange{Start: "18:00", End: "08:00"} },
			want:   ErrInvalidSchedule,
		},
		{
			name: "break outside window",
			mutate: func(c *domain.OperationalHours) {
				c.StandardBreaks = []domain.TimeRange{{Start: "17:30", End: "18:30"}}
			},
			want: ErrInvalidSchedule,
		},
		{
			name: "overlapping breaks",
			mutate: func(c *domain.OperationalHours) {
				c.StandardBreaks = []domain.TimeRange{{Start: "12:00", End: "13:00"}, {Start: "12:30", End: "14:00"}}
			},
			want: ErrInvalidSchedule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := officeHours()
			tt.mutate(&cfg)
			_, err := NewCalculator(cfg, nil, testZone)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPackageLevelEntryPoints(t *testing.T) {
	due, err := ComputeDueDate(at(15, 10, 0).UTC(), FlatHours(4), officeHours(), nil, testZone)
	require.NoError(t, err)
	assert.True(t, at(15, 15, 0).Equal(due))

	working, err := IsWorkingInstant(at(15, 12, 0).UTC(), officeHours(), nil, testZone)
	require.NoError(t, err)
	assert.False(t, working)

	cfg := officeHours()
	cfg.StandardBreaks = []domain.TimeRange{{Start: "1200", End: "13:00"}}
	_, err = ComputeDueDate(at(15, 10, 0), FlatHours(4), cfg, nil, testZone)
	assert.True(t, errors.Is(err, ErrInvalidTimeFormat))
}
