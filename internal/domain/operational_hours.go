package domain

import "time"

// OperatingMode selects how the SLA calendar treats time.
type OperatingMode string

const (
	OperatingModeStandard      OperatingMode = "STANDARD"
	OperatingModeRoundTheClock OperatingMode = "ROUND_THE_CLOCK"
)

// ScheduleKind tells whether a weekday follows the standard window or its own.
type ScheduleKind string

const (
	ScheduleKindStandard ScheduleKind = "STANDARD"
	ScheduleKindCustom   ScheduleKind = "CUSTOM"
	ScheduleKindUnset    ScheduleKind = "UNSET"
)

// TimeRange is a pair of zero-padded "HH:MM" times of day.
type TimeRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// WorkingDay configures one weekday. Weekday follows time.Weekday (Sunday=0).
type WorkingDay struct {
	Weekday      time.Weekday `json:"weekday" yaml:"weekday"`
	Enabled      bool         `json:"enabled" yaml:"enabled"`
	Kind         ScheduleKind `json:"schedule_kind" yaml:"schedule_kind"`
	CustomWindow *TimeRange   `json:"custom_window,omitempty" yaml:"custom_window,omitempty"`
	Breaks       []TimeRange  `json:"breaks" yaml:"breaks"`
}

// OperationalHours is the singleton business-hours configuration.
type OperationalHours struct {
	ID             string        `json:"id" yaml:"-"`
	Mode           OperatingMode `json:"mode" yaml:"mode"`
	StandardWindow TimeRange     `json:"standard_window" yaml:"standard_window"`
	StandardBreaks []TimeRange   `json:"standard_breaks" yaml:"standard_breaks"`
	WorkingDays    [7]WorkingDay `json:"working_days" yaml:"working_days"`
	UpdatedAt      time.Time     `json:"updated_at" yaml:"-"`
}

// Day returns the entry for the given weekday.
func (o OperationalHours) Day(weekday time.Weekday) WorkingDay {
	return o.WorkingDays[int(weekday)%7]
}

// RoundTheClock reports whether every instant counts as working time.
func (o OperationalHours) RoundTheClock() bool {
	return o.Mode == OperatingModeRoundTheClock
}
