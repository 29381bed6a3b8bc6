package sla

import "errors"

var (
	// ErrInvalidTimeFormat is returned when a time of day is not a zero-padded "HH:MM".
	ErrInvalidTimeFormat = errors.New("invalid time format")
	// ErrInvalidSchedule is returned for windows ending before they start or misplaced breaks.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrNoWorkingDaysConfigured is returned when no eligible working day can be found.
	ErrNoWorkingDaysConfigured = errors.New("no working days configured")
	// ErrNoWorkingTimeConfigured is returned when accumulation cannot find working time within its bound.
	ErrNoWorkingTimeConfigured = errors.New("no working time configured")
	// ErrNegativeDuration is returned for negative durations.
	ErrNegativeDuration = errors.New("negative duration")
	// ErrDurationOutOfRange is returned for durations that are not finite or
	// exceed what a single accumulation can place.
	ErrDurationOutOfRange = errors.New("duration out of range")
)
