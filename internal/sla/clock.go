package sla

import (
	"fmt"
	"time"
)

// MinutesPerDay is the length of a civil day in the fixed local zone.
const MinutesPerDay = 24 * 60

// Clock is a time of day expressed as minutes since local midnight.
type Clock int

// ParseClock parses a zero-padded 24-hour "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	minutes := int(s[3]-'0')*10 + int(s[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimeFormat, s)
	}
	return Clock(hours*60 + minutes), nil
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the clock as "HH:MM". End of day renders as "24:00".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Offset returns the clock as a duration since midnight.
func (c Clock) Offset() time.Duration {
	return time.Duration(c) * time.Minute
}

// Interval is a half-open span of the day, [Start, End).
type Interval struct {
	Start Clock
	End   Clock
}

// Length returns the span covered by the interval.
func (i Interval) Length() time.Duration {
	if i.End <= i.Start {
		return 0
	}
	return (i.End - i.Start).Offset()
}

// Contains reports whether the offset since midnight falls inside [Start, End).
func (i Interval) Contains(offset time.Duration) bool {
	return offset >= i.Start.Offset() && offset < i.End.Offset()
}

// Overlap returns how much of [from, to) the interval covers.
func (i Interval) Overlap(from, to time.Duration) time.Duration {
	lo := maxDuration(from, i.Start.Offset())
	hi := minDuration(to, i.End.Offset())
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
