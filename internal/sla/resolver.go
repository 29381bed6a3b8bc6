package sla

import (
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// Window is one day's working hours together with its breaks.
type Window struct {
	Hours  Interval
	Breaks []Interval
}

// fullDay is the round-the-clock window.
var fullDay = Window{Hours: Interval{Start: 0, End: MinutesPerDay}}

// Net returns the working time of the whole window, breaks excluded.
func (w Window) Net() time.Duration {
	net := w.Hours.Length()
	for _, b := range w.Breaks {
		net -= b.Length()
	}
	return net
}

// IsOpen reports whether the offset since midnight is working time.
func (w Window) IsOpen(offset time.Duration) bool {
	if !w.Hours.Contains(offset) {
		return false
	}
	for _, b := range w.Breaks {
		if b.Contains(offset) {
			return false
		}
	}
	return true
}

// nextOpen returns the first working offset at or after offset within the
// window. Breaks are sorted, so adjacent breaks chain in a single pass.
func (w Window) nextOpen(offset time.Duration) (time.Duration, bool) {
	cur := maxDuration(offset, w.Hours.Start.Offset())
	for _, b := range w.Breaks {
		if b.Contains(cur) {
			cur = b.End.Offset()
		}
	}
	if cur >= w.Hours.End.Offset() {
		return 0, false
	}
	return cur, true
}

// available returns the working time left between offset and window end.
func (w Window) available(offset time.Duration) time.Duration {
	end := w.Hours.End.Offset()
	from := maxDuration(offset, w.Hours.Start.Offset())
	if from >= end {
		return 0
	}
	left := end - from
	for _, b := range w.Breaks {
		left -= b.Overlap(from, end)
	}
	return left
}

// advance consumes need working time starting at offset and returns the
// landing offset. A landing that coincides with a break start stays there;
// only time strictly beyond it is carried past the break. Callers guarantee
// need <= available(offset).
func (w Window) advance(offset, need time.Duration) time.Duration {
	cur := offset
	for _, b := range w.Breaks {
		if b.End.Offset() <= cur {
			continue
		}
		if b.Contains(cur) {
			cur = b.End.Offset()
			continue
		}
		gap := b.Start.Offset() - cur
		if need <= gap {
			return cur + need
		}
		need -= gap
		cur = b.End.Offset()
	}
	return cur + need
}

// ResolveDay returns the effective window for a weekday, or false when the
// day is not a working day. It fails on malformed configuration.
func ResolveDay(weekday time.Weekday, cfg domain.OperationalHours) (Window, bool, error) {
	if cfg.RoundTheClock() {
		return fullDay, true, nil
	}
	return compileDay(weekday, cfg)
}

func compileDay(weekday time.Weekday, cfg domain.OperationalHours) (Window, bool, error) {
	day := cfg.Day(weekday)
	if !day.Enabled || day.Kind == domain.ScheduleKindUnset || day.Kind == "" {
		return Window{}, false, nil
	}

	window := cfg.StandardWindow
	breaks := cfg.StandardBreaks
	if day.Kind == domain.ScheduleKindCustom {
		if day.CustomWindow != nil {
			if day.CustomWindow.Start != "" {
				window.Start = day.CustomWindow.Start
			}
			if day.CustomWindow.End != "" {
				window.End = day.CustomWindow.End
			}
		}
		breaks = day.Breaks
	}

	hours, err := parseRange(window)
	if err != nil {
		return Window{}, false, fmt.Errorf("%s window: %w", weekday, err)
	}
	if hours.End <= hours.Start {
		return Window{}, false, fmt.Errorf("%w: %s window %s ends before it starts", ErrInvalidSchedule, weekday, hours)
	}

	parsed := make([]Interval, 0, len(breaks))
	for _, b := range breaks {
		iv, err := parseRange(b)
		if err != nil {
			return Window{}, false, fmt.Errorf("%s break: %w", weekday, err)
		}
		if iv.End <= iv.Start {
			return Window{}, false, fmt.Errorf("%w: %s break %s ends before it starts", ErrInvalidSchedule, weekday, iv)
		}
		if iv.Start < hours.Start || iv.End > hours.End {
			return Window{}, false, fmt.Errorf("%w: %s break %s outside window %s", ErrInvalidSchedule, weekday, iv, hours)
		}
		parsed = append(parsed, iv)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Start < parsed[j].Start })
	for i := 1; i < len(parsed); i++ {
		if parsed[i].Start < parsed[i-1].End {
			return Window{}, false, fmt.Errorf("%w: %s breaks %s and %s overlap", ErrInvalidSchedule, weekday, parsed[i-1], parsed[i])
		}
	}

	return Window{Hours: hours, Breaks: parsed}, true, nil
}

func parseRange(r domain.TimeRange) (Interval, error) {
	start, err := ParseClock(r.Start)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseClock(r.End)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

type namedRange struct {
	field string
	r     domain.TimeRange
}

// validateTimeStrings checks every non-empty time string in the configuration,
// including ones that no enabled day currently uses.
func validateTimeStrings(cfg domain.OperationalHours) error {
	ranges := []namedRange{{"standard_window", cfg.StandardWindow}}
	for i, b := range cfg.StandardBreaks {
		ranges = append(ranges, namedRange{fmt.Sprintf("standard_breaks[%d]", i), b})
	}
	for i, day := range cfg.WorkingDays {
		name := time.Weekday(i).String()
		if day.CustomWindow != nil {
			ranges = append(ranges, namedRange{name + ".custom_window", *day.CustomWindow})
		}
		for j, b := range day.Breaks {
			ranges = append(ranges, namedRange{fmt.Sprintf("%s.breaks[%d]", name, j), b})
		}
	}
	for _, item := range ranges {
		for _, v := range []struct{ suffix, value string }{{".start", item.r.Start}, {".end", item.r.End}} {
			if v.value == "" {
				continue
			}
			if _, err := ParseClock(v.value); err != nil {
				return fmt.Errorf("%s%s: %w", item.field, v.suffix, err)
			}
		}
	}
	return nil
}
