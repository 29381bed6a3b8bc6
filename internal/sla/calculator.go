package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

const (
	// maxLocatorDays bounds the forward scan for the next working day.
	maxLocatorDays = 366
	// maxAccumulatorDays bounds the number of days a single duration may span.
	maxAccumulatorDays = 5000
	// maxWorkingTime is the most working time the accumulator can ever place.
	maxWorkingTime = maxAccumulatorDays * 24 * time.Hour
)

// Calculator answers business-hours questions against one immutable snapshot
// of operational hours and holidays. It is safe for concurrent use.
type Calculator struct {
	zone          Zone
	roundTheClock bool
	days          [7]Window
	working       [7]bool
	holidays      holidayIndex
}

// NewCalculator validates the configuration and precompiles the weekday table.
func NewCalculator(cfg domain.OperationalHours, holidays []domain.Holiday, zone Zone) (*Calculator, error) {
	c := &Calculator{
		zone:          zone,
		roundTheClock: cfg.RoundTheClock(),
	}
	if c.roundTheClock {
		for i := range c.days {
			c.days[i] = fullDay
			c.working[i] = true
		}
		return c, nil
	}

	if err := validateTimeStrings(cfg); err != nil {
		return nil, err
	}
	for i := range c.days {
		window, ok, err := compileDay(time.Weekday(i), cfg)
		if err != nil {
			return nil, err
		}
		c.days[i] = window
		c.working[i] = ok
	}
	c.holidays = newHolidayIndex(holidays)
	return c, nil
}

// Zone returns the civil zone used by the calculator.
func (c *Calculator) Zone() Zone {
	return c.zone
}

// RoundTheClock reports whether the calendar is bypassed entirely.
func (c *Calculator) RoundTheClock() bool {
	return c.roundTheClock
}

// ResolveDay returns the window for a weekday, or false for a non-working day.
// The returned window shares nothing with the calculator.
func (c *Calculator) ResolveDay(weekday time.Weekday) (Window, bool) {
	i := int(weekday) % 7
	if !c.working[i] {
		return Window{}, false
	}
	w := c.days[i]
	w.Breaks = append([]Interval(nil), w.Breaks...)
	return w, true
}

// IsExclusionDay reports whether the local civil date of t is a holiday.
// Holidays never apply in round-the-clock mode.
func (c *Calculator) IsExclusionDay(t time.Time) bool {
	if c.roundTheClock {
		return false
	}
	return c.holidays.excludes(c.zone.Local(t))
}

// HolidayName returns the name of the holiday covering t, if any.
func (c *Calculator) HolidayName(t time.Time) (string, bool) {
	if c.roundTheClock {
		return "", false
	}
	return c.holidays.lookup(c.zone.Local(t))
}

// dayWindow resolves the window of the civil day starting at midnight,
// treating holidays as non-working.
func (c *Calculator) dayWindow(midnight time.Time) (Window, bool) {
	if c.holidays.excludes(midnight) {
		return Window{}, false
	}
	i := int(midnight.Weekday())
	return c.days[i], c.working[i]
}

// IsWorkingInstant reports whether t falls inside a working window, outside
// every break, on a day that is not excluded. Breaks are half-open: their
// start is not working time, their end is.
func (c *Calculator) IsWorkingInstant(t time.Time) bool {
	if c.roundTheClock {
		return true
	}
	midnight := c.zone.Midnight(t)
	window, ok := c.dayWindow(midnight)
	if !ok {
		return false
	}
	return window.IsOpen(t.Sub(midnight))
}

// NextWorkingInstant returns t when it is already working time, otherwise the
// next instant at which working time resumes. The result is in local time.
func (c *Calculator) NextWorkingInstant(t time.Time) (time.Time, error) {
	local := c.zone.Local(t)
	if c.IsWorkingInstant(local) {
		return local, nil
	}

	midnight := c.zone.Midnight(local)
	if window, ok := c.dayWindow(midnight); ok {
		if off, ok := window.nextOpen(local.Sub(midnight)); ok {
			return midnight.Add(off), nil
		}
	}

	for i := 0; i < maxLocatorDays; i++ {
		midnight = midnight.AddDate(0, 0, 1)
		window, ok := c.dayWindow(midnight)
		if !ok {
			continue
		}
		if off, ok := window.nextOpen(0); ok {
			return midnight.Add(off), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: nothing within %d days after %s", ErrNoWorkingDaysConfigured, maxLocatorDays, local.Format(time.RFC3339))
}

// AddWorkingDuration walks forward from start consuming required working time
// and returns the local landing instant. A start outside working time is first
// moved to the next working instant.
func (c *Calculator) AddWorkingDuration(start time.Time, required time.Duration) (time.Time, error) {
	if required < 0 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNegativeDuration, required)
	}
	if required > maxWorkingTime {
		return time.Time{}, fmt.Errorf("%w: %s exceeds %s", ErrDurationOutOfRange, required, maxWorkingTime)
	}
	local := c.zone.Local(start)
	if required == 0 {
		return local, nil
	}
	if c.roundTheClock {
		return local.Add(required), nil
	}

	cursor, err := c.NextWorkingInstant(local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrNoWorkingTimeConfigured, err)
	}

	for i := 0; i < maxAccumulatorDays; i++ {
		midnight := c.zone.Midnight(cursor)
		window, _ := c.dayWindow(midnight)
		offset := cursor.Sub(midnight)

		remaining := window.available(offset)
		if required <= remaining {
			return midnight.Add(window.advance(offset, required)), nil
		}
		required -= remaining

		cursor, err = c.NextWorkingInstant(midnight.Add(window.Hours.End.Offset()))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %w", ErrNoWorkingTimeConfigured, err)
		}
	}
	return time.Time{}, fmt.Errorf("%w: duration spans more than %d days", ErrNoWorkingTimeConfigured, maxAccumulatorDays)
}

// WorkingTimeBetween returns the working time elapsed between from and to.
func (c *Calculator) WorkingTimeBetween(from, to time.Time) time.Duration {
	if !to.After(from) {
		return 0
	}
	if c.roundTheClock {
		return to.Sub(from)
	}

	var total time.Duration
	midnight := c.zone.Midnight(from)
	for i := 0; i < maxAccumulatorDays && midnight.Before(to); i++ {
		next := midnight.AddDate(0, 0, 1)
		if window, ok := c.dayWindow(midnight); ok {
			lo := maxDuration(from.Sub(midnight), 0)
			hi := minDuration(to.Sub(midnight), 24*time.Hour)
			total += window.available(lo) - window.available(maxDuration(lo, hi))
		}
		midnight = next
	}
	return total
}

// WorkingDays returns the weekdays that have a working window, Sunday first.
func (c *Calculator) WorkingDays() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for i, ok := range c.working {
		if ok {
			days = append(days, time.Weekday(i))
		}
	}
	return days
}

// ComponentsToWorkingHours converts days, hours and minutes into flat working
// hours. Each day counts as the net working time of the next enabled weekday,
// cycling Sunday through Saturday from the first enabled one.
func (c *Calculator) ComponentsToWorkingHours(days, hours, minutes int) (float64, error) {
	if days < 0 || hours < 0 || minutes < 0 {
		return 0, fmt.Errorf("%w: %dd %dh %dm", ErrNegativeDuration, days, hours, minutes)
	}
	if days > maxAccumulatorDays || hours > maxAccumulatorDays*24 || minutes > maxAccumulatorDays*24*60 {
		return 0, fmt.Errorf("%w: %dd %dh %dm", ErrDurationOutOfRange, days, hours, minutes)
	}
	enabled := c.WorkingDays()
	if days > 0 && len(enabled) == 0 {
		return 0, ErrNoWorkingDaysConfigured
	}

	var total time.Duration
	if days > 0 {
		var week time.Duration
		for _, wd := range enabled {
			week += c.days[wd].Net()
		}
		total = time.Duration(days/len(enabled)) * week
		for _, wd := range enabled[:days%len(enabled)] {
			total += c.days[wd].Net()
		}
	}
	total += time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if total > maxWorkingTime {
		return 0, fmt.Errorf("%w: %dd %dh %dm is %s of working time", ErrDurationOutOfRange, days, hours, minutes, total)
	}
	return total.Minutes() / 60, nil
}

// ComputeDueDate normalizes the UTC start instant, accumulates the duration
// and returns the due instant in UTC.
func (c *Calculator) ComputeDueDate(start time.Time, d Duration) (time.Time, error) {
	required, err := d.Minutes(c)
	if err != nil {
		return time.Time{}, err
	}
	normalized, err := c.NextWorkingInstant(start)
	if err != nil {
		return time.Time{}, err
	}
	due, err := c.AddWorkingDuration(normalized, required)
	if err != nil {
		return time.Time{}, err
	}
	return c.zone.UTC(due), nil
}
