package sla

import (
	"fmt"
	"math"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// Duration is a required service time, either flat working hours or
// day/hour/minute components. Components are converted to flat hours
// before accumulation.
type Duration struct {
	hours      float64
	days       int
	hrs        int
	mins       int
	structured bool
}

// FlatHours builds a duration already expressed in working hours.
func FlatHours(hours float64) Duration {
	return Duration{hours: hours}
}

// Components builds a duration authored as working days, hours and minutes.
func Components(days, hours, minutes int) Duration {
	return Duration{days: days, hrs: hours, mins: minutes, structured: true}
}

// IsComponents reports whether the duration was authored as components.
func (d Duration) IsComponents() bool {
	return d.structured
}

// WorkingHours returns the flat working hours, converting components with c.
func (d Duration) WorkingHours(c *Calculator) (float64, error) {
	if !d.structured {
		switch {
		case math.IsNaN(d.hours) || math.IsInf(d.hours, 0):
			return 0, fmt.Errorf("%w: %v hours", ErrDurationOutOfRange, d.hours)
		case d.hours < 0:
			return 0, fmt.Errorf("%w: %v hours", ErrNegativeDuration, d.hours)
		case d.hours > maxWorkingTime.Hours():
			return 0, fmt.Errorf("%w: %v hours exceeds %v", ErrDurationOutOfRange, d.hours, maxWorkingTime.Hours())
		}
		return d.hours, nil
	}
	return c.ComponentsToWorkingHours(d.days, d.hrs, d.mins)
}

// Minutes returns the working time to accumulate, rounded to whole minutes.
func (d Duration) Minutes(c *Calculator) (time.Duration, error) {
	hours, err := d.WorkingHours(c)
	if err != nil {
		return 0, err
	}
	return time.Duration(math.Round(hours*60)) * time.Minute, nil
}

func (d Duration) String() string {
	if d.structured {
		return fmt.Sprintf("%dd %dh %dm", d.days, d.hrs, d.mins)
	}
	return fmt.Sprintf("%gh", d.hours)
}

// ComputeDueDate builds a calculator for the snapshot and computes the due
// instant in UTC.
func ComputeDueDate(start time.Time, d Duration, cfg domain.OperationalHours, holidays []domain.Holiday, zone Zone) (time.Time, error) {
	c, err := NewCalculator(cfg, holidays, zone)
	if err != nil {
		return time.Time{}, err
	}
	return c.ComputeDueDate(start, d)
}

// IsWorkingInstant reports whether t is working time under the snapshot.
func IsWorkingInstant(t time.Time, cfg domain.OperationalHours, holidays []domain.Holiday, zone Zone) (bool, error) {
	c, err := NewCalculator(cfg, holidays, zone)
	if err != nil {
		return false, err
	}
	return c.IsWorkingInstant(t), nil
}

// ComponentsToWorkingHours converts duration components under cfg.
func ComponentsToWorkingHours(days, hours, minutes int, cfg domain.OperationalHours) (float64, error) {
	c, err := NewCalculator(cfg, nil, UTCZone())
	if err != nil {
		return 0, err
	}
	return c.ComponentsToWorkingHours(days, hours, minutes)
}
