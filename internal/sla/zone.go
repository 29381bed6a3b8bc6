package sla

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Zone is the single fixed-offset civil time used for every calendar decision.
// Timestamps are assumed to be persisted in UTC.
type Zone struct {
	loc *time.Location
}

// FixedZone builds a zone east of UTC by the given number of seconds.
func FixedZone(name string, offsetSeconds int) Zone {
	return Zone{loc: time.FixedZone(name, offsetSeconds)}
}

// UTCZone is the zero-offset zone.
func UTCZone() Zone {
	return Zone{loc: time.UTC}
}

// ParseOffset parses "+07:00", "-03:30", "+0700" or "Z" into a Zone.
func ParseOffset(s string) (Zone, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Z" || strings.EqualFold(s, "UTC") {
		return UTCZone(), nil
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return Zone{}, fmt.Errorf("invalid utc offset %q", s)
	}
	body := strings.ReplaceAll(s[1:], ":", "")
	if len(body) != 4 {
		return Zone{}, fmt.Errorf("invalid utc offset %q", s)
	}
	hours, err := strconv.Atoi(body[:2])
	if err != nil {
		return Zone{}, fmt.Errorf("invalid utc offset %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(body[2:])
	if err != nil {
		return Zone{}, fmt.Errorf("invalid utc offset %q: %w", s, err)
	}
	if hours > 14 || minutes > 59 {
		return Zone{}, fmt.Errorf("invalid utc offset %q", s)
	}
	return FixedZone("UTC"+s, sign*(hours*3600+minutes*60)), nil
}

// Location exposes the underlying time.Location.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// Local converts an instant to local civil time.
func (z Zone) Local(t time.Time) time.Time {
	return t.In(z.Location())
}

// UTC converts an instant back to UTC.
func (z Zone) UTC(t time.Time) time.Time {
	return t.UTC()
}

// Midnight returns the start of the local civil day containing t.
func (z Zone) Midnight(t time.Time) time.Time {
	local := z.Local(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, z.Location())
}

// SinceMidnight returns how far into its local civil day t lies.
func (z Zone) SinceMidnight(t time.Time) time.Duration {
	return t.Sub(z.Midnight(t))
}

// Date builds a local instant from civil components.
func (z Zone) Date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, z.Location())
}

func (z Zone) String() string {
	return z.Location().String()
}
