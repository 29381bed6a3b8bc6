package sla

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

type civilDate struct {
	year  int
	month time.Month
	day   int
}

type monthDay struct {
	month time.Month
	day   int
}

// IsExclusionDay reports whether any active rule excludes the civil date of date.
// The date is read in its own location; rule dates are read in theirs.
func IsExclusionDay(date time.Time, rules []domain.Holiday) bool {
	y, m, d := date.Date()
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		ry, rm, rd := rule.Date.Date()
		if rm != m || rd != d {
			continue
		}
		if rule.IsRecurring || ry == y {
			return true
		}
	}
	return false
}

// holidayIndex is the precompiled form of a holiday list. Recurring rules
// sharing a month and day collapse into one entry.
type holidayIndex struct {
	exact     map[civilDate]string
	recurring map[monthDay]string
}

func newHolidayIndex(rules []domain.Holiday) holidayIndex {
	idx := holidayIndex{
		exact:     make(map[civilDate]string),
		recurring: make(map[monthDay]string),
	}
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		y, m, d := rule.Date.Date()
		if rule.IsRecurring {
			if _, ok := idx.recurring[monthDay{m, d}]; !ok {
				idx.recurring[monthDay{m, d}] = rule.Name
			}
			continue
		}
		if _, ok := idx.exact[civilDate{y, m, d}]; !ok {
			idx.exact[civilDate{y, m, d}] = rule.Name
		}
	}
	return idx
}

// lookup returns the holiday name excluding the civil date, if any.
func (idx holidayIndex) lookup(date time.Time) (string, bool) {
	y, m, d := date.Date()
	if name, ok := idx.exact[civilDate{y, m, d}]; ok {
		return name, true
	}
	name, ok := idx.recurring[monthDay{m, d}]
	return name, ok
}

func (idx holidayIndex) excludes(date time.Time) bool {
	_, ok := idx.lookup(date)
	return ok
}

func (idx holidayIndex) size() int {
	return len(idx.exact) + len(idx.recurring)
}
