package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// CalendarSeed is the initial business calendar installed into an empty database.
type CalendarSeed struct {
	Hours    domain.OperationalHours
	Holidays []domain.Holiday
}

type calendarFile struct {
	Mode           domain.OperatingMode `yaml:"mode"`
	StandardWindow domain.TimeRange     `yaml:"standard_window"`
	StandardBreaks []domain.TimeRange   `yaml:"standard_breaks"`
	WorkingDays    []workingDayEntry    `yaml:"working_days"`
	Holidays       []holidayEntry       `yaml:"holidays"`
}

type workingDayEntry struct {
	Day          string              `yaml:"day"`
	Enabled      bool                `yaml:"enabled"`
	Kind         domain.ScheduleKind `yaml:"schedule_kind"`
	CustomWindow *domain.TimeRange   `yaml:"custom_window"`
	Breaks       []domain.TimeRange  `yaml:"breaks"`
}

type holidayEntry struct {
	Name      string `yaml:"name"`
	Date      string `yaml:"date"`
	Recurring bool   `yaml:"recurring"`
	Active    *bool  `yaml:"active"`
}

// LoadCalendarSeed reads a YAML calendar file. ${ENV_VAR} placeholders are
// expanded before parsing. Weekdays missing from the file stay disabled.
func LoadCalendarSeed(path string) (*CalendarSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCalendarSeed([]byte(os.ExpandEnv(string(data))))
}

// ParseCalendarSeed decodes an already expanded YAML calendar document.
func ParseCalendarSeed(data []byte) (*CalendarSeed, error) {
	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode calendar seed: %w", err)
	}

	hours := domain.OperationalHours{
		Mode:           file.Mode,
		StandardWindow: file.StandardWindow,
		StandardBreaks: file.StandardBreaks,
	}
	if hours.Mode == "" {
		hours.Mode = domain.OperatingModeStandard
	}
	for i := range hours.WorkingDays {
		hours.WorkingDays[i] = domain.WorkingDay{Weekday: time.Weekday(i), Kind: domain.ScheduleKindUnset}
	}
	for _, entry := range file.WorkingDays {
		weekday, err := parseWeekday(entry.Day)
		if err != nil {
			return nil, err
		}
		kind := entry.Kind
		if kind == "" {
			kind = domain.ScheduleKindStandard
		}
		hours.WorkingDays[weekday] = domain.WorkingDay{
			Weekday:      weekday,
			Enabled:      entry.Enabled,
			Kind:         kind,
			CustomWindow: entry.CustomWindow,
			Breaks:       entry.Breaks,
		}
	}

	seed := &CalendarSeed{Hours: hours}
	for _, h := range file.Holidays {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: invalid date %q", h.Name, h.Date)
		}
		active := true
		if h.Active != nil {
			active = *h.Active
		}
		seed.Holidays = append(seed.Holidays, domain.Holiday{
			Name:        h.Name,
			Date:        date,
			IsRecurring: h.Recurring,
			IsActive:    active,
		})
	}
	return seed, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
