package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/cache"
	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// CalendarProvider hands out a calculator for the current calendar.
type CalendarProvider interface {
	Calculator(ctx context.Context) (*sla.Calculator, error)
}

// CalendarService owns operational hours and holidays and builds calculators from them.
type CalendarService struct {
	hours      repository.OperationalHoursRepository
	holidays   repository.HolidayRepository
	cache      cache.CalendarCache
	zone       sla.Zone
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// CalendarDependencies bundles collaborators for the calendar service.
type CalendarDependencies struct {
	HoursRepo   repository.OperationalHoursRepository
	HolidayRepo repository.HolidayRepository
	Cache       cache.CalendarCache
	Zone        sla.Zone
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// HolidayInput describes a holiday create or update request.
type HolidayInput struct {
	Name        string
	Date        time.Time
	IsRecurring bool
	IsActive    bool
}

// WorkingStatus answers "is this instant working time".
type WorkingStatus struct {
	At            time.Time
	Local         time.Time
	Working       bool
	NextWorkingAt time.Time
	Holiday       string
}

// NewCalendarService constructs the service.
func NewCalendarService(deps CalendarDependencies) *CalendarService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		hours:      deps.HoursRepo,
		holidays:   deps.HolidayRepo,
		cache:      deps.Cache,
		zone:       deps.Zone,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Zone returns the civil zone calculators are built for.
func (s *CalendarService) Zone() sla.Zone {
	return s.zone
}

// Snapshot returns the current operational hours and active holidays,
// served from the cache when possible.
func (s *CalendarService) Snapshot(ctx context.Context) (*cache.CalendarSnapshot, error) {
	if s.cache != nil {
		if snapshot, ok := s.cache.Get(ctx); ok {
			return snapshot, nil
		}
	}

	hours, err := s.hours.Get(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDomainError("SLA_CALENDAR_MISCONFIGURED", "operational hours have not been configured", http.StatusUnprocessableEntity, nil)
		}
		return nil, err
	}
	holidays, err := s.holidays.List(ctx, true)
	if err != nil {
		return nil, err
	}

	snapshot := &cache.CalendarSnapshot{Hours: *hours, Holidays: holidays, LoadedAt: s.now().UTC()}
	if s.cache != nil {
		s.cache.Set(ctx, snapshot)
	}
	return snapshot, nil
}

// Calculator builds a calculator from the current snapshot.
func (s *CalendarService) Calculator(ctx context.Context) (*sla.Calculator, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	calc, err := sla.NewCalculator(snapshot.Hours, snapshot.Holidays, s.zone)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return calc, nil
}

// OperationalHours returns the stored configuration, bypassing the cache.
func (s *CalendarService) OperationalHours(ctx context.Context) (*domain.OperationalHours, error) {
	hours, err := s.hours.Get(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("operational hours", nil)
		}
		return nil, err
	}
	return hours, nil
}

// UpdateOperationalHours validates and replaces the configuration. A
// configuration the calculator rejects is never persisted.
func (s *CalendarService) UpdateOperationalHours(ctx context.Context, actor *domain.Technician, hours domain.OperationalHours) (*domain.OperationalHours, error) {
	if hours.Mode == "" {
		hours.Mode = domain.OperatingModeStandard
	}
	if hours.Mode != domain.OperatingModeStandard && hours.Mode != domain.OperatingModeRoundTheClock {
		return nil, apperrors.NewValidationError("unknown operating mode", map[string]any{"mode": hours.Mode})
	}
	for i := range hours.WorkingDays {
		hours.WorkingDays[i].Weekday = time.Weekday(i)
		if hours.WorkingDays[i].Kind == "" {
			hours.WorkingDays[i].Kind = domain.ScheduleKindUnset
		}
	}

	calc, err := sla.NewCalculator(hours, nil, s.zone)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !calc.RoundTheClock() && len(calc.WorkingDays()) == 0 {
		return nil, apperrors.MapError(sla.ErrNoWorkingDaysConfigured)
	}

	if err := s.hours.Save(ctx, &hours); err != nil {
		return nil, err
	}
	s.logger.Info("operational hours updated",
		zap.String("mode", string(hours.Mode)),
		zap.Int("working_days", len(calc.WorkingDays())),
		zap.String("technician_id", actorID(actor)))
	s.calendarChanged(ctx, actor, "operational_hours_updated")
	return &hours, nil
}

// ListHolidays returns holidays ordered by date.
func (s *CalendarService) ListHolidays(ctx context.Context, activeOnly bool) ([]domain.Holiday, error) {
	return s.holidays.List(ctx, activeOnly)
}

// CreateHoliday stores a new exclusion day.
func (s *CalendarService) CreateHoliday(ctx context.Context, actor *domain.Technician, input HolidayInput) (*domain.Holiday, error) {
	if err := validateHoliday(input); err != nil {
		return nil, err
	}
	holiday := &domain.Holiday{
		Name:        strings.TrimSpace(input.Name),
		Date:        civilDate(input.Date),
		IsRecurring: input.IsRecurring,
		IsActive:    input.IsActive,
	}
	if err := s.holidays.Create(ctx, holiday); err != nil {
		return nil, err
	}
	s.calendarChanged(ctx, actor, "holiday_created")
	return holiday, nil
}

// UpdateHoliday replaces a holiday's fields.
func (s *CalendarService) UpdateHoliday(ctx context.Context, actor *domain.Technician, id string, input HolidayInput) (*domain.Holiday, error) {
	if err := validateHoliday(input); err != nil {
		return nil, err
	}
	holiday, err := s.holidays.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "holiday", id)
	}
	holiday.Name = strings.TrimSpace(input.Name)
	holiday.Date = civilDate(input.Date)
	holiday.IsRecurring = input.IsRecurring
	holiday.IsActive = input.IsActive
	if err := s.holidays.Update(ctx, holiday); err != nil {
		return nil, notFound(err, "holiday", id)
	}
	s.calendarChanged(ctx, actor, "holiday_updated")
	return holiday, nil
}

// DeleteHoliday removes a holiday.
func (s *CalendarService) DeleteHoliday(ctx context.Context, actor *domain.Technician, id string) error {
	if err := s.holidays.Delete(ctx, id); err != nil {
		return notFound(err, "holiday", id)
	}
	s.calendarChanged(ctx, actor, "holiday_deleted")
	return nil
}

// IsWorkingNow evaluates the predicate at the given instant, plus when work resumes.
func (s *CalendarService) IsWorkingNow(ctx context.Context, at time.Time) (*WorkingStatus, error) {
	if at.IsZero() {
		at = s.now()
	}
	calc, err := s.Calculator(ctx)
	if err != nil {
		return nil, err
	}
	status := &WorkingStatus{
		At:      at.UTC(),
		Local:   calc.Zone().Local(at),
		Working: calc.IsWorkingInstant(at),
	}
	if name, ok := calc.HolidayName(at); ok {
		status.Holiday = name
	}
	next, err := calc.NextWorkingInstant(at)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	status.NextWorkingAt = calc.Zone().UTC(next)
	return status, nil
}

// PreviewDueDate computes a due date without persisting anything.
func (s *CalendarService) PreviewDueDate(ctx context.Context, start time.Time, d sla.Duration) (time.Time, error) {
	calc, err := s.Calculator(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return computeDueDate(calc, s.metrics, start, d)
}

// ConvertDuration turns working days, hours and minutes into flat working hours.
func (s *CalendarService) ConvertDuration(ctx context.Context, days, hours, minutes int) (float64, error) {
	calc, err := s.Calculator(ctx)
	if err != nil {
		return 0, err
	}
	converted, err := calc.ComponentsToWorkingHours(days, hours, minutes)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return converted, nil
}

// SeedIfEmpty installs the seed calendar when no operational hours exist yet.
func (s *CalendarService) SeedIfEmpty(ctx context.Context, seed *config.CalendarSeed) (bool, error) {
	if seed == nil {
		return false, nil
	}
	if _, err := s.hours.Get(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hours := seed.Hours
	if _, err := sla.NewCalculator(hours, seed.Holidays, s.zone); err != nil {
		return false, err
	}
	if err := s.hours.Save(ctx, &hours); err != nil {
		return false, err
	}
	for i := range seed.Holidays {
		holiday := seed.Holidays[i]
		holiday.Date = civilDate(holiday.Date)
		if err := s.holidays.Create(ctx, &holiday); err != nil {
			return false, err
		}
	}
	s.logger.Info("calendar seeded", zap.Int("holidays", len(seed.Holidays)))
	s.calendarChanged(ctx, nil, "seeded")
	return true, nil
}

func (s *CalendarService) calendarChanged(ctx context.Context, actor *domain.Technician, reason string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
		}
	}
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCalendarUpdated,
		Actor:     actorFor(actor),
		Timestamp: s.now(),
		Payload:   events.CalendarUpdatedPayload{Reason: reason},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("calendar_updated handlers failed", zap.Error(err))
	}
}

// computeDueDate runs the calculator and records the outcome.
func computeDueDate(calc *sla.Calculator, metrics *observability.Metrics, start time.Time, d sla.Duration) (time.Time, error) {
	began := time.Now()
	due, err := calc.ComputeDueDate(start, d)
	took := time.Since(began)

	switch {
	case err == nil:
		metrics.ObserveDueDate(observability.OutcomeOK, took)
		return due, nil
	case errors.Is(err, sla.ErrNoWorkingTimeConfigured), errors.Is(err, sla.ErrNoWorkingDaysConfigured):
		metrics.ObserveDueDate(observability.OutcomeCalendar, took)
	default:
		metrics.ObserveDueDate(observability.OutcomeInvalid, took)
	}
	return time.Time{}, apperrors.MapError(err)
}

func validateHoliday(input HolidayInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if input.Date.IsZero() {
		details["date"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid holiday", details)
	}
	return nil
}

// civilDate drops the clock and zone, keeping the calendar date as written.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func actorFor(tech *domain.Technician) events.Actor {
	if tech == nil {
		return events.SystemActor
	}
	id := tech.ID
	return events.Actor{Type: domain.ActorTypeTechnician, TechnicianID: &id}
}

func actorID(tech *domain.Technician) string {
	if tech == nil {
		return ""
	}
	return tech.ID
}
