package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// SLAPolicyService manages per-priority response and resolution targets.
type SLAPolicyService struct {
	policies repository.SLAPolicyRepository
	calendar CalendarProvider
	logger   *zap.Logger
}

// SLAPolicyInput describes a policy create or update request.
type SLAPolicyInput struct {
	Name       string
	Priority   domain.TicketPriority
	Response   domain.DurationSpec
	Resolution domain.DurationSpec
	IsActive   bool
}

// NewSLAPolicyService constructs the service.
func NewSLAPolicyService(policies repository.SLAPolicyRepository, calendar CalendarProvider, logger *zap.Logger) *SLAPolicyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAPolicyService{policies: policies, calendar: calendar, logger: logger}
}

// RegisterHandlers keeps derived hours in step with calendar edits.
func (s *SLAPolicyService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventCalendarUpdated, func(ctx context.Context, _ events.Event) error {
		_, err := s.RecomputeDerivedHours(ctx)
		return err
	})
}

// List returns every policy.
func (s *SLAPolicyService) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	return s.policies.List(ctx)
}

// Create stores a policy after deriving its flat working hours.
func (s *SLAPolicyService) Create(ctx context.Context, input SLAPolicyInput) (*domain.SLAPolicy, error) {
	if err := validatePolicy(input); err != nil {
		return nil, err
	}
	if input.IsActive {
		if err := s.ensurePriorityFree(ctx, input.Priority, ""); err != nil {
			return nil, err
		}
	}

	policy := &domain.SLAPolicy{
		Name:       strings.TrimSpace(input.Name),
		Priority:   input.Priority,
		Response:   input.Response,
		Resolution: input.Resolution,
		IsActive:   input.IsActive,
	}
	if err := s.derive(ctx, policy); err != nil {
		return nil, err
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// Update replaces a policy's fields.
func (s *SLAPolicyService) Update(ctx context.Context, id string, input SLAPolicyInput) (*domain.SLAPolicy, error) {
	if err := validatePolicy(input); err != nil {
		return nil, err
	}
	policy, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "sla policy", id)
	}
	if input.IsActive {
		if err := s.ensurePriorityFree(ctx, input.Priority, id); err != nil {
			return nil, err
		}
	}

	policy.Name = strings.TrimSpace(input.Name)
	policy.Priority = input.Priority
	policy.Response = input.Response
	policy.Resolution = input.Resolution
	policy.IsActive = input.IsActive
	if err := s.derive(ctx, policy); err != nil {
		return nil, err
	}
	if err := s.policies.Update(ctx, policy); err != nil {
		return nil, notFound(err, "sla policy", id)
	}
	return policy, nil
}

// RecomputeDerivedHours refreshes the stored flat hours of every policy
// against the current calendar and returns how many changed.
func (s *SLAPolicyService) RecomputeDerivedHours(ctx context.Context) (int, error) {
	calc, err := s.calendar.Calculator(ctx)
	if err != nil {
		return 0, err
	}
	policies, err := s.policies.List(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range policies {
		policy := &policies[i]
		before := [2]float64{policy.Response.WorkingHours, policy.Resolution.WorkingHours}
		if err := deriveWith(calc, policy); err != nil {
			s.logger.Warn("cannot derive policy hours", zap.String("policy_id", policy.ID), zap.Error(err))
			continue
		}
		if before == [2]float64{policy.Response.WorkingHours, policy.Resolution.WorkingHours} {
			continue
		}
		if err := s.policies.Update(ctx, policy); err != nil {
			return changed, err
		}
		changed++
	}
	if changed > 0 {
		s.logger.Info("sla policy hours recomputed", zap.Int("changed", changed))
	}
	return changed, nil
}

func (s *SLAPolicyService) derive(ctx context.Context, policy *domain.SLAPolicy) error {
	calc, err := s.calendar.Calculator(ctx)
	if err != nil {
		return err
	}
	if err := deriveWith(calc, policy); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func deriveWith(calc *sla.Calculator, policy *domain.SLAPolicy) error {
	for _, spec := range []*domain.DurationSpec{&policy.Response, &policy.Resolution} {
		hours, err := calc.ComponentsToWorkingHours(spec.Days, spec.Hours, spec.Minutes)
		if err != nil {
			return err
		}
		spec.WorkingHours = math.Round(hours*10000) / 10000
	}
	return nil
}

func (s *SLAPolicyService) ensurePriorityFree(ctx context.Context, priority domain.TicketPriority, selfID string) error {
	existing, err := s.policies.GetActiveByPriority(ctx, priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return apperrors.NewConflict("an active policy already covers this priority", map[string]any{
		"priority":  priority,
		"policy_id": existing.ID,
	})
}

func validatePolicy(input SLAPolicyInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if !input.Priority.Valid() {
		details["priority"] = "must be one of LOW, MEDIUM, HIGH, URGENT"
	}
	for field, spec := range map[string]domain.DurationSpec{"response": input.Response, "resolution": input.Resolution} {
		if spec.Days < 0 || spec.Hours < 0 || spec.Minutes < 0 {
			details[field] = "components must not be negative"
		}
	}
	if input.Resolution.IsZero() {
		details["resolution"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid sla policy", details)
	}
	return nil
}
