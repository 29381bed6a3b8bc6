package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows and their SLA deadlines.
type TicketService struct {
	tickets     repository.TicketRepository
	history     repository.TicketHistoryRepository
	policies    repository.SLAPolicyRepository
	technicians repository.TechnicianRepository
	calendar    CalendarProvider
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	HistoryRepo    repository.TicketHistoryRepository
	PolicyRepo     repository.SLAPolicyRepository
	TechnicianRepo repository.TechnicianRepository
	Calendar       CalendarProvider
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	RequesterEmail string
	Title          string
	Description    string
	Priority       domain.TicketPriority
	Tags           []string
	AssigneeID     *string
}

// TicketListFilter describes technician listing filters.
type TicketListFilter struct {
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Breached    *bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	DueBefore   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		history:     deps.HistoryRepo,
		policies:    deps.PolicyRepo,
		technicians: deps.TechnicianRepo,
		calendar:    deps.Calendar,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateTicket opens a ticket and stamps its due dates from the priority's policy.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Technician, input TicketCreateInput) (*domain.Ticket, error) {
	if err := validateTicketInput(input); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil {
		if err := s.ensureAssignable(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		ExternalKey:    generateTicketKey(),
		RequesterEmail: strings.ToLower(strings.TrimSpace(input.RequesterEmail)),
		AssigneeID:     input.AssigneeID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
		Tags:           input.Tags,
		CreatedAt:      s.now().UTC().Truncate(time.Second),
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.Tags == nil {
		ticket.Tags = []string{}
	}

	if err := s.applyPolicy(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload: events.TicketCreatedPayload{
			Priority:        ticket.Priority,
			Title:           ticket.Title,
			ResponseDueAt:   ticket.ResponseDueAt,
			ResolutionDueAt: ticket.ResolutionDueAt,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by ID.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "ticket", id)
	}
	return ticket, nil
}

// ListTickets returns tickets ordered by resolution deadline.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		AssigneeID:  filter.AssigneeID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Breached:    filter.Breached,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		DueBefore:   filter.DueBefore,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
}

// UpdateStatus moves a ticket through its lifecycle.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Technician, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}
	oldStatus := ticket.Status
	if newStatus == domain.TicketStatusClosed {
		now := s.now().UTC()
		ticket.ClosedAt = &now
	} else if ticket.ClosedAt != nil {
		ticket.ClosedAt = nil
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.record(ctx, actor, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus, "comment": comment})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// UpdatePriority changes priority and recomputes both deadlines from the
// ticket's creation instant under the new priority's policy.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.Technician, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !newPriority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewConflict("ticket is no longer running", map[string]any{"status": ticket.Status})
	}
	oldPriority := ticket.Priority
	oldDue := dueValues(ticket)

	ticket.Priority = newPriority
	if err := s.applyPolicy(ctx, ticket); err != nil {
		return nil, err
	}
	ticket.SLABreached = ticket.ResolutionDueAt != nil && ticket.ResolutionDueAt.Before(s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.record(ctx, actor, ticket.ID, domain.ChangeTypePriority,
		map[string]any{"priority": oldPriority},
		map[string]any{"priority": newPriority})
	s.record(ctx, actor, ticket.ID, domain.ChangeTypeDueDate, oldDue, dueValues(ticket))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority:     oldPriority,
			NewPriority:     newPriority,
			ResponseDueAt:   ticket.ResponseDueAt,
			ResolutionDueAt: ticket.ResolutionDueAt,
		},
	})
	return ticket, nil
}

// Assign sets or clears the assignee.
func (s *TicketService) Assign(ctx context.Context, actor *domain.Technician, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if assigneeID != nil {
		if err := s.ensureAssignable(ctx, *assigneeID); err != nil {
			return nil, err
		}
	}
	old := ticket.AssigneeID
	ticket.AssigneeID = assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.record(ctx, actor, ticket.ID, domain.ChangeTypeAssignee,
		map[string]any{"assignee_id": old},
		map[string]any{"assignee_id": assigneeID})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// History returns the ticket's audit trail.
func (s *TicketService) History(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	return s.history.ListByTicket(ctx, ticketID, nil)
}

// applyPolicy resolves the active policy for the ticket's priority and
// computes both due instants from the creation instant. Without a policy the
// ticket carries no deadlines.
func (s *TicketService) applyPolicy(ctx context.Context, ticket *domain.Ticket) error {
	ticket.PolicyID = nil
	ticket.ResponseDueAt = nil
	ticket.ResolutionDueAt = nil

	policy, err := s.policies.GetActiveByPriority(ctx, ticket.Priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("no active sla policy for priority", zap.String("priority", string(ticket.Priority)))
			return nil
		}
		return err
	}
	calc, err := s.calendar.Calculator(ctx)
	if err != nil {
		return err
	}

	start := ticket.CreatedAt
	if !policy.Response.IsZero() {
		due, err := computeDueDate(calc, s.metrics, start, durationOf(policy.Response))
		if err != nil {
			return err
		}
		ticket.ResponseDueAt = &due
	}
	if !policy.Resolution.IsZero() {
		due, err := computeDueDate(calc, s.metrics, start, durationOf(policy.Resolution))
		if err != nil {
			return err
		}
		ticket.ResolutionDueAt = &due
	}
	policyID := policy.ID
	ticket.PolicyID = &policyID
	return nil
}

func durationOf(spec domain.DurationSpec) sla.Duration {
	return sla.Components(spec.Days, spec.Hours, spec.Minutes)
}

func dueValues(ticket *domain.Ticket) map[string]any {
	return map[string]any{
		"response_due_at":   ticket.ResponseDueAt,
		"resolution_due_at": ticket.ResolutionDueAt,
	}
}

func (s *TicketService) ensureAssignable(ctx context.Context, technicianID string) error {
	tech, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		return notFound(err, "technician", technicianID)
	}
	if !tech.Active {
		return apperrors.NewValidationError("technician inactive", map[string]any{"assignee_id": technicianID})
	}
	return nil
}

func validateTicketInput(input TicketCreateInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.RequesterEmail)); err != nil {
		details["requester_email"] = "must be a valid email address"
	}
	if input.Priority != "" && !input.Priority.Valid() {
		details["priority"] = "must be one of LOW, MEDIUM, HIGH, URGENT"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket", details)
	}
	return nil
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// record writes an audit entry. History is best effort: the change itself is already stored.
func (s *TicketService) record(ctx context.Context, actor *domain.Technician, ticketID string, change domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: domain.ActorTypeSystem,
		ChangeType:    change,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	if actor != nil {
		id := actor.ID
		entry.ChangedByType = domain.ActorTypeTechnician
		entry.ChangedByID = &id
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("ticket history write failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:        {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress:  {domain.TicketStatusPendingUser, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusPendingUser: {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusResolved:    {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusClosed:      {},
	domain.TicketStatusCancelled:   {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
