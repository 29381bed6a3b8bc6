package events

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketSLABreached     EventType = "ticket_sla_breached"
	EventCalendarUpdated       EventType = "calendar_updated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type         domain.ActorType `json:"type"`
	TechnicianID *string          `json:"technician_id,omitempty"`
}

// SystemActor is used for events raised by background work.
var SystemActor = Actor{Type: domain.ActorTypeSystem}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority        domain.TicketPriority `json:"priority"`
	Title           string                `json:"title"`
	ResponseDueAt   *time.Time            `json:"response_due_at,omitempty"`
	ResolutionDueAt *time.Time            `json:"resolution_due_at,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload. Due dates are the recomputed ones.
type TicketPriorityChangedPayload struct {
	OldPriority     domain.TicketPriority `json:"old_priority"`
	NewPriority     domain.TicketPriority `json:"new_priority"`
	ResponseDueAt   *time.Time            `json:"response_due_at,omitempty"`
	ResolutionDueAt *time.Time            `json:"resolution_due_at,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketSLABreachedPayload payload.
type TicketSLABreachedPayload struct {
	ResolutionDueAt time.Time     `json:"resolution_due_at"`
	DetectedAt      time.Time     `json:"detected_at"`
	Overdue         time.Duration `json:"overdue_ns"`
}

// CalendarUpdatedPayload payload.
type CalendarUpdatedPayload struct {
	Reason string `json:"reason"`
}
