package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus   TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeDueDate  TicketChangeType = "DUE_DATE_CHANGE"
	ChangeTypeBreach   TicketChangeType = "SLA_BREACH"
)

// ActorType tells who caused a history entry.
type ActorType string

const (
	ActorTypeTechnician ActorType = "TECHNICIAN"
	ActorTypeSystem     ActorType = "SYSTEM"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID            string
	TicketID      string
	ChangedByType ActorType
	ChangedByID   *string
	ChangeType    TicketChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
