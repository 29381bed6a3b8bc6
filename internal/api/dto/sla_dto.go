package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// DueDateRequest asks for a due date. Either WorkingHours or any of
// Days/Hours/Minutes is given, not both.
type DueDateRequest struct {
	Start        string   `json:"start"`
	WorkingHours *float64 `json:"working_hours"`
	Days         *int     `json:"days"`
	Hours        *int     `json:"hours"`
	Minutes      *int     `json:"minutes"`
}

// DueDateResponse carries the due instant in UTC and in the calendar's zone.
type DueDateResponse struct {
	Start      time.Time `json:"start"`
	DueAt      time.Time `json:"due_at"`
	DueAtLocal string    `json:"due_at_local"`
	Duration   string    `json:"duration"`
}

// WorkingNowResponse answers the working-time predicate.
type WorkingNowResponse struct {
	At            time.Time `json:"at"`
	Local         string    `json:"local"`
	Working       bool      `json:"working"`
	NextWorkingAt time.Time `json:"next_working_at"`
	Holiday       string    `json:"holiday,omitempty"`
}

// ConvertRequest payload.
type ConvertRequest struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ConvertResponse payload.
type ConvertResponse struct {
	Days         int     `json:"days"`
	Hours        int     `json:"hours"`
	Minutes      int     `json:"minutes"`
	WorkingHours float64 `json:"working_hours"`
}

// SLAPolicyRequest payload.
type SLAPolicyRequest struct {
	Name       string                `json:"name"`
	Priority   domain.TicketPriority `json:"priority"`
	Response   domain.DurationSpec   `json:"response"`
	Resolution domain.DurationSpec   `json:"resolution"`
	IsActive   *bool                 `json:"is_active"`
}

// SLAPolicyResponse representation.
type SLAPolicyResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Priority   domain.TicketPriority `json:"priority"`
	Response   domain.DurationSpec   `json:"response"`
	Resolution domain.DurationSpec   `json:"resolution"`
	IsActive   bool                  `json:"is_active"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}
