package domain

import "time"

// DurationSpec is an SLA duration authored as working days, hours and minutes.
// WorkingHours is the derived flat figure stored alongside the components.
type DurationSpec struct {
	Days         int     `json:"days"`
	Hours        int     `json:"hours"`
	Minutes      int     `json:"minutes"`
	WorkingHours float64 `json:"working_hours"`
}

// IsZero reports whether no duration was authored.
func (d DurationSpec) IsZero() bool {
	return d.Days == 0 && d.Hours == 0 && d.Minutes == 0
}

// SLAPolicy binds response and resolution targets to a ticket priority.
type SLAPolicy struct {
	ID         string
	Name       string
	Priority   TicketPriority
	Response   DurationSpec
	Resolution DurationSpec
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
