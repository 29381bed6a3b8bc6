package domain

import "time"

// Holiday is an exclusion day. Recurring holidays match on month and day only.
type Holiday struct {
	ID          string
	Name        string
	Date        time.Time
	IsRecurring bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
