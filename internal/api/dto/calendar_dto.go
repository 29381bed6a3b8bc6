package dto

import "time"

// HolidayRequest payload. Date is a calendar date, YYYY-MM-DD.
type HolidayRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	IsRecurring bool   `json:"is_recurring"`
	IsActive    *bool  `json:"is_active"`
}

// HolidayResponse representation.
type HolidayResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        string    `json:"date"`
	IsRecurring bool      `json:"is_recurring"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
