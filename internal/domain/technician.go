package domain

import "time"

// TechnicianRole enumerates helpdesk operator roles.
type TechnicianRole string

const (
	TechnicianRoleAgent TechnicianRole = "TECHNICIAN"
	TechnicianRoleAdmin TechnicianRole = "ADMIN"
)

// Technician is a helpdesk operator who works tickets and, as admin, owns the SLA calendar.
type Technician struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         TechnicianRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
