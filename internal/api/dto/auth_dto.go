package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the access token.
type LoginResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresAt   time.Time          `json:"expires_at"`
	Technician  TechnicianResponse `json:"technician"`
}

// CreateTechnicianRequest payload for the admin endpoint.
type CreateTechnicianRequest struct {
	Name     string                `json:"name"`
	Email    string                `json:"email"`
	Password string                `json:"password"`
	Role     domain.TechnicianRole `json:"role"`
}

// TechnicianResponse omits credentials.
type TechnicianResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Role      domain.TechnicianRole `json:"role"`
	Active    bool                  `json:"active"`
	CreatedAt time.Time             `json:"created_at"`
}
