package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// TechnicianAccounts is what the auth endpoints need from the auth service.
type TechnicianAccounts interface {
	LoginTechnician(ctx context.Context, email, password string) (*domain.Technician, string, time.Time, error)
	CreateTechnician(ctx context.Context, input service.TechnicianInput) (*domain.Technician, error)
	ListTechnicians(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error)
}

// AuthHandler serves technician login and account administration.
type AuthHandler struct {
	accounts TechnicianAccounts
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts TechnicianAccounts) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Login POST /auth/technicians/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	tech, token, exp, err := h.accounts.LoginTechnician(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		Technician:  technicianResponse(tech),
	}})
}

// ListTechnicians GET /admin/technicians.
func (h *AuthHandler) ListTechnicians(c *fiber.Ctx) error {
	pageSize := parseInt(c.Query("page_size"), 50)
	filter := repository.TechnicianFilter{
		Limit:  pageSize,
		Offset: (parseInt(c.Query("page"), 1) - 1) * pageSize,
	}
	if role := c.Query("role"); role != "" {
		r := domain.TechnicianRole(strings.ToUpper(role))
		filter.Role = &r
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}
	techs, err := h.accounts.ListTechnicians(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(techs))
	for i := range techs {
		items = append(items, technicianResponse(&techs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTechnician POST /admin/technicians.
func (h *AuthHandler) CreateTechnician(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tech, err := h.accounts.CreateTechnician(c.UserContext(), service.TechnicianInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": technicianResponse(tech)})
}

func technicianResponse(tech *domain.Technician) dto.TechnicianResponse {
	return dto.TechnicianResponse{
		ID:        tech.ID,
		Name:      tech.Name,
		Email:     tech.Email,
		Role:      tech.Role,
		Active:    tech.Active,
		CreatedAt: tech.CreatedAt,
	}
}
