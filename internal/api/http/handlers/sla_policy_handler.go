package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// PolicyManager is the SLA policy surface.
type PolicyManager interface {
	List(ctx context.Context) ([]domain.SLAPolicy, error)
	Create(ctx context.Context, input service.SLAPolicyInput) (*domain.SLAPolicy, error)
	Update(ctx context.Context, id string, input service.SLAPolicyInput) (*domain.SLAPolicy, error)
}

// SLAPolicyHandler manages per-priority SLA targets.
type SLAPolicyHandler struct {
	policies PolicyManager
}

// NewSLAPolicyHandler constructs handler.
func NewSLAPolicyHandler(policies PolicyManager) *SLAPolicyHandler {
	return &SLAPolicyHandler{policies: policies}
}

// List GET /admin/sla-policies.
func (h *SLAPolicyHandler) List(c *fiber.Ctx) error {
	policies, err := h.policies.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SLAPolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /admin/sla-policies.
func (h *SLAPolicyHandler) Create(c *fiber.Ctx) error {
	input, err := parsePolicyRequest(c)
	if err != nil {
		return err
	}
	policy, err := h.policies.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": policyResponse(policy)})
}

// Update PUT /admin/sla-policies/:id.
func (h *SLAPolicyHandler) Update(c *fiber.Ctx) error {
	input, err := parsePolicyRequest(c)
	if err != nil {
		return err
	}
	policy, err := h.policies.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

func parsePolicyRequest(c *fiber.Ctx) (service.SLAPolicyInput, error) {
	var req dto.SLAPolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return service.SLAPolicyInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return service.SLAPolicyInput{
		Name:       req.Name,
		Priority:   req.Priority,
		Response:   req.Response,
		Resolution: req.Resolution,
		IsActive:   active,
	}, nil
}

func policyResponse(policy *domain.SLAPolicy) dto.SLAPolicyResponse {
	return dto.SLAPolicyResponse{
		ID:         policy.ID,
		Name:       policy.Name,
		Priority:   policy.Priority,
		Response:   policy.Response,
		Resolution: policy.Resolution,
		IsActive:   policy.IsActive,
		CreatedAt:  policy.CreatedAt,
		UpdatedAt:  policy.UpdatedAt,
	}
}
