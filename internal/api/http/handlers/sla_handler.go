package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// SLACalendar is the calendar surface behind the SLA endpoints.
type SLACalendar interface {
	Zone() sla.Zone
	IsWorkingNow(ctx context.Context, at time.Time) (*service.WorkingStatus, error)
	PreviewDueDate(ctx context.Context, start time.Time, d sla.Duration) (time.Time, error)
	ConvertDuration(ctx context.Context, days, hours, minutes int) (float64, error)
}

// SLAHandler exposes the calculator over HTTP.
type SLAHandler struct {
	calendar SLACalendar
}

// NewSLAHandler constructs handler.
func NewSLAHandler(calendar SLACalendar) *SLAHandler {
	return &SLAHandler{calendar: calendar}
}

// WorkingNow GET /sla/working-now?at=RFC3339.
func (h *SLAHandler) WorkingNow(c *fiber.Ctx) error {
	var at time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewValidationError("at must be RFC3339", map[string]any{"at": raw})
		}
		at = parsed
	}
	status, err := h.calendar.IsWorkingNow(c.UserContext(), at)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WorkingNowResponse{
		At:            status.At,
		Local:         status.Local.Format(time.RFC3339),
		Working:       status.Working,
		NextWorkingAt: status.NextWorkingAt,
		Holiday:       status.Holiday,
	}})
}

// DueDate POST /sla/due-date.
func (h *SLAHandler) DueDate(c *fiber.Ctx) error {
	var req dto.DueDateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return apperrors.NewValidationError("start must be RFC3339", map[string]any{"start": req.Start})
	}
	d, err := durationFromRequest(req)
	if err != nil {
		return err
	}
	due, err := h.calendar.PreviewDueDate(c.UserContext(), start, d)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DueDateResponse{
		Start:      start.UTC(),
		DueAt:      due,
		DueAtLocal: h.calendar.Zone().Local(due).Format(time.RFC3339),
		Duration:   d.String(),
	}})
}

// Convert POST /sla/convert.
func (h *SLAHandler) Convert(c *fiber.Ctx) error {
	var req dto.ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hours, err := h.calendar.ConvertDuration(c.UserContext(), req.Days, req.Hours, req.Minutes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ConvertResponse{
		Days:         req.Days,
		Hours:        req.Hours,
		Minutes:      req.Minutes,
		WorkingHours: hours,
	}})
}

func durationFromRequest(req dto.DueDateRequest) (sla.Duration, error) {
	components := req.Days != nil || req.Hours != nil || req.Minutes != nil
	switch {
	case req.WorkingHours != nil && components:
		return sla.Duration{}, apperrors.NewValidationError("give working_hours or days/hours/minutes, not both", nil)
	case req.WorkingHours != nil:
		return sla.FlatHours(*req.WorkingHours), nil
	case components:
		return sla.Components(deref(req.Days), deref(req.Hours), deref(req.Minutes)), nil
	default:
		return sla.Duration{}, apperrors.NewValidationError("duration required", map[string]any{
			"working_hours": "or days/hours/minutes",
		})
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
