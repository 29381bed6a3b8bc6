package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

const holidayDateLayout = "2006-01-02"

// CalendarAdmin is the calendar management surface.
type CalendarAdmin interface {
	OperationalHours(ctx context.Context) (*domain.OperationalHours, error)
	UpdateOperationalHours(ctx context.Context, actor *domain.Technician, hours domain.OperationalHours) (*domain.OperationalHours, error)
	ListHolidays(ctx context.Context, activeOnly bool) ([]domain.Holiday, error)
	CreateHoliday(ctx context.Context, actor *domain.Technician, input service.HolidayInput) (*domain.Holiday, error)
	UpdateHoliday(ctx context.Context, actor *domain.Technician, id string, input service.HolidayInput) (*domain.Holiday, error)
	DeleteHoliday(ctx context.Context, actor *domain.Technician, id string) error
}

// CalendarAdminHandler manages operational hours and holidays.
type CalendarAdminHandler struct {
	calendar CalendarAdmin
}

// NewCalendarAdminHandler constructs handler.
func NewCalendarAdminHandler(calendar CalendarAdmin) *CalendarAdminHandler {
	return &CalendarAdminHandler{calendar: calendar}
}

// GetOperationalHours GET /admin/operational-hours.
func (h *CalendarAdminHandler) GetOperationalHours(c *fiber.Ctx) error {
	hours, err := h.calendar.OperationalHours(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": hours})
}

// UpdateOperationalHours PUT /admin/operational-hours.
func (h *CalendarAdminHandler) UpdateOperationalHours(c *fiber.Ctx) error {
	var req domain.OperationalHours
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hours, err := h.calendar.UpdateOperationalHours(c.UserContext(), currentTechnician(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": hours})
}

// ListHolidays GET /admin/holidays?active=true.
func (h *CalendarAdminHandler) ListHolidays(c *fiber.Ctx) error {
	holidays, err := h.calendar.ListHolidays(c.UserContext(), c.Query("active") == "true")
	if err != nil {
		return err
	}
	items := make([]dto.HolidayResponse, 0, len(holidays))
	for i := range holidays {
		items = append(items, holidayResponse(&holidays[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateHoliday POST /admin/holidays.
func (h *CalendarAdminHandler) CreateHoliday(c *fiber.Ctx) error {
	input, err := parseHolidayRequest(c)
	if err != nil {
		return err
	}
	holiday, err := h.calendar.CreateHoliday(c.UserContext(), currentTechnician(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": holidayResponse(holiday)})
}

// UpdateHoliday PUT /admin/holidays/:id.
func (h *CalendarAdminHandler) UpdateHoliday(c *fiber.Ctx) error {
	input, err := parseHolidayRequest(c)
	if err != nil {
		return err
	}
	holiday, err := h.calendar.UpdateHoliday(c.UserContext(), currentTechnician(c), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": holidayResponse(holiday)})
}

// DeleteHoliday DELETE /admin/holidays/:id.
func (h *CalendarAdminHandler) DeleteHoliday(c *fiber.Ctx) error {
	if err := h.calendar.DeleteHoliday(c.UserContext(), currentTechnician(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseHolidayRequest(c *fiber.Ctx) (service.HolidayInput, error) {
	var req dto.HolidayRequest
	if err := c.BodyParser(&req); err != nil {
		return service.HolidayInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := time.Parse(holidayDateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return service.HolidayInput{}, apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": req.Date})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return service.HolidayInput{
		Name:        req.Name,
		Date:        date,
		IsRecurring: req.IsRecurring,
		IsActive:    active,
	}, nil
}

func holidayResponse(holiday *domain.Holiday) dto.HolidayResponse {
	return dto.HolidayResponse{
		ID:          holiday.ID,
		Name:        holiday.Name,
		Date:        holiday.Date.Format(holidayDateLayout),
		IsRecurring: holiday.IsRecurring,
		IsActive:    holiday.IsActive,
		CreatedAt:   holiday.CreatedAt,
		UpdatedAt:   holiday.UpdatedAt,
	}
}
