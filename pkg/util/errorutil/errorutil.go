package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromSLAError translates calculator failures into client-facing errors.
// It returns nil when err carries none of the calculator sentinels.
func FromSLAError(err error) *DomainError {
	var (
		code   string
		status = http.StatusBadRequest
	)
	switch {
	case errors.Is(err, sla.ErrInvalidTimeFormat):
		code = "INVALID_TIME_FORMAT"
	case errors.Is(err, sla.ErrInvalidSchedule):
		code = "INVALID_SCHEDULE"
	case errors.Is(err, sla.ErrNegativeDuration):
		code = "NEGATIVE_DURATION"
	case errors.Is(err, sla.ErrDurationOutOfRange):
		code = "DURATION_OUT_OF_RANGE"
	case errors.Is(err, sla.ErrNoWorkingTimeConfigured), errors.Is(err, sla.ErrNoWorkingDaysConfigured):
		code = "SLA_CALENDAR_MISCONFIGURED"
		status = http.StatusUnprocessableEntity
	default:
		return nil
	}
	return &DomainError{
		Code:       code,
		Message:    err.Error(),
		HTTPStatus: status,
		Details:    map[string]any{},
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	if de := FromSLAError(err); de != nil {
		return de
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}
