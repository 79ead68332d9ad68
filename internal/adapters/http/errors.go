package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int                     `json:"status"`
	Code      string                  `json:"code"`    // Error code: bad_request, not_found, conflict, etc.
	Message   string                  `json:"message"` // Human-readable message
	Errors    []domain.FieldViolation `json:"errors,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errValidation returns a 400 with every field violation listed.
func errValidation(c *fiber.Ctx, v *domain.ValidationError) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(400).JSON(APIError{
		Status:    400,
		Code:      "validation_failed",
		Message:   "request failed validation",
		Errors:    v.Violations,
		RequestID: reqID,
	})
}

// serviceError maps domain errors onto the 400/404/409/500 status classes.
func serviceError(c *fiber.Ctx, err error) error {
	var v *domain.ValidationError
	switch {
	case errors.As(err, &v):
		return errValidation(c, v)
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "area not found")
	case errors.Is(err, domain.ErrDuplicateArea):
		return errConflict(c, "an area already exists at this location")
	default:
		return errInternal(c, err.Error())
	}
}
