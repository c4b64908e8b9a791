package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// Response is the JSON envelope of every API answer.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK sends data with the given status.
func OK(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Response{Success: true, Data: data})
}

// StatusOf maps an error to its HTTP status. Tenant isolation answers 404 so that
// other tenants' ids cannot be enumerated.
func StatusOf(err error) int {
	var fe *fiber.Error

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, errs.ErrTenantIsolation), errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, errs.ErrDuplicateName):
		return fiber.StatusConflict
	case errors.Is(err, errs.ErrValidation):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the fiber error handler of the API.
func ErrorHandler(c fiber.Ctx, err error) error {
	status := StatusOf(err)
	message := err.Error()

	switch {
	case status >= fiber.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		message = "internal server error"
	case errors.Is(err, errs.ErrTenantIsolation):
		message = "not found"
	}

	return c.Status(status).JSON(Response{Success: false, Message: message})
}

// Parse binds the JSON body into out and validates it.
func Parse(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		if errors.Is(err, errs.ErrValidation) {
			return err
		}

		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return nil
}

// ParamID returns the numeric route parameter name.
func ParamID(c fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Invalid(name, "must be a positive number")
	}

	return uint(id), nil
}

// PermissionRef reads a permission given either by id or by name.
func PermissionRef(s string) permission.Ref {
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		return permission.ByID(uint(id))
	}

	return permission.ByName(s)
}
