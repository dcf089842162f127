package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource busy")
	ErrUnavailable  = errors.New("dependency unavailable")
)

// StatusFor maps an error returned by a handler to an HTTP status.
func StatusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusServiceUnavailable, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

// ErrorHandlerMiddleware renders any error returned further down the chain
// as the JSON error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
