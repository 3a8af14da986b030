package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/http/middleware"
)

// errorPayload — стандартное тело ошибки API.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError пишет стандартное JSON-тело ошибки, не раскрывая внутренних деталей.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// domainStatus классифицирует доменную ошибку: not found — 404, конфликты —
// 409, нарушение валидации — 422, прочее — 500.
func domainStatus(err error) (int, string, string) {
	switch {
	case domain.IsNotFound(err):
		return fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case domain.IsConflict(err):
		return fiber.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", err.Error()
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusUnprocessableEntity, "EMPTY_CART", err.Error()
	case isValidationError(err):
		return fiber.StatusUnprocessableEntity, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return fiber.StatusUnprocessableEntity, "IDEMPOTENCY_MISMATCH", "idempotency key reused with a different request"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

// writeDomainError переводит доменную ошибку в стандартный HTTP ответ.
func writeDomainError(c *fiber.Ctx, err error) error {
	status, code, message := domainStatus(err)
	return writeError(c, status, code, message)
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrUserIDRequired) ||
		errors.Is(err, domain.ErrEmailRequired) ||
		errors.Is(err, domain.ErrCredentialRequired) ||
		errors.Is(err, domain.ErrNameRequired) ||
		errors.Is(err, domain.ErrItemQtyInvalid) ||
		errors.Is(err, domain.ErrItemPriceInvalid) ||
		errors.Is(err, domain.ErrItemsRequired) ||
		errors.Is(err, domain.ErrAmountNegative) ||
		errors.Is(err, domain.ErrAmountMismatch) ||
		errors.Is(err, domain.ErrImageDataRequired)
}

// ErrorHandler — глобальный обработчик ошибок fiber со стандартным телом.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
