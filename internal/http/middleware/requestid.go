package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader — заголовок для сквозного request id.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey — ключ request id в locals контекста fiber.
	RequestIDLocalKey = "request_id"
)

// RequestID гарантирует наличие request id у каждого запроса: берёт его из
// входящего заголовка или генерирует, кладёт в locals и возвращает в ответе.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
