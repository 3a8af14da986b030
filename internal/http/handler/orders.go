package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/order"
)

// IdempotencyKeyHeader — заголовок идемпотентного оформления заказа.
const IdempotencyKeyHeader = "Idempotency-Key"

type placeOrderRequest struct {
	UserID string `json:"user_id"`
}

// PlaceOrder оформляет заказ из корзины пользователя. Повтор запроса с тем же
// Idempotency-Key воспроизводит сохранённый ответ вместо повторной конвертации.
// idem может быть nil — тогда заголовок игнорируется; ttl задаёт срок жизни
// записи идемпотентности (нулевой оставляет значение по умолчанию хранилища).
func PlaceOrder(svc *order.Service, idem domain.IdempotencyRepository, ttl time.Duration, logger *log.Entry) fiber.Handler {
	if logger == nil {
		logger = log.WithField("component", "order-handler")
	}

	return func(c *fiber.Ctx) error {
		var req placeOrderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		key := headerValue(c, IdempotencyKeyHeader)
		if key == "" || idem == nil {
			placed, err := svc.PlaceOrder(c.UserContext(), req.UserID)
			if err != nil {
				return writeDomainError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(domain.ToOrderDto(placed))
		}

		var expiresAt time.Time
		if ttl > 0 {
			expiresAt = time.Now().UTC().Add(ttl)
		}

		hash := requestHash(c.Method(), c.Path(), c.Body())
		if _, err := idem.CreateProcessing(key, hash, expiresAt); err != nil {
			switch {
			case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
				return replayStoredResponse(c, idem, key)
			case errors.Is(err, domain.ErrIdempotencyHashMismatch):
				return writeDomainError(c, err)
			default:
				logger.WithError(err).WithField("idempotency_key", key).Error("idempotency record create failed")
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		placed, err := svc.PlaceOrder(c.UserContext(), req.UserID)
		if err != nil {
			status, code, message := domainStatus(err)
			body, marshalErr := json.Marshal(errorPayload{
				RequestID: requestIDFromCtx(c),
				Error:     errorEnvelope{Code: code, Message: message},
			})
			if marshalErr == nil {
				if markErr := idem.MarkFailed(key, body, status); markErr != nil {
					logger.WithError(markErr).WithField("idempotency_key", key).Warn("idempotency mark failed error")
				}
			}
			return writeError(c, status, code, message)
		}

		dto := domain.ToOrderDto(placed)
		body, marshalErr := json.Marshal(dto)
		if marshalErr == nil {
			if markErr := idem.MarkDone(key, body, fiber.StatusCreated); markErr != nil {
				logger.WithError(markErr).WithField("idempotency_key", key).Warn("idempotency mark done error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(dto)
	}
}

// replayStoredResponse возвращает ранее сохранённый ответ по ключу. Запрос,
// обработка которого ещё не завершилась, отклоняется конфликтом.
func replayStoredResponse(c *fiber.Ctx, idem domain.IdempotencyRepository, key string) error {
	record, err := idem.Get(key)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	if record.Status == domain.IdempotencyStatusProcessing {
		return writeError(c, fiber.StatusConflict, "PROCESSING", "request with this idempotency key is being processed")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(record.HTTPStatus).Send(record.ResponseBody)
}

func requestHash(method, path string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(method))
	sum.Write([]byte(path))
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

// GetOrder возвращает заказ по идентификатору.
func GetOrder(svc *order.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		placed, err := svc.GetOrder(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToOrderDto(placed))
	}
}

// ListUserOrders возвращает заказы пользователя по возрастанию времени создания.
func ListUserOrders(svc *order.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orders, err := svc.ListUserOrders(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}

		dtos := make([]domain.OrderDto, 0, len(orders))
		for _, o := range orders {
			dtos = append(dtos, domain.ToOrderDto(o))
		}
		return c.JSON(dtos)
	}
}
