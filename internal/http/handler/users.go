package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/user"
)

type userRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// CreateUser регистрирует нового пользователя.
func CreateUser(svc *user.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req userRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		dto, err := svc.Create(c.UserContext(), domain.User{
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PasswordHash: req.Password,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto)
	}
}

// GetUser возвращает пользователя по идентификатору.
func GetUser(svc *user.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dto, err := svc.Get(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(dto)
	}
}

// UpdateUser изменяет профиль пользователя.
func UpdateUser(svc *user.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req userRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		dto, err := svc.Update(c.UserContext(), domain.User{
			ID:           param(c, "id"),
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PasswordHash: req.Password,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(dto)
	}
}

// DeleteUser удаляет учётную запись.
func DeleteUser(svc *user.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), param(c, "id")); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
