package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/cart"
)

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

// GetUserCart возвращает корзину пользователя, создавая её при первом обращении.
func GetUserCart(svc *cart.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cartState, err := svc.GetCartByUser(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToCartDto(cartState))
	}
}

// AddCartItem добавляет позицию в корзину пользователя.
func AddCartItem(svc *cart.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req cartItemRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		cartState, err := svc.AddItem(c.UserContext(), param(c, "id"), req.ProductID, req.Qty)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(domain.ToCartDto(cartState))
	}
}

// UpdateCartItem изменяет количество в позиции корзины.
func UpdateCartItem(svc *cart.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req cartItemRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		cartState, err := svc.UpdateItemQty(c.UserContext(), param(c, "id"), param(c, "itemID"), req.Qty)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToCartDto(cartState))
	}
}

// RemoveCartItem удаляет позицию из корзины.
func RemoveCartItem(svc *cart.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cartState, err := svc.RemoveItem(c.UserContext(), param(c, "id"), param(c, "itemID"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToCartDto(cartState))
	}
}

// GetCart возвращает корзину по её идентификатору.
func GetCart(svc *cart.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cartState, err := svc.GetCart(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToCartDto(cartState))
	}
}

// GetCartTotal возвращает сумму корзины в минимальных единицах.
func GetCartTotal(svc *cart.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		total, err := svc.TotalPrice(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(fiber.Map{"total_minor": total})
	}
}

// ClearCart очищает корзину; повторная очистка — успешный no-op.
func ClearCart(svc *cart.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.ClearCart(c.UserContext(), param(c, "id")); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
