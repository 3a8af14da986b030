package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// fiber переиспользует буферы запроса: строки из c.Params/c.Get живут только до
// конца обработчика. Всё, что уходит в сервисы и хранилища, копируется здесь.

// param возвращает копию параметра пути, отвязанную от буфера запроса.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

// headerValue возвращает копию значения заголовка.
func headerValue(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Get(key))
}
