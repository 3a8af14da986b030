package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
)

type productRequest struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	PriceMinor  int64  `json:"price_minor"`
	Stock       int32  `json:"stock"`
	CategoryID  string `json:"category_id"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

func toProductDtos(products []domain.Product) []domain.ProductDto {
	dtos := make([]domain.ProductDto, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, domain.ToProductDto(p))
	}
	return dtos
}

// CreateProduct добавляет товар в каталог.
func CreateProduct(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req productRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		product, err := svc.CreateProduct(c.UserContext(), domain.Product{
			Name:        req.Name,
			Brand:       req.Brand,
			Description: req.Description,
			PriceMinor:  req.PriceMinor,
			Stock:       req.Stock,
			CategoryID:  req.CategoryID,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(domain.ToProductDto(product))
	}
}

// GetProduct возвращает карточку товара.
func GetProduct(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		product, err := svc.GetProduct(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToProductDto(product))
	}
}

// UpdateProduct изменяет карточку товара.
func UpdateProduct(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req productRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		product, err := svc.UpdateProduct(c.UserContext(), domain.Product{
			ID:          param(c, "id"),
			Name:        req.Name,
			Brand:       req.Brand,
			Description: req.Description,
			PriceMinor:  req.PriceMinor,
			Stock:       req.Stock,
			CategoryID:  req.CategoryID,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToProductDto(product))
	}
}

// DeleteProduct удаляет товар.
func DeleteProduct(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteProduct(c.UserContext(), param(c, "id")); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListProducts возвращает товары с фильтрами по категории, бренду и имени,
// включая комбинации категория+бренд и бренд+имя.
func ListProducts(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var (
			products []domain.Product
			err      error
		)
		switch {
		case c.Query("category_id") != "" && c.Query("brand") != "":
			products, err = svc.ListProductsByCategoryAndBrand(ctx, c.Query("category_id"), c.Query("brand"))
		case c.Query("category_id") != "":
			products, err = svc.ListProductsByCategory(ctx, c.Query("category_id"))
		case c.Query("brand") != "" && c.Query("name") != "":
			products, err = svc.ListProductsByBrandAndName(ctx, c.Query("brand"), c.Query("name"))
		case c.Query("brand") != "":
			products, err = svc.ListProductsByBrand(ctx, c.Query("brand"))
		case c.Query("name") != "":
			products, err = svc.ListProductsByName(ctx, c.Query("name"))
		default:
			products, err = svc.ListProducts(ctx)
		}
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(toProductDtos(products))
	}
}

// CountProducts возвращает число товаров с данной парой бренд+имя.
func CountProducts(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := svc.CountProductsByBrandAndName(c.UserContext(), c.Query("brand"), c.Query("name"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(fiber.Map{"count": count})
	}
}

// ListBrands возвращает отсортированный список брендов.
func ListBrands(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		brands, err := svc.DistinctBrands(c.UserContext())
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(fiber.Map{"brands": brands})
	}
}

// CreateCategory добавляет категорию.
func CreateCategory(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req categoryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		category, err := svc.CreateCategory(c.UserContext(), req.Name)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(category)
	}
}

// GetCategory возвращает категорию.
func GetCategory(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := svc.GetCategory(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(category)
	}
}

// ListCategories возвращает все категории.
func ListCategories(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := svc.ListCategories(c.UserContext())
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(categories)
	}
}

// UpdateCategory переименовывает категорию.
func UpdateCategory(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req categoryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		category, err := svc.UpdateCategory(c.UserContext(), domain.Category{
			ID:   param(c, "id"),
			Name: req.Name,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(category)
	}
}

// DeleteCategory удаляет категорию.
func DeleteCategory(svc *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteCategory(c.UserContext(), param(c, "id")); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
