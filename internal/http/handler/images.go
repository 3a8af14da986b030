package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/image"
)

// UploadImage принимает multipart-файл (поле file) и сохраняет его для товара.
func UploadImage(svc *image.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		saved, err := svc.Save(c.UserContext(), domain.Image{
			ProductID:   param(c, "id"),
			FileName:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(domain.ToImageDto(saved))
	}
}

// GetImage возвращает метаданные изображения.
func GetImage(svc *image.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		img, err := svc.Get(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToImageDto(img))
	}
}

// DownloadImage отдаёт содержимое изображения.
func DownloadImage(svc *image.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		img, err := svc.Get(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}

		contentType := img.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(img.Data)
	}
}

// UpdateImage заменяет содержимое изображения из multipart-файла.
func UpdateImage(svc *image.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		updated, err := svc.Update(c.UserContext(), domain.Image{
			ID:          param(c, "id"),
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(domain.ToImageDto(updated))
	}
}

// DeleteImage удаляет изображение.
func DeleteImage(svc *image.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), param(c, "id")); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListProductImages возвращает изображения товара.
func ListProductImages(svc *image.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		images, err := svc.ListByProduct(c.UserContext(), param(c, "id"))
		if err != nil {
			return writeDomainError(c, err)
		}

		dtos := make([]domain.ImageDto, 0, len(images))
		for _, img := range images {
			dtos = append(dtos, domain.ToImageDto(img))
		}
		return c.JSON(dtos)
	}
}
