package image

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Service управляет изображениями товаров. Содержимое хранится рядом с
// метаданными; DownloadURL строится из базового адреса API.
type Service struct {
	images   domain.ImageRepository
	products domain.ProductRepository
	baseURL  string
	logger   *log.Entry
}

// NewService создаёт сервис изображений. baseURL — внешний адрес API без
// завершающего слеша, например "http://localhost:8080".
func NewService(images domain.ImageRepository, products domain.ProductRepository, baseURL string, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "image-service")
	}
	return &Service{
		images:   images,
		products: products,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// Save сохраняет изображение для существующего товара.
func (s *Service) Save(ctx context.Context, image domain.Image) (domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return domain.Image{}, err
	}
	if len(image.Data) == 0 {
		return domain.Image{}, domain.ErrImageDataRequired
	}
	if _, err := s.products.Get(image.ProductID); err != nil {
		return domain.Image{}, err
	}

	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	image.DownloadURL = s.downloadURL(image.ID)
	image.CreatedAt = time.Now().UTC()

	if err := s.images.Create(image); err != nil {
		return domain.Image{}, err
	}
	return image, nil
}

// Get возвращает изображение вместе с содержимым.
func (s *Service) Get(ctx context.Context, id string) (domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return domain.Image{}, err
	}
	return s.images.Get(id)
}

// Update заменяет содержимое и метаданные изображения, сохраняя его адрес.
func (s *Service) Update(ctx context.Context, image domain.Image) (domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return domain.Image{}, err
	}
	if len(image.Data) == 0 {
		return domain.Image{}, domain.ErrImageDataRequired
	}

	current, err := s.images.Get(image.ID)
	if err != nil {
		return domain.Image{}, err
	}
	image.ProductID = current.ProductID
	image.DownloadURL = current.DownloadURL
	image.CreatedAt = current.CreatedAt

	if err := s.images.Update(image); err != nil {
		return domain.Image{}, err
	}
	return image, nil
}

// Delete удаляет изображение.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.images.Delete(id)
}

// ListByProduct возвращает изображения товара.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.products.Get(productID); err != nil {
		return nil, err
	}
	return s.images.ListByProduct(productID)
}

func (s *Service) downloadURL(id string) string {
	return fmt.Sprintf("%s/api/v1/images/%s/content", s.baseURL, id)
}
