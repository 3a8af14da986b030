package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Service обслуживает каталог: товары, категории и поисковые выборки.
// Кеш карточек товара опционален: nil отключает его без ветвлений у вызывающих.
type Service struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	cache      domain.ProductCache
	logger     *log.Entry
}

// NewService создаёт сервис каталога. cache может быть nil.
func NewService(products domain.ProductRepository, categories domain.CategoryRepository, cache domain.ProductCache, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog-service")
	}
	return &Service{
		products:   products,
		categories: categories,
		cache:      cache,
		logger:     logger,
	}
}

// CreateProduct сохраняет новый товар каталога.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	if errs := product.ValidateInvariants(); len(errs) != 0 {
		return domain.Product{}, errs[0]
	}
	if product.CategoryID != "" {
		if _, err := s.categories.Get(product.CategoryID); err != nil {
			return domain.Product{}, err
		}
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.products.Create(product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// GetProduct возвращает товар, сначала спрашивая кеш.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	if s.cache != nil {
		if product, ok := s.cache.Get(ctx, id); ok {
			return product, nil
		}
	}

	product, err := s.products.Get(id)
	if err != nil {
		return domain.Product{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, product)
	}
	return product, nil
}

// UpdateProduct применяет изменения и инвалидирует кеш.
func (s *Service) UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	if errs := product.ValidateInvariants(); len(errs) != 0 {
		return domain.Product{}, errs[0]
	}
	if product.CategoryID != "" {
		if _, err := s.categories.Get(product.CategoryID); err != nil {
			return domain.Product{}, err
		}
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(product); err != nil {
		return domain.Product{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, product.ID)
	}
	return s.products.Get(product.ID)
}

// DeleteProduct удаляет товар и инвалидирует кеш.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.products.Delete(id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

// ListProducts возвращает все товары каталога.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.products.List()
}

// ListProductsByCategory возвращает товары категории.
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.categories.Get(categoryID); err != nil {
		return nil, err
	}
	return s.products.ListByCategory(categoryID)
}

// ListProductsByCategoryAndBrand возвращает товары категории с данным брендом.
func (s *Service) ListProductsByCategoryAndBrand(ctx context.Context, categoryID, brand string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.categories.Get(categoryID); err != nil {
		return nil, err
	}
	return s.products.ListByCategoryAndBrand(categoryID, brand)
}

// ListProductsByBrandAndName возвращает товары с данной парой бренд+имя.
func (s *Service) ListProductsByBrandAndName(ctx context.Context, brand, name string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.products.ListByBrandAndName(brand, name)
}

// ListProductsByBrand возвращает товары бренда.
func (s *Service) ListProductsByBrand(ctx context.Context, brand string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.products.ListByBrand(brand)
}

// ListProductsByName возвращает товары с данным именем.
func (s *Service) ListProductsByName(ctx context.Context, name string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.products.ListByName(name)
}

// CountProductsByBrandAndName возвращает число товаров с парой бренд+имя.
func (s *Service) CountProductsByBrandAndName(ctx context.Context, brand, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.products.CountByBrandAndName(brand, name)
}

// DistinctBrands возвращает отсортированный список брендов без дубликатов.
func (s *Service) DistinctBrands(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.products.DistinctBrands()
}

// CreateCategory сохраняет категорию с уникальным именем.
func (s *Service) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return domain.Category{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.ErrNameRequired
	}

	taken, err := s.categories.ExistsByName(name)
	if err != nil {
		return domain.Category{}, err
	}
	if taken {
		return domain.Category{}, domain.ErrCategoryExists
	}

	category := domain.Category{ID: uuid.NewString(), Name: name}
	if err := s.categories.Create(category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

// GetCategory возвращает категорию по идентификатору.
func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return domain.Category{}, err
	}
	return s.categories.Get(id)
}

// GetCategoryByName возвращает категорию по уникальному имени.
func (s *Service) GetCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return domain.Category{}, err
	}
	return s.categories.GetByName(name)
}

// ListCategories возвращает все категории.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.categories.List()
}

// UpdateCategory переименовывает категорию, сохраняя уникальность имени.
func (s *Service) UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return domain.Category{}, err
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return domain.Category{}, domain.ErrNameRequired
	}

	current, err := s.categories.Get(category.ID)
	if err != nil {
		return domain.Category{}, err
	}
	if !strings.EqualFold(current.Name, category.Name) {
		taken, err := s.categories.ExistsByName(category.Name)
		if err != nil {
			return domain.Category{}, err
		}
		if taken {
			return domain.Category{}, domain.ErrCategoryExists
		}
	}

	if err := s.categories.Update(category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

// DeleteCategory удаляет категорию; товары остаются без категории.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.categories.Delete(id)
}
