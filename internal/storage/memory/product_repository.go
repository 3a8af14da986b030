package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	store *Store
}

// NewProductRepository возвращает in-memory репозиторий товаров.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepositoryInMemory{store: store}
}

// Create сохраняет новый товар.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.products[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Update перезаписывает существующий товар.
func (r *productRepositoryInMemory) Update(product domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.store.products[product.ID] = product
	return nil
}

// Delete удаляет товар по идентификатору.
func (r *productRepositoryInMemory) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.store.products, id)
	return nil
}

// List возвращает все товары, отсортированные по имени.
func (r *productRepositoryInMemory) List() ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(domain.Product) bool { return true }), nil
}

// ListByCategory возвращает товары категории.
func (r *productRepositoryInMemory) ListByCategory(categoryID string) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(p domain.Product) bool { return p.CategoryID == categoryID }), nil
}

// ListByCategoryAndBrand возвращает товары категории с совпадающим брендом.
func (r *productRepositoryInMemory) ListByCategoryAndBrand(categoryID, brand string) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(p domain.Product) bool {
		return p.CategoryID == categoryID && strings.EqualFold(p.Brand, brand)
	}), nil
}

// ListByBrandAndName возвращает товары с совпадающими брендом и именем.
func (r *productRepositoryInMemory) ListByBrandAndName(brand, name string) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(p domain.Product) bool {
		return strings.EqualFold(p.Brand, brand) && strings.EqualFold(p.Name, name)
	}), nil
}

// ListByBrand возвращает товары бренда без учёта регистра.
func (r *productRepositoryInMemory) ListByBrand(brand string) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(p domain.Product) bool { return strings.EqualFold(p.Brand, brand) }), nil
}

// ListByName возвращает товары с совпадающим именем без учёта регистра.
func (r *productRepositoryInMemory) ListByName(name string) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(p domain.Product) bool { return strings.EqualFold(p.Name, name) }), nil
}

// CountByBrandAndName считает товары с совпадающими брендом и именем.
func (r *productRepositoryInMemory) CountByBrandAndName(brand, name string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, product := range r.store.products {
		if strings.EqualFold(product.Brand, brand) && strings.EqualFold(product.Name, name) {
			count++
		}
	}
	return count, nil
}

// DistinctBrands возвращает отсортированный список брендов без дубликатов.
func (r *productRepositoryInMemory) DistinctBrands() ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.store.products))
	result := make([]string, 0, len(r.store.products))
	for _, product := range r.store.products {
		if product.Brand == "" {
			continue
		}
		if _, ok := seen[product.Brand]; ok {
			continue
		}
		seen[product.Brand] = struct{}{}
		result = append(result, product.Brand)
	}
	sort.Strings(result)
	return result, nil
}

// collect обходит таблицу под уже взятым мьютексом.
func (r *productRepositoryInMemory) collect(match func(domain.Product) bool) []domain.Product {
	result := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		if match(product) {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
