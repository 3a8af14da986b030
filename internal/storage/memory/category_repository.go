package memory

import (
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// categoryRepositoryInMemory — простая in-memory реализация CategoryRepository.
type categoryRepositoryInMemory struct {
	store *Store
}

// NewCategoryRepository возвращает in-memory репозиторий категорий.
func NewCategoryRepository(store *Store) domain.CategoryRepository {
	return &categoryRepositoryInMemory{store: store}
}

// Create сохраняет категорию, проверяя уникальность имени.
func (r *categoryRepositoryInMemory) Create(category domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.categories {
		if strings.EqualFold(existing.Name, category.Name) {
			return domain.ErrCategoryExists
		}
	}
	r.store.categories[category.ID] = category
	return nil
}

// Get возвращает категорию или ErrCategoryNotFound, если её нет.
func (r *categoryRepositoryInMemory) Get(id string) (domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	category, ok := r.store.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetByName ищет категорию по имени без учёта регистра.
func (r *categoryRepositoryInMemory) GetByName(name string) (domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, category := range r.store.categories {
		if strings.EqualFold(category.Name, name) {
			return category, nil
		}
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

// ExistsByName проверяет занятость имени без загрузки записи.
func (r *categoryRepositoryInMemory) ExistsByName(name string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, category := range r.store.categories {
		if strings.EqualFold(category.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// List возвращает все категории, отсортированные по имени.
func (r *categoryRepositoryInMemory) List() ([]domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.store.categories))
	for _, category := range r.store.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Update перезаписывает существующую категорию.
func (r *categoryRepositoryInMemory) Update(category domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	for id, existing := range r.store.categories {
		if id != category.ID && strings.EqualFold(existing.Name, category.Name) {
			return domain.ErrCategoryExists
		}
	}
	r.store.categories[category.ID] = category
	return nil
}

// Delete удаляет категорию по идентификатору.
func (r *categoryRepositoryInMemory) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.store.categories, id)
	return nil
}

var _ domain.CategoryRepository = (*categoryRepositoryInMemory)(nil)
