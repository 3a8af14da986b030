package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// imageRepositoryInMemory — простая in-memory реализация ImageRepository.
type imageRepositoryInMemory struct {
	store *Store
}

// NewImageRepository возвращает in-memory репозиторий изображений.
func NewImageRepository(store *Store) domain.ImageRepository {
	return &imageRepositoryInMemory{store: store}
}

// Create сохраняет новое изображение.
func (r *imageRepositoryInMemory) Create(image domain.Image) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.images[image.ID] = cloneImage(image)
	return nil
}

// Get возвращает изображение или ErrImageNotFound, если его нет.
func (r *imageRepositoryInMemory) Get(id string) (domain.Image, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	image, ok := r.store.images[id]
	if !ok {
		return domain.Image{}, domain.ErrImageNotFound
	}
	return cloneImage(image), nil
}

// Update перезаписывает существующее изображение.
func (r *imageRepositoryInMemory) Update(image domain.Image) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.images[image.ID]
	if !ok {
		return domain.ErrImageNotFound
	}
	image.CreatedAt = current.CreatedAt
	r.store.images[image.ID] = cloneImage(image)
	return nil
}

// Delete удаляет изображение по идентификатору.
func (r *imageRepositoryInMemory) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.images[id]; !ok {
		return domain.ErrImageNotFound
	}
	delete(r.store.images, id)
	return nil
}

// ListByProduct возвращает изображения товара по времени загрузки.
func (r *imageRepositoryInMemory) ListByProduct(productID string) ([]domain.Image, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Image, 0, 4)
	for _, image := range r.store.images {
		if image.ProductID == productID {
			result = append(result, cloneImage(image))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

var _ domain.ImageRepository = (*imageRepositoryInMemory)(nil)
