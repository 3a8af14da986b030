package memory

import (
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// userRepositoryInMemory — простая in-memory реализация UserRepository.
type userRepositoryInMemory struct {
	store *Store
}

// NewUserRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepositoryInMemory{store: store}
}

// Create сохраняет нового пользователя, проверяя уникальность email.
func (r *userRepositoryInMemory) Create(user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	r.store.users[user.ID] = user
	return nil
}

// Get возвращает пользователя или ErrUserNotFound, если его нет.
func (r *userRepositoryInMemory) Get(id string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// GetByEmail ищет пользователя по email без учёта регистра.
func (r *userRepositoryInMemory) GetByEmail(email string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// ExistsByEmail проверяет занятость email без загрузки записи.
func (r *userRepositoryInMemory) ExistsByEmail(email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Update перезаписывает существующего пользователя.
func (r *userRepositoryInMemory) Update(user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if !strings.EqualFold(current.Email, user.Email) {
		for id, existing := range r.store.users {
			if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
				return domain.ErrEmailTaken
			}
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.store.users[user.ID] = user
	return nil
}

// Delete удаляет пользователя по идентификатору.
func (r *userRepositoryInMemory) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.store.users, id)
	return nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
