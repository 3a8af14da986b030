package memory

import (
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// cartRepositoryInMemory — простая in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	store *Store
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepositoryInMemory{store: store}
}

// Create сохраняет новую корзину. Вторая корзина одного пользователя —
// проигранная гонка lazy-создания, ErrCartConflict.
func (r *cartRepositoryInMemory) Create(cart domain.Cart) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.cartByUser[cart.UserID]; exists {
		return domain.ErrCartConflict
	}
	r.store.carts[cart.ID] = cloneCart(cart)
	r.store.cartByUser[cart.UserID] = cart.ID
	return nil
}

// Get возвращает корзину или ErrCartNotFound, если её нет.
func (r *cartRepositoryInMemory) Get(id string) (domain.Cart, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cart, ok := r.store.carts[id]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

// GetByUserID возвращает корзину пользователя или ErrCartNotFound.
func (r *cartRepositoryInMemory) GetByUserID(userID string) (domain.Cart, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cartID, ok := r.store.cartByUser[userID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(r.store.carts[cartID]), nil
}

// Save перезаписывает состав корзины, проверяя версию (optimistic locking).
func (r *cartRepositoryInMemory) Save(cart domain.Cart) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.carts[cart.ID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if current.Version != cart.Version {
		return domain.ErrCartConflict
	}
	// Инкрементируем версию перед сохранением.
	cart.Version++
	cart.CreatedAt = current.CreatedAt
	cart.UpdatedAt = time.Now().UTC()
	r.store.carts[cart.ID] = cloneCart(cart)
	return nil
}

// ClearItems удаляет все позиции корзины. Очистка пустой корзины — no-op.
func (r *cartRepositoryInMemory) ClearItems(cartID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cart, ok := r.store.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if len(cart.Items) == 0 {
		return nil
	}
	cart.Items = nil
	cart.UpdatedAt = time.Now().UTC()
	r.store.carts[cartID] = cart
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
