package memory

import (
	"sort"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository поверх общей арены.
type orderRepositoryInMemory struct {
	store *Store
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{store: store}
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ListByUser возвращает заказы пользователя по возрастанию времени создания.
func (r *orderRepositoryInMemory) ListByUser(userID string) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		if order.UserID != userID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// ListItemsByProduct возвращает все позиции заказов по товару.
func (r *orderRepositoryInMemory) ListItemsByProduct(productID string) ([]domain.OrderItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []domain.OrderItem
	for _, order := range r.store.orders {
		for _, item := range order.Items {
			if item.ProductID == productID {
				result = append(result, item)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// ConvertCart атомарно фиксирует конвертацию корзины в заказ под одним
// мьютексом арены: сверка и инкремент версии, опциональное списание остатков,
// очистка позиций корзины, запись заказа. Любая ошибка оставляет арену
// нетронутой; сконвертированная корзина выходит из-под мьютекса уже пустой.
func (r *orderRepositoryInMemory) ConvertCart(order domain.Order, cartID string, cartVersion int64, decrementStock bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cart, ok := r.store.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if cart.Version != cartVersion {
		return domain.ErrCartConflict
	}
	if _, exists := r.store.orders[order.ID]; exists {
		return domain.ErrOrderExists
	}

	if decrementStock {
		// Сначала проверяем доступность всех позиций, затем списываем.
		required := make(map[string]int32, len(order.Items))
		for _, item := range order.Items {
			required[item.ProductID] += item.Qty
		}
		for productID, qty := range required {
			product, ok := r.store.products[productID]
			if !ok {
				return domain.ErrProductNotFound
			}
			if product.Stock < qty {
				return domain.ErrInsufficientStock
			}
		}
		for productID, qty := range required {
			product := r.store.products[productID]
			product.Stock -= qty
			r.store.products[productID] = product
		}
	}

	cart.Version++
	cart.Items = nil
	cart.UpdatedAt = time.Now().UTC()
	r.store.carts[cartID] = cart
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
