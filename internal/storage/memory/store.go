package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Store — общая in-memory арена для всех сущностей. Один мьютекс на все
// таблицы позволяет репозиториям выполнять кросс-сущностные операции
// (конвертация корзины в заказ) атомарно, как транзакция в PostgreSQL.
type Store struct {
	mu sync.RWMutex

	users      map[string]domain.User
	categories map[string]domain.Category
	products   map[string]domain.Product
	carts      map[string]domain.Cart
	cartByUser map[string]string
	orders     map[string]domain.Order
	images     map[string]domain.Image

	outbox map[string]*outboxRecord
	idem   map[string]domain.IdempotencyRecord
}

// NewStore создаёт пустую арену для локальной разработки и тестов.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		categories: make(map[string]domain.Category),
		products:   make(map[string]domain.Product),
		carts:      make(map[string]domain.Cart),
		cartByUser: make(map[string]string),
		orders:     make(map[string]domain.Order),
		images:     make(map[string]domain.Image),
		outbox:     make(map[string]*outboxRecord),
		idem:       make(map[string]domain.IdempotencyRecord),
	}
}

// cloneCart возвращает глубокую копию, чтобы избежать непредсказуемых мутаций извне.
func cloneCart(src domain.Cart) domain.Cart {
	dst := src
	dst.Items = append([]domain.CartItem(nil), src.Items...)
	return dst
}

func cloneOrder(src domain.Order) domain.Order {
	dst := src
	dst.Items = append([]domain.OrderItem(nil), src.Items...)
	return dst
}

func cloneImage(src domain.Image) domain.Image {
	dst := src
	dst.Data = append([]byte(nil), src.Data...)
	return dst
}
