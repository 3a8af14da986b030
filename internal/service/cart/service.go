package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// saveRetries ограничивает число повторов мутации при проигрыше optimistic locking.
const saveRetries = 3

// Service управляет корзинами: lazy-создание, мутации позиций, подсчёт суммы.
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	users    domain.UserRepository
	logger   *log.Entry
}

// NewService создаёт сервис корзин.
func NewService(carts domain.CartRepository, products domain.ProductRepository, users domain.UserRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &Service{
		carts:    carts,
		products: products,
		users:    users,
		logger:   logger,
	}
}

// GetCart возвращает корзину по идентификатору.
func (s *Service) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}
	return s.carts.Get(cartID)
}

// GetCartByUser возвращает корзину пользователя, создавая её при первом
// обращении. Проигранная гонка создания разрешается в пользу существующей корзины.
func (s *Service) GetCartByUser(ctx context.Context, userID string) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}
	if _, err := s.users.Get(userID); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.carts.GetByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{}, fmt.Errorf("load cart for user %s: %w", userID, err)
	}

	now := time.Now().UTC()
	fresh := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.carts.Create(fresh); err != nil {
		if errors.Is(err, domain.ErrCartConflict) {
			// Конкурент создал корзину первым, берём его результат.
			return s.carts.GetByUserID(userID)
		}
		return domain.Cart{}, fmt.Errorf("create cart for user %s: %w", userID, err)
	}

	s.logger.WithFields(log.Fields{
		"cart_id": fresh.ID,
		"user_id": userID,
	}).Debug("cart created lazily")

	return fresh, nil
}

// AddItem добавляет позицию в корзину пользователя. Цена фиксируется из
// карточки товара на момент добавления; одинаковые товары остаются
// независимыми строками.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int32) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, domain.ErrItemQtyInvalid
	}

	product, err := s.products.Get(productID)
	if err != nil {
		return domain.Cart{}, err
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:         uuid.NewString(),
			ProductID:  product.ID,
			Qty:        qty,
			PriceMinor: product.PriceMinor,
			CreatedAt:  time.Now().UTC(),
		})
		return nil
	})
}

// UpdateItemQty изменяет количество в существующей позиции.
func (s *Service) UpdateItemQty(ctx context.Context, userID, itemID string, qty int32) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, domain.ErrItemQtyInvalid
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items[i].Qty = qty
				return nil
			}
		}
		return domain.ErrCartItemNotFound
	})
}

// RemoveItem удаляет позицию из корзины.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (domain.Cart, error) {
	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
		return domain.ErrCartItemNotFound
	})
}

// TotalPrice возвращает сумму корзины в минимальных единицах. Пустая корзина — 0.
func (s *Service) TotalPrice(ctx context.Context, cartID string) (int64, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return 0, err
	}
	return cart.TotalMinor(), nil
}

// ClearCart удаляет все позиции корзины. Операция идемпотентна.
func (s *Service) ClearCart(ctx context.Context, cartID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.carts.ClearItems(cartID)
}

// mutate применяет изменение к корзине пользователя с ограниченным числом
// повторов: проигрыш optimistic locking приводит к повторному чтению свежей
// версии, проигрыш всех попыток — ErrCartConflict.
func (s *Service) mutate(ctx context.Context, userID string, apply func(*domain.Cart) error) (domain.Cart, error) {
	var lastErr error

	for attempt := 0; attempt < saveRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Cart{}, err
		}

		cart, err := s.GetCartByUser(ctx, userID)
		if err != nil {
			return domain.Cart{}, err
		}

		if err := apply(&cart); err != nil {
			return domain.Cart{}, err
		}

		if err := s.carts.Save(cart); err != nil {
			if errors.Is(err, domain.ErrCartConflict) {
				lastErr = err
				s.logger.WithFields(log.Fields{
					"cart_id": cart.ID,
					"attempt": attempt + 1,
				}).Debug("cart save lost optimistic locking race, retrying")
				continue
			}
			return domain.Cart{}, fmt.Errorf("save cart %s: %w", cart.ID, err)
		}

		cart.Version++
		return cart, nil
	}

	return domain.Cart{}, lastErr
}
