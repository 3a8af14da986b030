package domain

import "time"

// CartItem — одна позиция корзины. Цена за единицу фиксируется в момент
// добавления и используется и при подсчёте итога, и при конвертации в заказ.
type CartItem struct {
	ID         string
	ProductID  string
	Qty        int32
	PriceMinor int64
	CreatedAt  time.Time
}

// Cart — единственная активная корзина пользователя. Version — токен
// optimistic locking: любое изменение состава и конвертация в заказ
// инкрементируют его.
type Cart struct {
	ID        string
	UserID    string
	Version   int64
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalMinor возвращает точную сумму корзины в минимальных единицах.
// Пустая корзина стоит ноль.
func (c *Cart) TotalMinor() int64 {
	var total int64
	for _, item := range c.Items {
		total += int64(item.Qty) * item.PriceMinor
	}
	return total
}

// IsEmpty сообщает, есть ли в корзине хотя бы одна позиция.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ValidateInvariants проверяет позиции корзины.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	if c.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	for _, item := range c.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	return errs
}
