package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан конвертацией корзины; исполнение ещё не начато.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён процессом исполнения.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusCancelled — заказ отменён до исполнения.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderItem — неизменяемый снимок позиции на момент оформления.
// Последующие изменения цены товара не затрагивают уже созданные заказы.
type OrderItem struct {
	ID         string
	ProductID  string
	Qty        int32
	PriceMinor int64
	CreatedAt  time.Time
}

// Order агрегирует состояние заказа и его позиции. После создания меняется
// только Status; состав и сумма неизменны.
type Order struct {
	ID          string
	UserID      string
	Status      OrderStatus
	AmountMinor int64
	Items       []OrderItem
	CreatedAt   time.Time
}

// SetStatus переводит заказ в новый статус. Разрешены только переходы из
// pending; процесс исполнения живёт вне этого сервиса.
func (o *Order) SetStatus(next OrderStatus) error {
	if !next.Valid() {
		return ErrStatusTransition
	}
	if o.Status == next {
		return nil
	}
	if o.Status != OrderStatusPending {
		return ErrStatusTransition
	}
	o.Status = next
	return nil
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
