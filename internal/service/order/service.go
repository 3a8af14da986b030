package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

// Options задаёт параметры сервиса заказов.
type Options struct {
	Logger        *log.Entry
	Outbox        domain.OutboxRepository
	Metrics       *metrics.CheckoutMetrics
	StockTracking bool
}

// Option настраивает Service.
type Option func(*Options)

// WithLogger задаёт logger для сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithOutbox подключает transactional outbox для событий заказа.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(opts *Options) {
		opts.Outbox = outbox
	}
}

// WithMetrics подключает метрики оформления.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithStockTracking включает списание остатков при конвертации корзины.
func WithStockTracking() Option {
	return func(opts *Options) {
		opts.StockTracking = true
	}
}

// Service реализует конвертацию корзины в заказ и чтение заказов.
type Service struct {
	orders        domain.OrderRepository
	carts         domain.CartRepository
	users         domain.UserRepository
	outbox        domain.OutboxRepository
	metrics       *metrics.CheckoutMetrics
	logger        *log.Entry
	stockTracking bool
}

// NewService создаёт сервис заказов.
func NewService(orders domain.OrderRepository, carts domain.CartRepository, users domain.UserRepository, options ...Option) *Service {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}

	return &Service{
		orders:        orders,
		carts:         carts,
		users:         users,
		outbox:        opts.Outbox,
		metrics:       opts.Metrics,
		logger:        logger,
		stockTracking: opts.StockTracking,
	}
}

// PlaceOrder конвертирует корзину пользователя в заказ.
//
// Атомарная единица — ConvertCart: сверка и инкремент версии корзины,
// опциональное списание остатков, очистка позиций корзины, запись заказа с
// позициями. После коммита корзина уже пуста: повтор по той же корзине
// упирается в ErrEmptyCart, конкурент по той же версии — в ErrCartConflict.
// ClearItems после коммита — идемпотентная страховка для хранилищ, чей
// ConvertCart не очищает корзину сам; её сбой логируется, заказ не откатывает.
func (s *Service) PlaceOrder(ctx context.Context, userID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUserIDRequired
	}
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	started := time.Now()
	if s.metrics != nil {
		s.metrics.CheckoutStarted()
		defer func() {
			s.metrics.CheckoutFinished()
			s.metrics.RecordCheckoutDuration(time.Since(started))
		}()
	}

	if _, err := s.users.Get(userID); err != nil {
		s.recordFailure(err)
		return domain.Order{}, err
	}

	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			// Отсутствующая корзина равнозначна пустой.
			s.recordFailure(domain.ErrEmptyCart)
			return domain.Order{}, domain.ErrEmptyCart
		}
		s.recordFailure(err)
		return domain.Order{}, fmt.Errorf("load cart for user %s: %w", userID, err)
	}
	if cart.IsEmpty() {
		s.recordFailure(domain.ErrEmptyCart)
		return domain.Order{}, domain.ErrEmptyCart
	}

	order := s.snapshotCart(userID, cart)
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		s.recordFailure(errs[0])
		return domain.Order{}, errs[0]
	}

	if err := s.orders.ConvertCart(order, cart.ID, cart.Version, s.stockTracking); err != nil {
		s.recordFailure(err)
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"user_id":      userID,
		"amount_minor": order.AmountMinor,
		"items":        len(order.Items),
	}).Info("order placed")

	s.enqueuePlacedEvent(order)

	// Идемпотентная страховка: ConvertCart уже очистил корзину в своей
	// атомарной единице, повторная очистка — успешный no-op.
	if err := s.carts.ClearItems(cart.ID); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"cart_id":  cart.ID,
		}).Warn("cart clear after checkout failed")
	}

	return order, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	return s.orders.Get(orderID)
}

// ListUserOrders возвращает заказы пользователя по возрастанию времени создания.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(userID); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(userID)
}

// snapshotCart переносит позиции корзины в заказ один-к-одному: одинаковые
// товары остаются независимыми строками, цена берётся зафиксированной на
// момент добавления в корзину.
func (s *Service) snapshotCart(userID string, cart domain.Cart) domain.Order {
	now := time.Now().UTC()

	items := make([]domain.OrderItem, 0, len(cart.Items))
	var total int64
	for _, ci := range cart.Items {
		items = append(items, domain.OrderItem{
			ID:         uuid.NewString(),
			ProductID:  ci.ProductID,
			Qty:        ci.Qty,
			PriceMinor: ci.PriceMinor,
			CreatedAt:  now,
		})
		total += int64(ci.Qty) * ci.PriceMinor
	}

	return domain.Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      domain.OrderStatusPending,
		AmountMinor: total,
		Items:       items,
		CreatedAt:   now,
	}
}

// enqueuePlacedEvent кладёт событие order.placed в outbox. Сбой не влияет на
// результат оформления: заказ уже зафиксирован.
func (s *Service) enqueuePlacedEvent(order domain.Order) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"status":       string(order.Status),
		"amount_minor": order.AmountMinor,
		"item_count":   len(order.Items),
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("marshal order.placed payload failed")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     "order.placed",
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("enqueue order.placed failed")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

func (s *Service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		s.metrics.RecordEmptyCartDenied()
		s.metrics.RecordCheckoutFailed("empty_cart")
	case errors.Is(err, domain.ErrCartConflict):
		s.metrics.RecordCartConflict()
		s.metrics.RecordCheckoutFailed("conflict")
	case errors.Is(err, domain.ErrInsufficientStock):
		s.metrics.RecordCheckoutFailed("insufficient_stock")
	case domain.IsNotFound(err):
		s.metrics.RecordCheckoutFailed("not_found")
	default:
		s.metrics.RecordCheckoutFailed("internal")
	}
}
