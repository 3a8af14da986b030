package order

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

type fixture struct {
	svc      *Service
	store    *memory.Store
	carts    domain.CartRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
}

// newFixture поднимает сервис заказов над in-memory хранилищем и наполняет
// корзину пользователя: 2 x 1000 + 1 x 550 = 2550.
func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()

	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	products := memory.NewProductRepository(store)
	carts := memory.NewCartRepository(store)
	orders := memory.NewOrderRepository(store)
	outbox := memory.NewOutboxRepository(store)

	now := time.Now().UTC()
	if err := users.Create(domain.User{
		ID:           "user-1",
		Email:        "buyer@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	seed := []domain.Product{
		{ID: "prod-a", Name: "Keyboard", PriceMinor: 1000, Stock: 5, CreatedAt: now},
		{ID: "prod-b", Name: "Mouse", PriceMinor: 550, Stock: 5, CreatedAt: now},
	}
	for _, p := range seed {
		if err := products.Create(p); err != nil {
			t.Fatalf("seed product %s: %v", p.ID, err)
		}
	}

	if err := carts.Create(domain.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []domain.CartItem{
			{ID: "item-1", ProductID: "prod-a", Qty: 2, PriceMinor: 1000, CreatedAt: now},
			{ID: "item-2", ProductID: "prod-b", Qty: 1, PriceMinor: 550, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	options = append([]Option{WithOutbox(outbox)}, options...)
	svc := NewService(orders, carts, users, options...)

	return &fixture{
		svc:      svc,
		store:    store,
		carts:    carts,
		products: products,
		orders:   orders,
		outbox:   outbox,
	}
}

func TestPlaceOrder(t *testing.T) {
	fx := newFixture(t)

	order, err := fx.svc.PlaceOrder(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if order.AmountMinor != 2550 {
		t.Fatalf("expected amount 2550, got %d", order.AmountMinor)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}

	stored, err := fx.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("stored order: %v", err)
	}
	if stored.AmountMinor != 2550 || len(stored.Items) != 2 {
		t.Fatalf("unexpected stored order: amount=%d items=%d", stored.AmountMinor, len(stored.Items))
	}

	cart, err := fx.carts.Get("cart-1")
	if err != nil {
		t.Fatalf("cart after checkout: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected cleared cart, got %d items", len(cart.Items))
	}
	if cart.Version != 1 {
		t.Fatalf("expected cart version bumped to 1, got %d", cart.Version)
	}
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	order, err := fx.svc.PlaceOrder(ctx, "user-1")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	// Подорожание товара после оформления не меняет уже созданный заказ.
	product, err := fx.products.Get("prod-a")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	product.PriceMinor = 9999
	if err := fx.products.Update(product); err != nil {
		t.Fatalf("update product: %v", err)
	}

	stored, err := fx.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("stored order: %v", err)
	}
	if stored.AmountMinor != 2550 {
		t.Fatalf("expected frozen amount 2550, got %d", stored.AmountMinor)
	}
	for _, item := range stored.Items {
		if item.ProductID == "prod-a" && item.PriceMinor != 1000 {
			t.Fatalf("expected captured price 1000, got %d", item.PriceMinor)
		}
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.carts.ClearItems("cart-1"); err != nil {
		t.Fatalf("clear cart: %v", err)
	}

	if _, err := fx.svc.PlaceOrder(ctx, "user-1"); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestPlaceOrderMissingCartEqualsEmpty(t *testing.T) {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	if err := users.Create(domain.User{ID: "user-2", Email: "x@y.z", PasswordHash: "h"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := NewService(memory.NewOrderRepository(store), memory.NewCartRepository(store), users)

	if _, err := svc.PlaceOrder(context.Background(), "user-2"); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart for user without cart, got %v", err)
	}
}

func TestPlaceOrderUnknownUser(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.svc.PlaceOrder(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := fx.svc.PlaceOrder(context.Background(), ""); !errors.Is(err, domain.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestPlaceOrderEnqueuesOutboxEvent(t *testing.T) {
	fx := newFixture(t)

	order, err := fx.svc.PlaceOrder(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	pending, err := fx.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("PullPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(pending))
	}
	msg := pending[0]
	if msg.EventType != "order.placed" || msg.AggregateID != order.ID || msg.AggregateType != "order" {
		t.Fatalf("unexpected outbox message: %+v", msg)
	}
}

func TestPlaceOrderSucceedsWhenOutboxFails(t *testing.T) {
	fx := newFixture(t)
	fx.svc.outbox = failingOutbox{}

	order, err := fx.svc.PlaceOrder(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("PlaceOrder must not fail on outbox error: %v", err)
	}
	if _, err := fx.orders.Get(order.ID); err != nil {
		t.Fatalf("order must be persisted despite outbox error: %v", err)
	}
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	fx := newFixture(t, WithStockTracking())

	if _, err := fx.svc.PlaceOrder(context.Background(), "user-1"); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	productA, err := fx.products.Get("prod-a")
	if err != nil {
		t.Fatalf("prod-a: %v", err)
	}
	if productA.Stock != 3 {
		t.Fatalf("expected prod-a stock 3, got %d", productA.Stock)
	}

	productB, err := fx.products.Get("prod-b")
	if err != nil {
		t.Fatalf("prod-b: %v", err)
	}
	if productB.Stock != 4 {
		t.Fatalf("expected prod-b stock 4, got %d", productB.Stock)
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	fx := newFixture(t, WithStockTracking())

	product, err := fx.products.Get("prod-a")
	if err != nil {
		t.Fatalf("prod-a: %v", err)
	}
	product.Stock = 1
	if err := fx.products.Update(product); err != nil {
		t.Fatalf("update stock: %v", err)
	}

	if _, err := fx.svc.PlaceOrder(context.Background(), "user-1"); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Корзина и остатки не затронуты отклонённой конвертацией.
	cart, err := fx.carts.Get("cart-1")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if cart.IsEmpty() || cart.Version != 0 {
		t.Fatalf("cart must stay intact: items=%d version=%d", len(cart.Items), cart.Version)
	}
	productB, err := fx.products.Get("prod-b")
	if err != nil {
		t.Fatalf("prod-b: %v", err)
	}
	if productB.Stock != 5 {
		t.Fatalf("expected untouched prod-b stock 5, got %d", productB.Stock)
	}
}

func TestPlaceOrderConcurrentSingleWinner(t *testing.T) {
	fx := newFixture(t)

	var placed, rejected atomic.Int32
	var eg errgroup.Group
	for i := 0; i < 2; i++ {
		eg.Go(func() error {
			_, err := fx.svc.PlaceOrder(context.Background(), "user-1")
			switch {
			case err == nil:
				placed.Add(1)
				return nil
			case errors.Is(err, domain.ErrCartConflict), errors.Is(err, domain.ErrEmptyCart):
				rejected.Add(1)
				return nil
			default:
				return err
			}
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("unexpected checkout error: %v", err)
	}

	if placed.Load() != 1 || rejected.Load() != 1 {
		t.Fatalf("expected exactly one winner, got placed=%d rejected=%d", placed.Load(), rejected.Load())
	}

	orders, err := fx.orders.ListByUser("user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected a single persisted order, got %d", len(orders))
	}
	if orders[0].AmountMinor != 2550 {
		t.Fatalf("expected amount 2550, got %d", orders[0].AmountMinor)
	}
}

func TestGetOrder(t *testing.T) {
	fx := newFixture(t)

	order, err := fx.svc.PlaceOrder(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	got, err := fx.svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.ID != order.ID || got.AmountMinor != order.AmountMinor {
		t.Fatalf("unexpected order: %+v", got)
	}

	if _, err := fx.svc.GetOrder(context.Background(), "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestListUserOrdersAscending(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, err := fx.svc.PlaceOrder(ctx, "user-1")
	if err != nil {
		t.Fatalf("first PlaceOrder: %v", err)
	}

	// Вторая корзина того же пользователя через прямое наполнение.
	cart, err := fx.carts.Get("cart-1")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	cart.Items = []domain.CartItem{
		{ID: "item-3", ProductID: "prod-b", Qty: 2, PriceMinor: 550, CreatedAt: time.Now().UTC()},
	}
	if err := fx.carts.Save(cart); err != nil {
		t.Fatalf("refill cart: %v", err)
	}

	second, err := fx.svc.PlaceOrder(ctx, "user-1")
	if err != nil {
		t.Fatalf("second PlaceOrder: %v", err)
	}

	orders, err := fx.svc.ListUserOrders(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListUserOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != first.ID || orders[1].ID != second.ID {
		t.Fatalf("expected ascending order by creation, got %s then %s", orders[0].ID, orders[1].ID)
	}

	if _, err := fx.svc.ListUserOrders(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// TestPlaceOrderRetryBeforePostCommitClear повторяет оформление в момент между
// коммитом конвертации и страховочной очисткой: корзина обязана быть пустой
// уже после коммита, второй заказ из неё не собирается.
func TestPlaceOrderRetryBeforePostCommitClear(t *testing.T) {
	fx := newFixture(t)

	hooked := &clearHookCarts{CartRepository: fx.carts}
	svc := NewService(fx.orders, hooked, memory.NewUserRepository(fx.store), WithOutbox(fx.outbox))

	retryErr := errors.New("hook not fired")
	hooked.onClear = func() {
		_, retryErr = svc.PlaceOrder(context.Background(), "user-1")
	}

	if _, err := svc.PlaceOrder(context.Background(), "user-1"); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !errors.Is(retryErr, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart on retry before the post-commit clear, got %v", retryErr)
	}

	orders, err := fx.orders.ListByUser("user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected a single order, got %d", len(orders))
	}
}

// clearHookCarts вызывает onClear один раз перед делегированием ClearItems.
type clearHookCarts struct {
	domain.CartRepository
	onClear func()
}

func (c *clearHookCarts) ClearItems(cartID string) error {
	if hook := c.onClear; hook != nil {
		c.onClear = nil
		hook()
	}
	return c.CartRepository.ClearItems(cartID)
}

type failingOutbox struct{}

func (failingOutbox) Enqueue(domain.OutboxMessage) (domain.OutboxMessage, error) {
	return domain.OutboxMessage{}, errors.New("outbox unavailable")
}

func (failingOutbox) PullPending(int) ([]domain.OutboxMessage, error) { return nil, nil }

func (failingOutbox) MarkSent(string) error { return nil }

func (failingOutbox) MarkFailed(string) error { return nil }

func (failingOutbox) Stats() (domain.OutboxStats, error) { return domain.OutboxStats{}, nil }
