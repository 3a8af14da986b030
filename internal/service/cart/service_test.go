package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	products := memory.NewProductRepository(store)
	carts := memory.NewCartRepository(store)

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
		{ID: "prod-a", Name: "Keyboard", Brand: "Typo", PriceMinor: 1000, Stock: 10, CreatedAt: now},
		{ID: "prod-b", Name: "Mouse", Brand: "Typo", PriceMinor: 550, Stock: 10, CreatedAt: now},
	}
	for _, p := range seed {
		if err := products.Create(p); err != nil {
			t.Fatalf("seed product %s: %v", p.ID, err)
		}
	}

	return NewService(carts, products, users, nil), store
}

func TestGetCartByUserCreatesLazily(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.GetCartByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCartByUser: %v", err)
	}
	if cart.ID == "" {
		t.Fatal("expected generated cart id")
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}

	again, err := svc.GetCartByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCartByUser second call: %v", err)
	}
	if again.ID != cart.ID {
		t.Fatalf("expected the same cart on repeat, got %s and %s", cart.ID, again.ID)
	}
}

func TestGetCartByUserUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetCartByUser(context.Background(), "missing")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAddItemCapturesPrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "user-1", "prod-a", 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	item := cart.Items[0]
	if item.ProductID != "prod-a" || item.Qty != 2 || item.PriceMinor != 1000 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if cart.Version != 1 {
		t.Fatalf("expected version 1 after first save, got %d", cart.Version)
	}
}

func TestAddItemSameProductTwiceKeepsSeparateLines(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "user-1", "prod-a", 1); err != nil {
		t.Fatalf("first AddItem: %v", err)
	}
	cart, err := svc.AddItem(ctx, "user-1", "prod-a", 3)
	if err != nil {
		t.Fatalf("second AddItem: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 independent lines, got %d", len(cart.Items))
	}
	if cart.Items[0].ID == cart.Items[1].ID {
		t.Fatal("expected distinct item ids")
	}
}

func TestAddItemValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "user-1", "prod-a", 0); !errors.Is(err, domain.ErrItemQtyInvalid) {
		t.Fatalf("expected ErrItemQtyInvalid for qty=0, got %v", err)
	}
	if _, err := svc.AddItem(ctx, "user-1", "missing", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateItemQty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "user-1", "prod-b", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	updated, err := svc.UpdateItemQty(ctx, "user-1", cart.Items[0].ID, 5)
	if err != nil {
		t.Fatalf("UpdateItemQty: %v", err)
	}
	if updated.Items[0].Qty != 5 {
		t.Fatalf("expected qty 5, got %d", updated.Items[0].Qty)
	}

	if _, err := svc.UpdateItemQty(ctx, "user-1", "no-such-item", 2); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "user-1", "prod-a", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err = svc.AddItem(ctx, "user-1", "prod-b", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	removed, err := svc.RemoveItem(ctx, "user-1", cart.Items[0].ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(removed.Items) != 1 {
		t.Fatalf("expected 1 item left, got %d", len(removed.Items))
	}

	if _, err := svc.RemoveItem(ctx, "user-1", "no-such-item"); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestTotalPrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "user-1", "prod-a", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.AddItem(ctx, "user-1", "prod-b", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	total, err := svc.TotalPrice(ctx, cart.ID)
	if err != nil {
		t.Fatalf("TotalPrice: %v", err)
	}
	if total != 2550 {
		t.Fatalf("expected total 2550, got %d", total)
	}
}

func TestClearCartIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "user-1", "prod-a", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if err := svc.ClearCart(ctx, cart.ID); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if err := svc.ClearCart(ctx, cart.ID); err != nil {
		t.Fatalf("ClearCart repeat: %v", err)
	}

	total, err := svc.TotalPrice(ctx, cart.ID)
	if err != nil {
		t.Fatalf("TotalPrice: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected empty cart total 0, got %d", total)
	}
}

func TestMutateRetriesOnConflict(t *testing.T) {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	products := memory.NewProductRepository(store)
	carts := &flakyCartRepository{CartRepository: memory.NewCartRepository(store), failures: 2}

	now := time.Now().UTC()
	if err := users.Create(domain.User{ID: "user-1", Email: "a@b.c", PasswordHash: "h", CreatedAt: now}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := products.Create(domain.Product{ID: "prod-a", Name: "Keyboard", PriceMinor: 1000, CreatedAt: now}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	svc := NewService(carts, products, users, nil)

	cart, err := svc.AddItem(context.Background(), "user-1", "prod-a", 1)
	if err != nil {
		t.Fatalf("AddItem should succeed after retries: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if carts.saves != 3 {
		t.Fatalf("expected 3 save attempts, got %d", carts.saves)
	}
}

func TestMutateGivesUpAfterRetries(t *testing.T) {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	products := memory.NewProductRepository(store)
	carts := &flakyCartRepository{CartRepository: memory.NewCartRepository(store), failures: 10}

	now := time.Now().UTC()
	if err := users.Create(domain.User{ID: "user-1", Email: "a@b.c", PasswordHash: "h", CreatedAt: now}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := products.Create(domain.Product{ID: "prod-a", Name: "Keyboard", PriceMinor: 1000, CreatedAt: now}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	svc := NewService(carts, products, users, nil)

	if _, err := svc.AddItem(context.Background(), "user-1", "prod-a", 1); !errors.Is(err, domain.ErrCartConflict) {
		t.Fatalf("expected ErrCartConflict after exhausted retries, got %v", err)
	}
}

// flakyCartRepository проваливает первые failures вызовов Save конфликтом версии.
type flakyCartRepository struct {
	domain.CartRepository
	failures int
	saves    int
}

func (r *flakyCartRepository) Save(cart domain.Cart) error {
	r.saves++
	if r.saves <= r.failures {
		return domain.ErrCartConflict
	}
	return r.CartRepository.Save(cart)
}
