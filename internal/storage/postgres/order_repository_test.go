package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func newMockRepo(t *testing.T) (domain.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewOrderRepository(NewStoreWithDB(db)), mock
}

func sampleOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:          "order-1",
		UserID:      "user-1",
		Status:      domain.OrderStatusPending,
		AmountMinor: 2550,
		Items: []domain.OrderItem{
			{ID: "oi-1", ProductID: "product-a", Qty: 2, PriceMinor: 1000, CreatedAt: now},
			{ID: "oi-2", ProductID: "product-b", Qty: 1, PriceMinor: 550, CreatedAt: now},
		},
		CreatedAt: now,
	}
}

func TestOrderRepository_ConvertCart_Commit(t *testing.T) {
	repo, mock := newMockRepo(t)
	order := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE carts").
		WithArgs(sqlmock.AnyArg(), "cart-1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.UserID, string(order.Status), order.AmountMinor, order.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(order.Items[0].ID, order.ID, order.Items[0].ProductID, order.Items[0].Qty, order.Items[0].PriceMinor, order.Items[0].CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(order.Items[1].ID, order.ID, order.Items[1].ProductID, order.Items[1].Qty, order.Items[1].PriceMinor, order.Items[1].CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ConvertCart(order, "cart-1", 3, false)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ConvertCart_StaleVersionRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	order := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE carts").
		WithArgs(sqlmock.AnyArg(), "cart-1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM carts").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectRollback()

	err := repo.ConvertCart(order, "cart-1", 3, false)

	assert.ErrorIs(t, err, domain.ErrCartConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ConvertCart_InsufficientStockRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	order := sampleOrder()
	order.Items = order.Items[:1]
	order.AmountMinor = 2000

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE carts").
		WithArgs(sqlmock.AnyArg(), "cart-1", int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(int32(2), sqlmock.AnyArg(), "product-a").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ConvertCart(order, "cart-1", 0, true)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "amount_minor", "created_at"}).
			AddRow("order-1", "user-1", "pending", int64(2550), now))
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "qty", "price_minor", "created_at"}).
			AddRow("oi-1", "product-a", int32(2), int64(1000), now).
			AddRow("oi-2", "product-b", int32(1), int64(550), now))

	order, err := repo.Get("order-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2550), order.AmountMinor)
	assert.Len(t, order.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "amount_minor", "created_at"}))

	_, err := repo.Get("ghost")

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_ListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE user_id (.+) ORDER BY created_at ASC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "amount_minor", "created_at"}).
			AddRow("order-1", "user-1", "pending", int64(2550), now.Add(-time.Hour)).
			AddRow("order-2", "user-1", "confirmed", int64(500), now))
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "qty", "price_minor", "created_at"}))
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("order-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "qty", "price_minor", "created_at"}))

	orders, err := repo.ListByUser("user-1")

	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, "order-1", orders[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
