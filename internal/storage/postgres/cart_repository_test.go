package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func newMockCartRepo(t *testing.T) (domain.CartRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewCartRepository(NewStoreWithDB(db)), mock
}

func TestCartRepository_SaveReplacesItems(t *testing.T) {
	repo, mock := newMockCartRepo(t)
	now := time.Now().UTC()
	cart := domain.Cart{
		ID:      "cart-1",
		UserID:  "user-1",
		Version: 2,
		Items: []domain.CartItem{
			{ID: "ci-1", ProductID: "product-a", Qty: 2, PriceMinor: 1000, CreatedAt: now},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE carts").
		WithArgs(sqlmock.AnyArg(), cart.ID, cart.Version).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(cart.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs("ci-1", cart.ID, "product-a", int32(2), int64(1000), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(cart)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SaveStaleVersion(t *testing.T) {
	repo, mock := newMockCartRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE carts").
		WithArgs(sqlmock.AnyArg(), "cart-1", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM carts").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectRollback()

	err := repo.Save(domain.Cart{ID: "cart-1", UserID: "user-1", Version: 5})

	assert.ErrorIs(t, err, domain.ErrCartConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_CreateDuplicateUser(t *testing.T) {
	repo, mock := newMockCartRepo(t)

	mock.ExpectExec("INSERT INTO carts").
		WithArgs("cart-2", "user-1", int64(0), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&duplicateKeyError{})

	err := repo.Create(domain.Cart{ID: "cart-2", UserID: "user-1"})

	// Нарушение уникальности маппится в конфликт только для настоящего pg-кода,
	// прочие ошибки пробрасываются как есть.
	assert.Error(t, err)
}

type duplicateKeyError struct{}

func (*duplicateKeyError) Error() string { return "duplicate key value violates unique constraint" }

func TestCartRepository_GetWithItems(t *testing.T) {
	repo, mock := newMockCartRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM carts WHERE id").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "version", "created_at", "updated_at"}).
			AddRow("cart-1", "user-1", int64(3), now, now))
	mock.ExpectQuery("SELECT (.+) FROM cart_items").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "qty", "price_minor", "created_at"}).
			AddRow("ci-1", "product-a", int32(2), int64(1000), now).
			AddRow("ci-2", "product-b", int32(1), int64(550), now))

	cart, err := repo.Get("cart-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), cart.Version)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, int64(2550), cart.TotalMinor())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_ClearItems(t *testing.T) {
	repo, mock := newMockCartRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.ClearItems("cart-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_ClearItemsUnknownCart(t *testing.T) {
	repo, mock := newMockCartRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.ClearItems("ghost")

	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}
