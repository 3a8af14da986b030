package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) Create(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, cart.ID, cart.UserID, cart.Version, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		// Уникальный индекс по user_id: проигранная гонка lazy-создания.
		if isUniqueViolation(err) {
			return domain.ErrCartConflict
		}
		return fmt.Errorf("insert cart: %w", err)
	}

	return nil
}

func (r *cartRepository) Get(id string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.loadOne(ctx, `
		SELECT id, user_id, version, created_at, updated_at
		FROM carts
		WHERE id = $1
	`, id)
}

func (r *cartRepository) GetByUserID(userID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.loadOne(ctx, `
		SELECT id, user_id, version, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID)
}

func (r *cartRepository) Save(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE carts
		SET version = version + 1,
		    updated_at = $1
		WHERE id = $2
		  AND version = $3
	`, time.Now().UTC(), cart.ID, cart.Version)
	if err != nil {
		return fmt.Errorf("update cart version: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, checkErr := r.cartExistsTx(ctx, tx, cart.ID)
		if checkErr != nil {
			err = checkErr
			return err
		}
		if !exists {
			err = domain.ErrCartNotFound
			return err
		}
		err = domain.ErrCartConflict
		return err
	}

	// Полная замена состава: проще и надёжнее, чем дифф позиций.
	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}

	for _, item := range cart.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cart_items (id, cart_id, product_id, qty, price_minor, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, item.ID, cart.ID, item.ProductID, item.Qty, item.PriceMinor, item.CreatedAt); err != nil {
			return fmt.Errorf("insert cart item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save cart: %w", err)
	}

	return nil
}

func (r *cartRepository) ClearItems(cartID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	exists, err := r.cartExists(ctx, cartID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrCartNotFound
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	return nil
}

func (r *cartRepository) loadOne(ctx context.Context, query string, arg any) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&cart.ID, &cart.UserID, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	items, err := r.loadItems(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.Items = items

	return cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, qty, price_minor, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC, id ASC
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Qty, &item.PriceMinor, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return items, nil
}

func (r *cartRepository) cartExists(ctx context.Context, cartID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)
	`, cartID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check cart exists: %w", err)
	}
	return exists, nil
}

func (r *cartRepository) cartExistsTx(ctx context.Context, tx *sql.Tx, cartID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE id = $1`, cartID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check cart exists: %w", err)
}

var _ domain.CartRepository = (*cartRepository)(nil)
