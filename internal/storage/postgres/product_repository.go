package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const productColumns = `id, name, brand, description, price_minor, stock, category_id, created_at, updated_at`

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, brand, description, price_minor, stock, category_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		product.ID, product.Name, product.Brand, product.Description,
		product.PriceMinor, product.Stock, nullableID(product.CategoryID),
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *productRepository) Get(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id)

	product, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) Update(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1,
		    brand = $2,
		    description = $3,
		    price_minor = $4,
		    stock = $5,
		    category_id = $6,
		    updated_at = $7
		WHERE id = $8
	`,
		product.Name, product.Brand, product.Description,
		product.PriceMinor, product.Stock, nullableID(product.CategoryID),
		product.UpdatedAt, product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (r *productRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (r *productRepository) List() ([]domain.Product, error) {
	return r.query(`SELECT `+productColumns+` FROM products ORDER BY name ASC, id ASC`)
}

func (r *productRepository) ListByCategory(categoryID string) ([]domain.Product, error) {
	return r.query(`
		SELECT `+productColumns+` FROM products
		WHERE category_id = $1
		ORDER BY name ASC, id ASC
	`, categoryID)
}

func (r *productRepository) ListByCategoryAndBrand(categoryID, brand string) ([]domain.Product, error) {
	return r.query(`
		SELECT `+productColumns+` FROM products
		WHERE category_id = $1 AND LOWER(brand) = LOWER($2)
		ORDER BY name ASC, id ASC
	`, categoryID, brand)
}

func (r *productRepository) ListByBrandAndName(brand, name string) ([]domain.Product, error) {
	return r.query(`
		SELECT `+productColumns+` FROM products
		WHERE LOWER(brand) = LOWER($1) AND LOWER(name) = LOWER($2)
		ORDER BY name ASC, id ASC
	`, brand, name)
}

func (r *productRepository) ListByBrand(brand string) ([]domain.Product, error) {
	return r.query(`
		SELECT `+productColumns+` FROM products
		WHERE LOWER(brand) = LOWER($1)
		ORDER BY name ASC, id ASC
	`, brand)
}

func (r *productRepository) ListByName(name string) ([]domain.Product, error) {
	return r.query(`
		SELECT `+productColumns+` FROM products
		WHERE LOWER(name) = LOWER($1)
		ORDER BY name ASC, id ASC
	`, name)
}

func (r *productRepository) CountByBrandAndName(brand, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products
		WHERE LOWER(brand) = LOWER($1) AND LOWER(name) = LOWER($2)
	`, brand, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) DistinctBrands() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT brand FROM products WHERE brand <> '' ORDER BY brand ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var brand string
		if err := rows.Scan(&brand); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		result = append(result, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand rows: %w", err)
	}

	return result, nil
}

func (r *productRepository) query(query string, args ...any) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return result, nil
}

func scanProduct(scan func(dest ...any) error) (domain.Product, error) {
	var (
		product    domain.Product
		categoryID sql.NullString
	)
	if err := scan(
		&product.ID, &product.Name, &product.Brand, &product.Description,
		&product.PriceMinor, &product.Stock, &categoryID,
		&product.CreatedAt, &product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	if categoryID.Valid {
		product.CategoryID = categoryID.String
	}
	return product, nil
}

// nullableID превращает пустую строку в NULL для внешних ключей.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

var _ domain.ProductRepository = (*productRepository)(nil)
