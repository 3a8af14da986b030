package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type imageRepository struct {
	db *sql.DB
}

// NewImageRepository создаёт PostgreSQL-реализацию ImageRepository.
func NewImageRepository(store *Store) domain.ImageRepository {
	return &imageRepository{db: store.DB()}
}

func (r *imageRepository) Create(image domain.Image) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO images (
			id, product_id, file_name, content_type, data, download_url, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		image.ID, image.ProductID, image.FileName, image.ContentType,
		image.Data, image.DownloadURL, image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}

	return nil
}

func (r *imageRepository) Get(id string) (domain.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var image domain.Image
	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, file_name, content_type, data, download_url, created_at
		FROM images
		WHERE id = $1
	`, id).Scan(
		&image.ID, &image.ProductID, &image.FileName, &image.ContentType,
		&image.Data, &image.DownloadURL, &image.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Image{}, domain.ErrImageNotFound
		}
		return domain.Image{}, fmt.Errorf("select image: %w", err)
	}

	return image, nil
}

func (r *imageRepository) Update(image domain.Image) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE images
		SET file_name = $1,
		    content_type = $2,
		    data = $3,
		    download_url = $4
		WHERE id = $5
	`, image.FileName, image.ContentType, image.Data, image.DownloadURL, image.ID)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrImageNotFound
	}

	return nil
}

func (r *imageRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrImageNotFound
	}

	return nil
}

func (r *imageRepository) ListByProduct(productID string) ([]domain.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, file_name, content_type, data, download_url, created_at
		FROM images
		WHERE product_id = $1
		ORDER BY created_at ASC, id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Image, 0)
	for rows.Next() {
		var image domain.Image
		if err := rows.Scan(
			&image.ID, &image.ProductID, &image.FileName, &image.ContentType,
			&image.Data, &image.DownloadURL, &image.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		result = append(result, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image rows: %w", err)
	}

	return result, nil
}

var _ domain.ImageRepository = (*imageRepository)(nil)
