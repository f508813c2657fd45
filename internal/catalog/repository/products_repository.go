package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

// MySQLProductRepository reads the product/variant catalog. The allocation
// core treats this data as read-only reference material owned elsewhere.
type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `
		SELECT id, name, sku, has_variants, is_active, is_deleted, created_at, updated_at
		FROM products
		WHERE id = ? AND is_deleted = 0`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.SKU, &p.HasVariants, &p.IsActive, &p.IsDeleted,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLProductRepository) FindVariantByID(ctx context.Context, id int) (*domain.Variant, error) {
	query := `
		SELECT id, product_id, name, sku, is_active, created_at, updated_at
		FROM product_variants
		WHERE id = ?`

	var v domain.Variant
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.IsActive,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("variant with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying variant by id: %w", err)
	}

	return &v, nil
}

func (r *MySQLProductRepository) ListVariantsByProduct(ctx context.Context, productID int) ([]domain.Variant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, sku, is_active, created_at, updated_at
		FROM product_variants
		WHERE product_id = ?
		ORDER BY id`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying variants by product: %w", err)
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		var v domain.Variant
		err := rows.Scan(
			&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.IsActive,
			&v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning variant row: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating variant rows: %w", err)
	}

	return variants, nil
}
