package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
	"stockroom/internal/infrastructure/mysql"
)

// MySQLStockRepository owns the stock_records table. The variant_id column is
// NOT NULL with 0 meaning "base product", because MySQL unique keys treat
// NULLs as distinct and the (product, variant, location) key must be unique.
type MySQLStockRepository struct {
	db *sql.DB
}

func NewMySQLStockRepository(db *sql.DB) *MySQLStockRepository {
	return &MySQLStockRepository{db: db}
}

func variantColumn(variantID *int) int {
	if variantID == nil {
		return 0
	}
	return *variantID
}

func variantPointer(column int) *int {
	if column == 0 {
		return nil
	}
	return &column
}

// Get returns the record for the key, or nil when none exists.
func (r *MySQLStockRepository) Get(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID int) (*domain.StockRecord, error) {
	return r.get(ctx, q, productID, variantID, locationID, false)
}

// GetForUpdate reads the record under a row lock, serializing concurrent
// allocations of the same (product, variant) key. Returns nil when no record
// exists; locking a missing row is a no-op and the caller's availability
// check will treat it as zero stock.
func (r *MySQLStockRepository) GetForUpdate(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID int) (*domain.StockRecord, error) {
	return r.get(ctx, q, productID, variantID, locationID, true)
}

func (r *MySQLStockRepository) get(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID int, forUpdate bool) (*domain.StockRecord, error) {
	query := `
		SELECT id, product_id, variant_id, location_id, quantity, created_at, updated_at
		FROM stock_records
		WHERE product_id = ? AND variant_id = ? AND location_id = ?`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var rec domain.StockRecord
	var variantCol int
	err := q.QueryRowContext(ctx, query, productID, variantColumn(variantID), locationID).Scan(
		&rec.ID, &rec.ProductID, &variantCol, &rec.LocationID, &rec.Quantity,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying stock record: %w", err)
	}

	rec.VariantID = variantPointer(variantCol)
	return &rec, nil
}

// AdjustQuantity atomically applies delta to the record, creating it when
// absent. The quantity guard lives in the WHERE clause so a concurrent writer
// can never drive the row negative between read and write.
func (r *MySQLStockRepository) AdjustQuantity(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID, delta int) (*domain.StockRecord, error) {
	result, err := q.ExecContext(ctx, `
		UPDATE stock_records
		SET quantity = quantity + ?, updated_at = NOW()
		WHERE product_id = ? AND variant_id = ? AND location_id = ?
		  AND quantity + ? >= 0`,
		delta, productID, variantColumn(variantID), locationID, delta,
	)
	if err != nil {
		return nil, fmt.Errorf("adjusting stock record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	if affected > 0 {
		return r.get(ctx, q, productID, variantID, locationID, false)
	}

	existing, err := r.get(ctx, q, productID, variantID, locationID, false)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Row exists but the guard refused the delta.
		return nil, errors.NewNegativeStockError(productID, variantID, locationID, delta)
	}
	if delta < 0 {
		return nil, errors.NewNegativeStockError(productID, variantID, locationID, delta)
	}

	return r.insert(ctx, q, productID, variantID, locationID, delta)
}

func (r *MySQLStockRepository) insert(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID, quantity int) (*domain.StockRecord, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO stock_records (product_id, variant_id, location_id, quantity)
		VALUES (?, ?, ?, ?)`,
		productID, variantColumn(variantID), locationID, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting stock record: %w", err)
	}

	return r.get(ctx, q, productID, variantID, locationID, false)
}

// ListByProduct returns every record for the product across all locations and
// variants, ordered by (variant, location).
func (r *MySQLStockRepository) ListByProduct(ctx context.Context, q mysql.Querier, productID int) ([]domain.StockRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, variant_id, location_id, quantity, created_at, updated_at
		FROM stock_records
		WHERE product_id = ?
		ORDER BY variant_id, location_id`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying stock by product: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByLocation returns every record held at a location, ordered by
// (product, variant).
func (r *MySQLStockRepository) ListByLocation(ctx context.Context, q mysql.Querier, locationID int) ([]domain.StockRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, variant_id, location_id, quantity, created_at, updated_at
		FROM stock_records
		WHERE location_id = ?
		ORDER BY product_id, variant_id`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying stock by location: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SumAllocated totals the quantity held everywhere except the warehouse for
// one (product, variant) key.
func (r *MySQLStockRepository) SumAllocated(ctx context.Context, q mysql.Querier, productID int, variantID *int, warehouseLocationID int) (int, error) {
	var total int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_records
		WHERE product_id = ? AND variant_id = ? AND location_id <> ?`,
		productID, variantColumn(variantID), warehouseLocationID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing allocated stock: %w", err)
	}
	return total, nil
}

func scanRecords(rows *sql.Rows) ([]domain.StockRecord, error) {
	var records []domain.StockRecord
	for rows.Next() {
		var rec domain.StockRecord
		var variantCol int
		err := rows.Scan(
			&rec.ID, &rec.ProductID, &variantCol, &rec.LocationID, &rec.Quantity,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stock record row: %w", err)
		}
		rec.VariantID = variantPointer(variantCol)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock record rows: %w", err)
	}

	return records, nil
}
