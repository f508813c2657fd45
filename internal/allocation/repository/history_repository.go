package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
	"stockroom/internal/infrastructure/mysql"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// MySQLHistoryRepository owns the append-only allocation_history table. Rows
// are inserted inside the allocation transaction and never updated.
type MySQLHistoryRepository struct {
	db *sql.DB
}

func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}

func (r *MySQLHistoryRepository) Insert(ctx context.Context, q mysql.Querier, entry domain.AllocationEntry) error {
	variantCol := 0
	if entry.VariantID != nil {
		variantCol = *entry.VariantID
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO allocation_history
			(id, product_id, variant_id, source_location_id, destination_location_id, quantity, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ProductID, variantCol, entry.SourceLocationID,
		entry.DestinationLocationID, entry.Quantity, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting allocation history entry: %w", err)
	}

	return nil
}

// List returns history entries newest first, optionally filtered by product
// and destination.
func (r *MySQLHistoryRepository) List(ctx context.Context, filter dto.HistoryFilter) ([]domain.AllocationEntry, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}

	if filter.ProductID != nil {
		conditions = append(conditions, "product_id = ?")
		args = append(args, *filter.ProductID)
	}
	if filter.DestinationLocationID != nil {
		conditions = append(conditions, "destination_location_id = ?")
		args = append(args, *filter.DestinationLocationID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, product_id, variant_id, source_location_id, destination_location_id,
		       quantity, notes, created_at
		FROM allocation_history
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		strings.Join(conditions, " AND "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying allocation history: %w", err)
	}
	defer rows.Close()

	var entries []domain.AllocationEntry
	for rows.Next() {
		var e domain.AllocationEntry
		var variantCol int
		err := rows.Scan(
			&e.ID, &e.ProductID, &variantCol, &e.SourceLocationID,
			&e.DestinationLocationID, &e.Quantity, &e.Notes, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning allocation history row: %w", err)
		}
		if variantCol != 0 {
			v := variantCol
			e.VariantID = &v
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating allocation history rows: %w", err)
	}

	return entries, nil
}
