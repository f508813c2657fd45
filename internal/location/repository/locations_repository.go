package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

// MySQLLocationRepository reads the branch/warehouse directory.
type MySQLLocationRepository struct {
	db *sql.DB
}

func NewMySQLLocationRepository(db *sql.DB) *MySQLLocationRepository {
	return &MySQLLocationRepository{db: db}
}

func (r *MySQLLocationRepository) FindByID(ctx context.Context, id int) (*domain.Location, error) {
	query := `
		SELECT id, name, kind, is_active, created_at, updated_at
		FROM locations
		WHERE id = ?`

	var loc domain.Location
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&loc.ID, &loc.Name, &loc.Kind, &loc.IsActive,
		&loc.CreatedAt, &loc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("location with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying location by id: %w", err)
	}

	return &loc, nil
}

func (r *MySQLLocationRepository) ListBranches(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, is_active, created_at, updated_at
		FROM locations
		WHERE kind = ? AND is_active = 1
		ORDER BY id`,
		domain.LocationKindBranch,
	)
	if err != nil {
		return nil, fmt.Errorf("querying branches: %w", err)
	}
	defer rows.Close()

	var branches []domain.Location
	for rows.Next() {
		var loc domain.Location
		err := rows.Scan(
			&loc.ID, &loc.Name, &loc.Kind, &loc.IsActive,
			&loc.CreatedAt, &loc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		branches = append(branches, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}

	return branches, nil
}
