// README: Driver store backed by PostgreSQL.
package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"reclaim/internal/infra"
	"reclaim/internal/types"
)

type Store struct {
	db infra.DBTX
}

func NewStore(db infra.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (id, name, phone, vehicle_reg, vehicle_type, fuel_type, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(d.ID), d.Name, d.Phone, d.VehicleReg, d.VehicleType, string(d.FuelType), d.Active, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting driver: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Driver, error) {
	var d Driver
	err := s.db.QueryRow(ctx, `
		SELECT id, name, phone, vehicle_reg, vehicle_type, fuel_type, active, created_at
		FROM drivers
		WHERE id = $1`, string(id),
	).Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleReg, &d.VehicleType, &d.FuelType, &d.Active, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting driver: %w", err)
	}
	return &d, nil
}

func (s *Store) List(ctx context.Context, activeOnly bool) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, phone, vehicle_reg, vehicle_type, fuel_type, active, created_at
		FROM drivers
		WHERE active OR NOT $1
		ORDER BY name`, activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("listing drivers: %w", err)
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleReg, &d.VehicleType, &d.FuelType, &d.Active, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning driver: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
