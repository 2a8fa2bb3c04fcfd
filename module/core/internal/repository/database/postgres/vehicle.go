package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/repository/database"
)

var _ database.VehicleRepository = (*VehicleRepo)(nil)

type VehicleRepo struct {
	db *sql.DB
}

func NewVehicleRepo(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

const vehicleColumns = `vehicle_id, type, assigned_region, COALESCE(telemetry_url, ''), COALESCE(phone_number, '')`

func (r *VehicleRepo) GetAll(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY vehicle_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanVehicles(rows)
}

func (r *VehicleRepo) GetByType(ctx context.Context, serviceType string) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE type = $1 ORDER BY vehicle_id`,
		serviceType,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanVehicles(rows)
}

func (r *VehicleRepo) GetByID(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE vehicle_id = $1`,
		vehicleID,
	)

	var v domain.Vehicle
	if err := row.Scan(&v.VehicleID, &v.Type, &v.AssignedRegion, &v.TelemetryURL, &v.PhoneNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle %s", domain.ErrNotFound, vehicleID)
		}
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepo) Upsert(ctx context.Context, v *domain.Vehicle) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (vehicle_id, type, assigned_region, telemetry_url, phone_number)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (vehicle_id) DO UPDATE SET type = $2, assigned_region = $3, telemetry_url = $4, phone_number = $5`,
		v.VehicleID, v.Type, v.AssignedRegion, v.TelemetryURL, v.PhoneNumber,
	)
	return err
}

func (r *VehicleRepo) Delete(ctx context.Context, vehicleID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vehicles WHERE vehicle_id = $1`,
		vehicleID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: vehicle %s", domain.ErrNotFound, vehicleID)
	}
	return nil
}

func scanVehicles(rows *sql.Rows) ([]domain.Vehicle, error) {
	var results []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.VehicleID, &v.Type, &v.AssignedRegion, &v.TelemetryURL, &v.PhoneNumber); err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}
