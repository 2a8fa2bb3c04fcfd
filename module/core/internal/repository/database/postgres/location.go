package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// Insert appends one sample. The table is append-only: recording the same
// sample twice stores two rows.
func (r *LocationRepo) Insert(ctx context.Context, sample *domain.PositionSample) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicle_locations (vehicle_id, latitude, longitude, timestamp) VALUES ($1, $2, $3, $4)`,
		sample.VehicleID, sample.Location.Lat, sample.Location.Lon, sample.Location.Timestamp,
	)
	return err
}

func (r *LocationRepo) GetLatest(ctx context.Context, vehicleID string) (*domain.PositionSample, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT vehicle_id, latitude, longitude, timestamp FROM vehicle_locations WHERE vehicle_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		vehicleID,
	)

	var s domain.PositionSample
	if err := row.Scan(&s.VehicleID, &s.Location.Lat, &s.Location.Lon, &s.Location.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no samples for vehicle %s", domain.ErrNotFound, vehicleID)
		}
		return nil, err
	}
	return &s, nil
}

func (r *LocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT vehicle_id, latitude, longitude, timestamp FROM vehicle_locations WHERE vehicle_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.VehicleID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.PositionSample
	for rows.Next() {
		var s domain.PositionSample
		if err := rows.Scan(&s.VehicleID, &s.Location.Lat, &s.Location.Lon, &s.Location.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// GetLatestPerVehicle returns the most recent sample for every vehicle that
// has at least one sample. Backs the region compliance query.
func (r *LocationRepo) GetLatestPerVehicle(ctx context.Context) ([]domain.PositionSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT ON (vehicle_id) vehicle_id, latitude, longitude, timestamp FROM vehicle_locations ORDER BY vehicle_id, timestamp DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.PositionSample
	for rows.Next() {
		var s domain.PositionSample
		if err := rows.Scan(&s.VehicleID, &s.Location.Lat, &s.Location.Lon, &s.Location.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *LocationRepo) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM vehicle_locations WHERE vehicle_id = $1`,
		vehicleID,
	)
	return err
}
