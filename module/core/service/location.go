package service

import (
	"context"
	"fmt"
	"time"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/repository/database"
)

// LocationService owns stored telemetry: sample recording with the excursion
// check, history and path queries, and the fleet compliance query.
type LocationService struct {
	locations database.LocationRepository
	vehicles  database.VehicleRepository
	geofence  *GeofenceService
}

func NewLocationService(locations database.LocationRepository, vehicles database.VehicleRepository, geofence *GeofenceService) *LocationService {
	return &LocationService{
		locations: locations,
		vehicles:  vehicles,
		geofence:  geofence,
	}
}

// RecordSample validates and appends one sample, then runs the excursion
// check against the vehicle's assigned region. The returned flag reports
// whether the sample lies outside the region; an alert publish failure does
// not retract the flag.
func (s *LocationService) RecordSample(ctx context.Context, sample *domain.PositionSample) (bool, error) {
	if sample.VehicleID == "" {
		return false, fmt.Errorf("%w: vehicle_id required", domain.ErrInvalidInput)
	}
	if sample.Location.Lat < -90 || sample.Location.Lat > 90 {
		return false, fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrInvalidInput)
	}
	if sample.Location.Lon < -180 || sample.Location.Lon > 180 {
		return false, fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrInvalidInput)
	}
	if sample.Location.Timestamp.IsZero() {
		sample.Location.Timestamp = time.Now().UTC()
	}

	vehicle, err := s.vehicles.GetByID(ctx, sample.VehicleID)
	if err != nil {
		return false, err
	}

	if err := s.locations.Insert(ctx, sample); err != nil {
		return false, err
	}

	return s.geofence.CheckAndAlert(ctx, vehicle, sample)
}

func (s *LocationService) GetLatest(ctx context.Context, vehicleID string) (*domain.PositionSample, error) {
	return s.locations.GetLatest(ctx, vehicleID)
}

// GetPath reconstructs the vehicle's path and stop segments over a trailing
// window ending now. An unknown vehicle is an error; a known vehicle with no
// samples degrades to empty results.
func (s *LocationService) GetPath(ctx context.Context, vehicleID string, window time.Duration) ([]domain.PathPoint, []domain.StopSegment, error) {
	if window <= 0 {
		window = DefaultPathWindow
	}

	if _, err := s.vehicles.GetByID(ctx, vehicleID); err != nil {
		return nil, nil, err
	}

	end := time.Now().UTC()
	samples, err := s.locations.GetHistory(ctx, &domain.HistoryQuery{
		VehicleID: vehicleID,
		Start:     end.Add(-window),
		End:       end,
	})
	if err != nil {
		return nil, nil, err
	}

	path, stops := Reconstruct(samples)
	return path, stops, nil
}

func (s *LocationService) GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.vehicles.GetAll(ctx)
}

// OutsideVehicles is the compliance query: vehicles whose latest known sample
// lies outside their assigned region.
func (s *LocationService) OutsideVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := s.vehicles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.locations.GetLatestPerVehicle(ctx)
	if err != nil {
		return nil, err
	}
	return s.geofence.Outside(vehicles, latest), nil
}

// DeleteVehicle removes a vehicle and its stored samples.
func (s *LocationService) DeleteVehicle(ctx context.Context, vehicleID string) error {
	if err := s.locations.DeleteByVehicle(ctx, vehicleID); err != nil {
		return err
	}
	return s.vehicles.Delete(ctx, vehicleID)
}
