package service

import (
	"context"

	"github.com/google/uuid"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/repository/publisher"
)

// GeofenceService evaluates vehicle positions against named bounding-box
// regions and raises excursion alerts when a recorded sample falls outside
// the vehicle's assigned region.
type GeofenceService struct {
	publisher publisher.AlertPublisher
	regions   map[string]domain.Region
}

func NewGeofenceService(pub publisher.AlertPublisher, regions []domain.Region) *GeofenceService {
	byName := make(map[string]domain.Region, len(regions))
	for _, r := range regions {
		byName[r.Name] = r
	}
	return &GeofenceService{
		publisher: pub,
		regions:   byName,
	}
}

// IsInside reports whether the point lies inside the named region. The second
// result is false when no region with that name is configured.
func (s *GeofenceService) IsInside(regionName string, lat, lon float64) (inside, known bool) {
	r, ok := s.regions[regionName]
	if !ok {
		return false, false
	}
	return r.Contains(lat, lon), true
}

// CheckAndAlert runs the excursion check for a freshly recorded sample. When
// the sample lies outside the vehicle's assigned region an alert is published
// and the out-of-region flag is true. A vehicle assigned to an unconfigured
// region cannot be evaluated and is never flagged.
func (s *GeofenceService) CheckAndAlert(ctx context.Context, vehicle *domain.Vehicle, sample *domain.PositionSample) (bool, error) {
	inside, known := s.IsInside(vehicle.AssignedRegion, sample.Location.Lat, sample.Location.Lon)
	if !known || inside {
		return false, nil
	}

	alert := &domain.RegionAlert{
		AlertID:   uuid.NewString(),
		VehicleID: vehicle.VehicleID,
		Region:    vehicle.AssignedRegion,
		Event:     domain.RegionExit,
		Location:  sample.Location,
		Timestamp: sample.Location.Timestamp.Unix(),
	}
	if err := s.publisher.PublishAlert(ctx, alert); err != nil {
		return true, err
	}
	return true, nil
}

// Outside returns the subset of vehicles whose most recent sample lies
// outside their assigned region. Vehicles with no sample, or assigned to an
// unconfigured region, are not flagged; a vehicle that has re-entered its
// region is no longer reported.
func (s *GeofenceService) Outside(vehicles []domain.Vehicle, latest []domain.PositionSample) []domain.Vehicle {
	latestByVehicle := make(map[string]domain.PositionSample, len(latest))
	for _, sample := range latest {
		latestByVehicle[sample.VehicleID] = sample
	}

	var out []domain.Vehicle
	for _, v := range vehicles {
		sample, ok := latestByVehicle[v.VehicleID]
		if !ok {
			continue
		}
		inside, known := s.IsInside(v.AssignedRegion, sample.Location.Lat, sample.Location.Lon)
		if known && !inside {
			out = append(out, v)
		}
	}
	return out
}
