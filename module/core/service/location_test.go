package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-dispatch/module/core/domain"
)

func tehriGeofence() *GeofenceService {
	return NewGeofenceService(&mockAlertPublisher{}, []domain.Region{tehri})
}

func knownVehicleRepo() *mockVehicleRepo {
	return &mockVehicleRepo{
		getByIDFn: func(_ context.Context, vehicleID string) (*domain.Vehicle, error) {
			return &domain.Vehicle{VehicleID: vehicleID, AssignedRegion: "Tehri District"}, nil
		},
	}
}

func TestRecordSample_InsideRegion(t *testing.T) {
	var inserted *domain.PositionSample
	locations := &mockLocationRepo{
		insertFn: func(_ context.Context, sample *domain.PositionSample) error {
			inserted = sample
			return nil
		},
	}

	svc := NewLocationService(locations, knownVehicleRepo(), tehriGeofence())
	flagged, err := svc.RecordSample(context.Background(), &domain.PositionSample{
		VehicleID: "UK07TA1234",
		Location:  domain.Location{Lat: 30.4, Lon: 78.4, Timestamp: time.Unix(1715003456, 0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flagged {
		t.Fatal("expected no out-of-region flag")
	}
	if inserted == nil {
		t.Fatal("expected Insert to be called")
	}
}

func TestRecordSample_OutsideRegionFlags(t *testing.T) {
	locations := &mockLocationRepo{
		insertFn: func(_ context.Context, _ *domain.PositionSample) error { return nil },
	}

	svc := NewLocationService(locations, knownVehicleRepo(), tehriGeofence())
	flagged, err := svc.RecordSample(context.Background(), &domain.PositionSample{
		VehicleID: "UK07TA1234",
		Location:  domain.Location{Lat: 31.0, Lon: 79.0, Timestamp: time.Unix(1715003456, 0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flagged {
		t.Fatal("expected out-of-region flag")
	}
}

func TestRecordSample_DefaultsTimestamp(t *testing.T) {
	var inserted *domain.PositionSample
	locations := &mockLocationRepo{
		insertFn: func(_ context.Context, sample *domain.PositionSample) error {
			inserted = sample
			return nil
		},
	}

	svc := NewLocationService(locations, knownVehicleRepo(), tehriGeofence())
	before := time.Now().UTC()
	_, err := svc.RecordSample(context.Background(), &domain.PositionSample{
		VehicleID: "UK07TA1234",
		Location:  domain.Location{Lat: 30.4, Lon: 78.4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted.Location.Timestamp.Before(before) {
		t.Errorf("expected timestamp defaulted to now, got %v", inserted.Location.Timestamp)
	}
}

func TestRecordSample_InvalidInput(t *testing.T) {
	svc := NewLocationService(&mockLocationRepo{}, knownVehicleRepo(), tehriGeofence())

	tests := []struct {
		name   string
		sample domain.PositionSample
	}{
		{"empty vehicle id", domain.PositionSample{Location: domain.Location{Lat: 30, Lon: 78}}},
		{"lat too low", domain.PositionSample{VehicleID: "X", Location: domain.Location{Lat: -91, Lon: 0}}},
		{"lat too high", domain.PositionSample{VehicleID: "X", Location: domain.Location{Lat: 91, Lon: 0}}},
		{"lon too low", domain.PositionSample{VehicleID: "X", Location: domain.Location{Lat: 0, Lon: -181}}},
		{"lon too high", domain.PositionSample{VehicleID: "X", Location: domain.Location{Lat: 0, Lon: 181}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := tt.sample
			_, err := svc.RecordSample(context.Background(), &sample)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRecordSample_UnknownVehicle(t *testing.T) {
	vehicles := &mockVehicleRepo{
		getByIDFn: func(_ context.Context, vehicleID string) (*domain.Vehicle, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := NewLocationService(&mockLocationRepo{}, vehicles, tehriGeofence())
	_, err := svc.RecordSample(context.Background(), &domain.PositionSample{
		VehicleID: "UNKNOWN",
		Location:  domain.Location{Lat: 30.4, Lon: 78.4},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPath_WindowBounds(t *testing.T) {
	var gotQuery *domain.HistoryQuery
	locations := &mockLocationRepo{
		getHistoryFn: func(_ context.Context, query *domain.HistoryQuery) ([]domain.PositionSample, error) {
			gotQuery = query
			return []domain.PositionSample{sampleAt(0), sampleAt(30)}, nil
		},
	}

	svc := NewLocationService(locations, knownVehicleRepo(), tehriGeofence())
	path, stops, err := svc.GetPath(context.Background(), "UK07TA1234", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("expected 2 path points, got %d", len(path))
	}
	if len(stops) != 0 {
		t.Fatalf("expected no stops, got %d", len(stops))
	}

	window := gotQuery.End.Sub(gotQuery.Start)
	if window != DefaultPathWindow {
		t.Errorf("expected 24h window, got %v", window)
	}
}

func TestGetPath_NoSamplesDegradesEmpty(t *testing.T) {
	locations := &mockLocationRepo{
		getHistoryFn: func(_ context.Context, _ *domain.HistoryQuery) ([]domain.PositionSample, error) {
			return nil, nil
		},
	}

	svc := NewLocationService(locations, knownVehicleRepo(), tehriGeofence())
	path, stops, err := svc.GetPath(context.Background(), "UK07TA1234", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 0 || len(stops) != 0 {
		t.Fatalf("expected empty results, got %d path points, %d stops", len(path), len(stops))
	}
}

func TestGetPath_UnknownVehicle(t *testing.T) {
	vehicles := &mockVehicleRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.Vehicle, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := NewLocationService(&mockLocationRepo{}, vehicles, tehriGeofence())
	_, _, err := svc.GetPath(context.Background(), "UNKNOWN", time.Hour)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOutsideVehicles(t *testing.T) {
	vehicles := &mockVehicleRepo{
		getAllFn: func(_ context.Context) ([]domain.Vehicle, error) {
			return []domain.Vehicle{
				{VehicleID: "IN", AssignedRegion: "Tehri District"},
				{VehicleID: "OUT", AssignedRegion: "Tehri District"},
			}, nil
		},
	}
	locations := &mockLocationRepo{
		getLatestPerVehicleFn: func(_ context.Context) ([]domain.PositionSample, error) {
			return []domain.PositionSample{
				{VehicleID: "IN", Location: domain.Location{Lat: 30.4, Lon: 78.4}},
				{VehicleID: "OUT", Location: domain.Location{Lat: 31.0, Lon: 79.0}},
			}, nil
		},
	}

	svc := NewLocationService(locations, vehicles, tehriGeofence())
	out, err := svc.OutsideVehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].VehicleID != "OUT" {
		t.Fatalf("expected [OUT], got %v", out)
	}
}

func TestDeleteVehicle_RemovesSamplesFirst(t *testing.T) {
	var order []string
	locations := &mockLocationRepo{
		deleteByVehicleFn: func(_ context.Context, _ string) error {
			order = append(order, "samples")
			return nil
		},
	}
	vehicles := &mockVehicleRepo{
		deleteFn: func(_ context.Context, _ string) error {
			order = append(order, "vehicle")
			return nil
		},
	}

	svc := NewLocationService(locations, vehicles, tehriGeofence())
	if err := svc.DeleteVehicle(context.Background(), "UK07TA1234"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "samples" || order[1] != "vehicle" {
		t.Fatalf("expected samples deleted before vehicle, got %v", order)
	}
}
