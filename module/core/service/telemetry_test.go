package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/client/telemetry"
)

func TestFetchLive_FailureIsolation(t *testing.T) {
	fetcher := &mockFetcher{
		fetchRecordsFn: func(_ context.Context, vehicleID, _ string) ([]domain.TelemetryRecord, error) {
			if vehicleID == "X" {
				return nil, domain.ErrExternalCall
			}
			return []domain.TelemetryRecord{{VehicleID: vehicleID, Lat: 30.4, Lon: 78.4}}, nil
		},
	}

	svc := NewTelemetryService(nil, fetcher, 4, time.Second)
	records := svc.FetchLive(context.Background(), []domain.Vehicle{
		{VehicleID: "X", TelemetryURL: "http://x.example.com"},
		{VehicleID: "Y", TelemetryURL: "http://y.example.com"},
	})

	if len(records) != 1 {
		t.Fatalf("expected exactly Y's record, got %d records", len(records))
	}
	if records[0].VehicleID != "Y" {
		t.Errorf("expected Y, got %s", records[0].VehicleID)
	}
}

func TestFetchLive_SkipsVehiclesWithoutEndpoint(t *testing.T) {
	var fetched []string
	fetcher := &mockFetcher{
		fetchRecordsFn: func(_ context.Context, vehicleID, _ string) ([]domain.TelemetryRecord, error) {
			fetched = append(fetched, vehicleID)
			return []domain.TelemetryRecord{{VehicleID: vehicleID}}, nil
		},
	}

	svc := NewTelemetryService(nil, fetcher, 1, time.Second)
	records := svc.FetchLive(context.Background(), []domain.Vehicle{
		{VehicleID: "TRACKED", TelemetryURL: "http://t.example.com"},
		{VehicleID: "UNTRACKED"},
	})

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(fetched) != 1 || fetched[0] != "TRACKED" {
		t.Fatalf("expected only TRACKED fetched, got %v", fetched)
	}
}

func TestFetchLive_DeterministicOrder(t *testing.T) {
	fetcher := &mockFetcher{
		fetchRecordsFn: func(_ context.Context, vehicleID, _ string) ([]domain.TelemetryRecord, error) {
			// slow down the first vehicle so a later one finishes first
			if vehicleID == "A" {
				time.Sleep(20 * time.Millisecond)
			}
			return []domain.TelemetryRecord{{VehicleID: vehicleID}}, nil
		},
	}

	svc := NewTelemetryService(nil, fetcher, 4, time.Second)
	records := svc.FetchLive(context.Background(), []domain.Vehicle{
		{VehicleID: "A", TelemetryURL: "http://a.example.com"},
		{VehicleID: "B", TelemetryURL: "http://b.example.com"},
		{VehicleID: "C", TelemetryURL: "http://c.example.com"},
	})

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"A", "B", "C"} {
		if records[i].VehicleID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, records[i].VehicleID)
		}
	}
}

func TestFetchLive_Empty(t *testing.T) {
	svc := NewTelemetryService(nil, &mockFetcher{}, 4, time.Second)
	if records := svc.FetchLive(context.Background(), nil); len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestFetchLiveAll(t *testing.T) {
	vehicles := &mockVehicleRepo{
		getAllFn: func(_ context.Context) ([]domain.Vehicle, error) {
			return []domain.Vehicle{{VehicleID: "A", TelemetryURL: "http://a.example.com"}}, nil
		},
	}
	fetcher := &mockFetcher{
		fetchRecordsFn: func(_ context.Context, vehicleID, _ string) ([]domain.TelemetryRecord, error) {
			return []domain.TelemetryRecord{{VehicleID: vehicleID, Lat: 30.4, Lon: 78.4}}, nil
		},
	}

	svc := NewTelemetryService(vehicles, fetcher, 2, time.Second)
	records, err := svc.FetchLiveAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestRegisterFromEndpoint_DetailShape(t *testing.T) {
	payload, err := telemetry.Parse([]byte(`{"detail_data": [
		{"vehicle_no": "A1", "latitude": 30.4, "longitude": 78.4},
		{"vehicle_no": "A2", "latitude": 30.5, "longitude": 78.5}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	var upserted []domain.Vehicle
	vehicles := &mockVehicleRepo{
		upsertFn: func(_ context.Context, v *domain.Vehicle) error {
			upserted = append(upserted, *v)
			return nil
		},
	}
	fetcher := &mockFetcher{
		fetchPayloadFn: func(_ context.Context, _ string) (*telemetry.Payload, error) {
			return payload, nil
		},
	}

	svc := NewTelemetryService(vehicles, fetcher, 2, time.Second)
	n, err := svc.RegisterFromEndpoint(context.Background(), "ambulance", "Tehri District", "http://gps.example.com/feed", "+911234567890")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 registered, got %d", n)
	}
	if upserted[0].VehicleID != "A1" || upserted[1].VehicleID != "A2" {
		t.Fatalf("unexpected vehicles: %v", upserted)
	}
	if upserted[0].Type != "ambulance" || upserted[0].AssignedRegion != "Tehri District" {
		t.Errorf("vehicle fields not carried through: %+v", upserted[0])
	}
}

func TestRegisterFromEndpoint_UnrecognizedPayload(t *testing.T) {
	fetcher := &mockFetcher{
		fetchPayloadFn: func(_ context.Context, _ string) (*telemetry.Payload, error) {
			return nil, domain.ErrUnrecognizedSchema
		},
	}

	svc := NewTelemetryService(&mockVehicleRepo{}, fetcher, 2, time.Second)
	_, err := svc.RegisterFromEndpoint(context.Background(), "fire", "Tehri District", "http://gps.example.com/feed", "")
	if !errors.Is(err, domain.ErrUnrecognizedSchema) {
		t.Fatalf("expected ErrUnrecognizedSchema, got %v", err)
	}
}

func TestRegisterFromEndpoint_MissingURL(t *testing.T) {
	svc := NewTelemetryService(&mockVehicleRepo{}, &mockFetcher{}, 2, time.Second)
	_, err := svc.RegisterFromEndpoint(context.Background(), "fire", "Tehri District", "", "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
