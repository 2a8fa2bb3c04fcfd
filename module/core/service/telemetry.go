package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/client/telemetry"
	"fleet-dispatch/module/core/internal/repository/database"
)

type TelemetryFetcher interface {
	FetchRecords(ctx context.Context, vehicleID, url string) ([]domain.TelemetryRecord, error)
	FetchPayload(ctx context.Context, url string) (*telemetry.Payload, error)
}

// TelemetryService aggregates live positions across the fleet by fanning out
// one fetch per trackable vehicle through a bounded worker pool.
type TelemetryService struct {
	vehicles     database.VehicleRepository
	fetcher      TelemetryFetcher
	workers      int
	fetchTimeout time.Duration
}

func NewTelemetryService(vehicles database.VehicleRepository, fetcher TelemetryFetcher, workers int, fetchTimeout time.Duration) *TelemetryService {
	if workers < 1 {
		workers = 1
	}
	return &TelemetryService{
		vehicles:     vehicles,
		fetcher:      fetcher,
		workers:      workers,
		fetchTimeout: fetchTimeout,
	}
}

// FetchLive fetches the current position of every vehicle with a telemetry
// endpoint. Each vehicle's outcome is independent: a fetch or normalization
// failure for one vehicle is logged and contributes nothing. Results are
// joined in input order, so the output is deterministic for a fixed set of
// per-vehicle outcomes.
func (s *TelemetryService) FetchLive(ctx context.Context, vehicles []domain.Vehicle) []domain.TelemetryRecord {
	slots := make([][]domain.TelemetryRecord, len(vehicles))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				slots[i] = s.fetchOne(ctx, &vehicles[i])
			}
		}()
	}

dispatch:
	for i := range vehicles {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	var out []domain.TelemetryRecord
	for _, records := range slots {
		out = append(out, records...)
	}
	return out
}

func (s *TelemetryService) fetchOne(ctx context.Context, v *domain.Vehicle) []domain.TelemetryRecord {
	if v.TelemetryURL == "" {
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	records, err := s.fetcher.FetchRecords(fetchCtx, v.VehicleID, v.TelemetryURL)
	if err != nil {
		log.Printf("telemetry fetch for %s failed: %v", v.VehicleID, err)
		return nil
	}
	return records
}

// FetchLiveAll aggregates live positions for the whole fleet.
func (s *TelemetryService) FetchLiveAll(ctx context.Context) ([]domain.TelemetryRecord, error) {
	vehicles, err := s.vehicles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.FetchLive(ctx, vehicles), nil
}

// RegisterFromEndpoint probes a telemetry endpoint and creates or updates the
// vehicles its payload describes. Returns how many vehicles were registered.
func (s *TelemetryService) RegisterFromEndpoint(ctx context.Context, serviceType, assignedRegion, telemetryURL, phoneNumber string) (int, error) {
	if telemetryURL == "" {
		return 0, fmt.Errorf("%w: telemetry url required", domain.ErrInvalidInput)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	payload, err := s.fetcher.FetchPayload(fetchCtx, telemetryURL)
	if err != nil {
		return 0, err
	}

	ids := payload.VehicleIDs()
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: payload names no vehicles", domain.ErrUnrecognizedSchema)
	}

	registered := 0
	for _, id := range ids {
		v := &domain.Vehicle{
			VehicleID:      id,
			Type:           serviceType,
			AssignedRegion: assignedRegion,
			TelemetryURL:   telemetryURL,
			PhoneNumber:    phoneNumber,
		}
		if err := s.vehicles.Upsert(ctx, v); err != nil {
			return registered, err
		}
		registered++
	}
	return registered, nil
}
