package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/client/routing"
	"fleet-dispatch/module/core/internal/repository/database"
)

type Router interface {
	Route(ctx context.Context, originLat, originLon, destLat, destLon float64) (*routing.Route, error)
}

type Notifier interface {
	SendSMS(ctx context.Context, to, body string) error
}

// RouteFailurePolicy decides what a single candidate's routing failure does
// to the dispatch request.
type RouteFailurePolicy string

const (
	// RoutePolicyAbort fails the whole request on any routing failure.
	RoutePolicyAbort RouteFailurePolicy = "abort"
	// RoutePolicySkip demotes the failed candidate to unroutable and continues.
	RoutePolicySkip RouteFailurePolicy = "skip"
)

// DispatchService selects the nearest available vehicle of a requested type
// for an emergency caller and notifies its driver.
type DispatchService struct {
	vehicles  database.VehicleRepository
	telemetry *TelemetryService
	router    Router
	notifier  Notifier
	policy    RouteFailurePolicy
	workers   int
}

func NewDispatchService(vehicles database.VehicleRepository, telemetry *TelemetryService, router Router, notifier Notifier, policy RouteFailurePolicy, workers int) *DispatchService {
	if policy != RoutePolicySkip {
		policy = RoutePolicyAbort
	}
	if workers < 1 {
		workers = 1
	}
	return &DispatchService{
		vehicles:  vehicles,
		telemetry: telemetry,
		router:    router,
		notifier:  notifier,
		policy:    policy,
		workers:   workers,
	}
}

// Dispatch locates candidates of the requested type, scores each by route
// distance from the caller, and assigns the nearest. The returned result's
// Ranked list is sorted ascending by distance with unroutable candidates
// last, followed by a synthetic zero-distance entry for the caller.
func (s *DispatchService) Dispatch(ctx context.Context, serviceType string, userLat, userLon float64, callerPhone string) (*domain.DispatchResult, error) {
	vehicles, err := s.vehicles.GetByType(ctx, serviceType)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("%w: no %s vehicles registered", domain.ErrNotFound, serviceType)
	}

	candidates := s.positionCandidates(ctx, vehicles)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no %s vehicle reported a position", domain.ErrNotFound, serviceType)
	}

	if err := s.scoreCandidates(ctx, userLat, userLon, candidates); err != nil {
		return nil, err
	}

	// stable: ties and unroutable candidates keep input order
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].DistanceKm, candidates[j].DistanceKm
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	assigned := candidates[0]

	zero := 0.0
	ranked := append(candidates, domain.DispatchCandidate{
		VehicleID:   "User",
		Lat:         userLat,
		Lon:         userLon,
		DistanceKm:  &zero,
		DurationMin: &zero,
	})

	result := &domain.DispatchResult{
		DispatchID: uuid.NewString(),
		Assigned:   assigned,
		Ranked:     ranked,
	}

	s.notifyDriver(ctx, assigned.VehicleID, userLat, userLon, callerPhone)

	return result, nil
}

// positionCandidates resolves each vehicle's live position. Vehicles with no
// resolvable position are excluded, not fatal.
func (s *DispatchService) positionCandidates(ctx context.Context, vehicles []domain.Vehicle) []domain.DispatchCandidate {
	records := s.telemetry.FetchLive(ctx, vehicles)

	positions := make(map[string]domain.TelemetryRecord, len(records))
	for _, rec := range records {
		if _, seen := positions[rec.VehicleID]; !seen {
			positions[rec.VehicleID] = rec
		}
	}

	var candidates []domain.DispatchCandidate
	for _, v := range vehicles {
		rec, ok := positions[v.VehicleID]
		if !ok {
			continue
		}
		candidates = append(candidates, domain.DispatchCandidate{
			VehicleID: v.VehicleID,
			Lat:       rec.Lat,
			Lon:       rec.Lon,
		})
	}
	return candidates
}

// scoreCandidates queries the router for every candidate concurrently and
// fills in distance and duration. All results are collected before the caller
// sorts, so concurrency never reorders the ranking.
func (s *DispatchService) scoreCandidates(ctx context.Context, userLat, userLon float64, candidates []domain.DispatchCandidate) error {
	routes := make([]*routing.Route, len(candidates))
	errs := make([]error, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				routes[i], errs[i] = s.router.Route(ctx, userLat, userLon, candidates[i].Lat, candidates[i].Lon)
			}
		}()
	}

dispatch:
	for i := range candidates {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for i := range candidates {
		if errs[i] != nil {
			if s.policy == RoutePolicyAbort {
				return fmt.Errorf("routing %s: %w", candidates[i].VehicleID, errs[i])
			}
			log.Printf("routing for %s failed, candidate skipped: %v", candidates[i].VehicleID, errs[i])
			continue
		}
		if routes[i] == nil {
			// router found no route; candidate ranks after all routed ones
			continue
		}
		distance, duration := routes[i].DistanceKm, routes[i].DurationMin
		candidates[i].DistanceKm = &distance
		candidates[i].DurationMin = &duration
	}
	return nil
}

// notifyDriver sends the assignment SMS. Failures are logged, never allowed
// to change an already-determined dispatch result.
func (s *DispatchService) notifyDriver(ctx context.Context, vehicleID string, userLat, userLon float64, callerPhone string) {
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		log.Printf("dispatch notification: vehicle %s lookup failed: %v", vehicleID, err)
		return
	}
	if vehicle.PhoneNumber == "" {
		log.Printf("dispatch notification: vehicle %s has no contact number", vehicleID)
		return
	}

	mapsLink := fmt.Sprintf("https://www.google.com/maps?q=%v,%v", userLat, userLon)
	body := fmt.Sprintf("Emergency request! Client location: Latitude=%v, Longitude=%v. View location: %s, Victim phone number: %s",
		userLat, userLon, mapsLink, callerPhone)

	if err := s.notifier.SendSMS(ctx, vehicle.PhoneNumber, body); err != nil {
		log.Printf("dispatch notification to %s failed: %v", vehicle.PhoneNumber, err)
	}
}
