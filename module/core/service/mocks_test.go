package service

import (
	"context"

	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/client/routing"
	"fleet-dispatch/module/core/internal/client/telemetry"
)

type mockVehicleRepo struct {
	getAllFn    func(ctx context.Context) ([]domain.Vehicle, error)
	getByTypeFn func(ctx context.Context, serviceType string) ([]domain.Vehicle, error)
	getByIDFn   func(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	upsertFn    func(ctx context.Context, v *domain.Vehicle) error
	deleteFn    func(ctx context.Context, vehicleID string) error
}

func (m *mockVehicleRepo) GetAll(ctx context.Context) ([]domain.Vehicle, error) {
	return m.getAllFn(ctx)
}

func (m *mockVehicleRepo) GetByType(ctx context.Context, serviceType string) ([]domain.Vehicle, error) {
	return m.getByTypeFn(ctx, serviceType)
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	return m.getByIDFn(ctx, vehicleID)
}

func (m *mockVehicleRepo) Upsert(ctx context.Context, v *domain.Vehicle) error {
	return m.upsertFn(ctx, v)
}

func (m *mockVehicleRepo) Delete(ctx context.Context, vehicleID string) error {
	return m.deleteFn(ctx, vehicleID)
}

type mockLocationRepo struct {
	insertFn              func(ctx context.Context, sample *domain.PositionSample) error
	getLatestFn           func(ctx context.Context, vehicleID string) (*domain.PositionSample, error)
	getHistoryFn          func(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionSample, error)
	getLatestPerVehicleFn func(ctx context.Context) ([]domain.PositionSample, error)
	deleteByVehicleFn     func(ctx context.Context, vehicleID string) error
}

func (m *mockLocationRepo) Insert(ctx context.Context, sample *domain.PositionSample) error {
	return m.insertFn(ctx, sample)
}

func (m *mockLocationRepo) GetLatest(ctx context.Context, vehicleID string) (*domain.PositionSample, error) {
	return m.getLatestFn(ctx, vehicleID)
}

func (m *mockLocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionSample, error) {
	return m.getHistoryFn(ctx, query)
}

func (m *mockLocationRepo) GetLatestPerVehicle(ctx context.Context) ([]domain.PositionSample, error) {
	return m.getLatestPerVehicleFn(ctx)
}

func (m *mockLocationRepo) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	return m.deleteByVehicleFn(ctx, vehicleID)
}

type mockAlertPublisher struct {
	publishAlertFn func(ctx context.Context, alert *domain.RegionAlert) error
	calls          []*domain.RegionAlert
}

func (m *mockAlertPublisher) PublishAlert(ctx context.Context, alert *domain.RegionAlert) error {
	m.calls = append(m.calls, alert)
	if m.publishAlertFn != nil {
		return m.publishAlertFn(ctx, alert)
	}
	return nil
}

type mockFetcher struct {
	fetchRecordsFn func(ctx context.Context, vehicleID, url string) ([]domain.TelemetryRecord, error)
	fetchPayloadFn func(ctx context.Context, url string) (*telemetry.Payload, error)
}

func (m *mockFetcher) FetchRecords(ctx context.Context, vehicleID, url string) ([]domain.TelemetryRecord, error) {
	return m.fetchRecordsFn(ctx, vehicleID, url)
}

func (m *mockFetcher) FetchPayload(ctx context.Context, url string) (*telemetry.Payload, error) {
	return m.fetchPayloadFn(ctx, url)
}

type mockRouter struct {
	routeFn func(ctx context.Context, originLat, originLon, destLat, destLon float64) (*routing.Route, error)
}

func (m *mockRouter) Route(ctx context.Context, originLat, originLon, destLat, destLon float64) (*routing.Route, error) {
	return m.routeFn(ctx, originLat, originLon, destLat, destLon)
}

type mockNotifier struct {
	sendSMSFn func(ctx context.Context, to, body string) error
	sent      []string
}

func (m *mockNotifier) SendSMS(ctx context.Context, to, body string) error {
	m.sent = append(m.sent, to)
	if m.sendSMSFn != nil {
		return m.sendSMSFn(ctx, to, body)
	}
	return nil
}

var tehri = domain.Region{
	Name:  "Tehri District",
	North: 30.5903,
	South: 30.2112,
	East:  78.7804,
	West:  78.1183,
}
