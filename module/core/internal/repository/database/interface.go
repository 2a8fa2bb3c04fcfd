package database

import (
	"context"

	"fleet-dispatch/module/core/domain"
)

type VehicleRepository interface {
	GetAll(ctx context.Context) ([]domain.Vehicle, error)
	GetByType(ctx context.Context, serviceType string) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	Upsert(ctx context.Context, v *domain.Vehicle) error
	Delete(ctx context.Context, vehicleID string) error
}

type LocationRepository interface {
	Insert(ctx context.Context, sample *domain.PositionSample) error
	GetLatest(ctx context.Context, vehicleID string) (*domain.PositionSample, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionSample, error)
	GetLatestPerVehicle(ctx context.Context) ([]domain.PositionSample, error)
	DeleteByVehicle(ctx context.Context, vehicleID string) error
}
