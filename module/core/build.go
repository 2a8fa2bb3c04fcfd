package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"fleet-dispatch/config"
	"fleet-dispatch/module/core/domain"
	"fleet-dispatch/module/core/internal/client/notify"
	"fleet-dispatch/module/core/internal/client/routing"
	"fleet-dispatch/module/core/internal/client/telemetry"
	handler "fleet-dispatch/module/core/internal/handler/http"
	"fleet-dispatch/module/core/internal/handler/subscriber"
	"fleet-dispatch/module/core/internal/handler/ws"
	"fleet-dispatch/module/core/internal/repository/database/postgres"
	"fleet-dispatch/module/core/internal/repository/publisher/rabbitmq"
	"fleet-dispatch/module/core/service"
)

type Module struct {
	LocationSvc  *service.LocationService
	GeofenceSvc  *service.GeofenceService
	TelemetrySvc *service.TelemetryService
	DispatchSvc  *service.DispatchService

	handler    *handler.VehicleHandler
	subscriber *subscriber.LocationSubscriber
	hub        *ws.Hub
	poller     *ws.Poller
}

func Build(cfg *config.Config, db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, regions []domain.Region) (*Module, error) {
	vehicleRepo := postgres.NewVehicleRepo(db)
	locationRepo := postgres.NewLocationRepo(db)

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	fetcher := telemetry.NewClient(fetchTimeout)
	router := routing.NewClient(cfg.OSRMBaseURL, fetchTimeout)
	notifier := notify.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, fetchTimeout)

	geofenceSvc := service.NewGeofenceService(alertPub, regions)
	locationSvc := service.NewLocationService(locationRepo, vehicleRepo, geofenceSvc)
	telemetrySvc := service.NewTelemetryService(vehicleRepo, fetcher, cfg.FetchWorkers, fetchTimeout)
	dispatchSvc := service.NewDispatchService(vehicleRepo, telemetrySvc, router, notifier,
		service.RouteFailurePolicy(cfg.DispatchRoutePolicy), cfg.FetchWorkers)

	h := handler.NewVehicleHandler(locationSvc, telemetrySvc, dispatchSvc)
	sub := subscriber.NewLocationSubscriber(mqttClient, locationSvc)

	hub := ws.NewHub()
	poller := ws.NewPoller(telemetrySvc, hub, time.Duration(cfg.LivePollSeconds)*time.Second)

	return &Module{
		LocationSvc:  locationSvc,
		GeofenceSvc:  geofenceSvc,
		TelemetrySvc: telemetrySvc,
		DispatchSvc:  dispatchSvc,
		handler:      h,
		subscriber:   sub,
		hub:          hub,
		poller:       poller,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
	m.hub.Register(r, m.poller.Snapshot)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// StartLivePoller runs the websocket broadcast loop until ctx is done.
func (m *Module) StartLivePoller(ctx context.Context) {
	go m.poller.Run(ctx)
}
