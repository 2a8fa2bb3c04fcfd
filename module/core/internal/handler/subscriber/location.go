package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"fleet-dispatch/module/core/domain"
)

const topicPattern = "/fleet/vehicle/+/location"

type locationService interface {
	RecordSample(ctx context.Context, sample *domain.PositionSample) (bool, error)
}

type positionMessage struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type LocationSubscriber struct {
	client      mqtt.Client
	locationSvc locationService
}

func NewLocationSubscriber(client mqtt.Client, locationSvc locationService) *LocationSubscriber {
	return &LocationSubscriber{
		client:      client,
		locationSvc: locationSvc,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid position message: %v", err)
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	sample := &domain.PositionSample{
		VehicleID: raw.VehicleID,
		Location: domain.Location{
			Lat:       raw.Latitude,
			Lon:       raw.Longitude,
			Timestamp: time.Unix(raw.Timestamp, 0),
		},
	}

	flagged, err := s.locationSvc.RecordSample(context.Background(), sample)
	if err != nil {
		log.Printf("record sample error: %v", err)
		return
	}
	if flagged {
		log.Printf("vehicle %s reported outside its assigned region", raw.VehicleID)
	}
}

func validatePositionMessage(msg *positionMessage) error {
	if msg.VehicleID == "" {
		return fmt.Errorf("vehicle_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
