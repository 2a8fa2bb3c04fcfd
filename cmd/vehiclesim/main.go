package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// vehiclesim drives a small simulated fleet around the Tehri District
// bounding box. It publishes MQTT position messages like a real tracker
// and serves an HTTP telemetry feed in both vendor payload shapes so
// the registration and live-location paths can be exercised locally.

type positionMessage struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

const (
	regionNorth = 30.5903
	regionSouth = 30.2112
	regionEast  = 78.7804
	regionWest  = 78.1183
)

type simVehicle struct {
	id  string
	lat float64
	lon float64
}

type fleet struct {
	mu       sync.Mutex
	vehicles []simVehicle
}

func newFleet(n int) *fleet {
	f := &fleet{vehicles: make([]simVehicle, n)}
	for i := range f.vehicles {
		f.vehicles[i] = simVehicle{
			id:  fmt.Sprintf("UK07TA%04d", 1000+rand.Intn(9000)),
			lat: regionSouth + rand.Float64()*(regionNorth-regionSouth),
			lon: regionWest + rand.Float64()*(regionEast-regionWest),
		}
	}
	return f
}

// step drifts every vehicle a little; the drift is large enough that a
// vehicle occasionally wanders past the region boundary.
func (f *fleet) step() []simVehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.vehicles {
		f.vehicles[i].lat += (rand.Float64() - 0.5) * 0.02
		f.vehicles[i].lon += (rand.Float64() - 0.5) * 0.02
	}
	out := make([]simVehicle, len(f.vehicles))
	copy(out, f.vehicles)
	return out
}

func (f *fleet) snapshot() []simVehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]simVehicle, len(f.vehicles))
	copy(out, f.vehicles)
	return out
}

// legacy feed shape: a bare array keyed by VehName
func (f *fleet) serveLegacy(w http.ResponseWriter, _ *http.Request) {
	type record struct {
		VehName   string  `json:"VehName"`
		Latitude  float64 `json:"Latitude"`
		Longitude float64 `json:"Longitude"`
	}
	vehicles := f.snapshot()
	out := make([]record, len(vehicles))
	for i, v := range vehicles {
		out[i] = record{VehName: v.id, Latitude: v.lat, Longitude: v.lon}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// detail feed shape: an envelope with detail_data, coordinates as strings
func (f *fleet) serveDetail(w http.ResponseWriter, _ *http.Request) {
	type record struct {
		VehicleNo string `json:"vehicle_no"`
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	}
	vehicles := f.snapshot()
	out := make([]record, len(vehicles))
	for i, v := range vehicles {
		out[i] = record{
			VehicleNo: v.id,
			Latitude:  strconv.FormatFloat(v.lat, 'f', 6, 64),
			Longitude: strconv.FormatFloat(v.lon, 'f', 6, 64),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"detail_data": out})
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}
	httpPort := "9090"
	if v := os.Getenv("SIM_HTTP_PORT"); v != "" {
		httpPort = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("fleet-vehicle-sim")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	f := newFleet(5)

	mux := http.NewServeMux()
	mux.HandleFunc("/feed/legacy", f.serveLegacy)
	mux.HandleFunc("/feed/detail", f.serveDetail)
	go func() {
		log.Printf("telemetry feed on :%s (/feed/legacy, /feed/detail)", httpPort)
		if err := http.ListenAndServe(":"+httpPort, mux); err != nil {
			log.Fatalf("telemetry feed: %v", err)
		}
	}()

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for _, v := range f.step() {
			msg := positionMessage{
				VehicleID: v.id,
				Latitude:  v.lat,
				Longitude: v.lon,
				Timestamp: time.Now().Unix(),
			}

			payload, _ := json.Marshal(msg)
			topic := fmt.Sprintf("/fleet/vehicle/%s/location", v.id)

			token := client.Publish(topic, 1, false, payload)
			token.Wait()

			log.Printf("published to %s: %s", topic, payload)
		}
	}
}
