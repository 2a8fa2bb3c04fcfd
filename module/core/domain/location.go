package domain

import "time"

type Location struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// PositionSample is one stored telemetry point for a vehicle. Samples are
// append-only and ordered by timestamp within a vehicle's history.
type PositionSample struct {
	VehicleID string   `json:"vehicle_id"`
	Location  Location `json:"location"`
}

// TelemetryRecord is the normalized output of one live telemetry fetch. It
// exists only for the duration of a single aggregation call.
type TelemetryRecord struct {
	VehicleID string  `json:"vehicle_id"`
	Lat       float64 `json:"latitude"`
	Lon       float64 `json:"longitude"`
}

type HistoryQuery struct {
	VehicleID string
	Start     time.Time
	End       time.Time
}

// PathPoint is one element of a reconstructed path.
type PathPoint struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// StopSegment is a dwell interval of at least the minimum stop threshold.
// EndTime is always >= StartTime. Derived on every query, never stored.
type StopSegment struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
