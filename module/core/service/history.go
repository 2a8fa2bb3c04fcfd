package service

import (
	"time"

	"fleet-dispatch/module/core/domain"
)

// MinStopDuration is the dwell threshold: a gap of at least this long between
// consecutive samples is treated as a stop.
const MinStopDuration = 120 * time.Second

// DefaultPathWindow bounds path reconstruction queries.
const DefaultPathWindow = 24 * time.Hour

// Reconstruct projects a vehicle's time-ordered samples to a path and derives
// dwell segments. Samples must already be filtered to the query window and
// sorted ascending by timestamp.
//
// The scan keeps a running stop-start timestamp, initialized to the first
// sample. A gap of MinStopDuration or more between consecutive samples emits
// a segment at the earlier sample's coordinates, spanning from the stop start
// to the moment movement resumed, and restarts the stop at the later sample.
// A trailing dwell of MinStopDuration or more emits a closing segment at the
// final sample's coordinates. Gaps are only measured between consecutive
// samples, so sparse samples during continuous travel are indistinguishable
// from a stationary dwell.
func Reconstruct(samples []domain.PositionSample) ([]domain.PathPoint, []domain.StopSegment) {
	path := make([]domain.PathPoint, 0, len(samples))
	for _, s := range samples {
		path = append(path, domain.PathPoint{
			Lat:       s.Location.Lat,
			Lon:       s.Location.Lon,
			Timestamp: s.Location.Timestamp,
		})
	}

	var stops []domain.StopSegment
	if len(samples) < 2 {
		return path, stops
	}

	stopStart := samples[0].Location.Timestamp
	for i := 1; i < len(samples); i++ {
		prev := samples[i-1].Location
		cur := samples[i].Location
		if cur.Timestamp.Sub(prev.Timestamp) >= MinStopDuration {
			stops = append(stops, domain.StopSegment{
				Lat:       prev.Lat,
				Lon:       prev.Lon,
				StartTime: stopStart,
				EndTime:   cur.Timestamp,
			})
			stopStart = cur.Timestamp
		}
	}

	last := samples[len(samples)-1].Location
	if last.Timestamp.Sub(stopStart) >= MinStopDuration {
		stops = append(stops, domain.StopSegment{
			Lat:       last.Lat,
			Lon:       last.Lon,
			StartTime: stopStart,
			EndTime:   last.Timestamp,
		})
	}

	return path, stops
}
