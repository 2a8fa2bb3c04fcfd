package ws

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"fleet-dispatch/module/core/domain"
)

type liveSource interface {
	FetchLiveAll(ctx context.Context) ([]domain.TelemetryRecord, error)
}

// Poller fetches live positions on an interval and broadcasts a snapshot
// to the hub whenever any vehicle moved.
type Poller struct {
	source   liveSource
	hub      *Hub
	interval time.Duration

	mu   sync.Mutex
	last map[string]domain.TelemetryRecord
}

func NewPoller(source liveSource, hub *Hub, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		hub:      hub,
		interval: interval,
		last:     make(map[string]domain.TelemetryRecord),
	}
}

func (p *Poller) Run(ctx context.Context) {
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.tick(ctx)
			t.Reset(p.interval)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	records, err := p.source.FetchLiveAll(cctx)
	if err != nil {
		log.Printf("live poll error: %v", err)
		return
	}

	if changed, snapshot := p.detectChanges(records); changed {
		p.hub.Broadcast(snapshot)
	}
}

func (p *Poller) detectChanges(in []domain.TelemetryRecord) (bool, []domain.TelemetryRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed := len(in) != len(p.last)
	current := make(map[string]domain.TelemetryRecord, len(in))
	for _, rec := range in {
		prev, ok := p.last[rec.VehicleID]
		if !ok || prev.Lat != rec.Lat || prev.Lon != rec.Lon {
			changed = true
		}
		current[rec.VehicleID] = rec
	}
	p.last = current

	return changed, snapshotLocked(current)
}

// Snapshot returns the most recent position set, sorted by vehicle id.
func (p *Poller) Snapshot() []domain.TelemetryRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshotLocked(p.last)
}

func snapshotLocked(m map[string]domain.TelemetryRecord) []domain.TelemetryRecord {
	out := make([]domain.TelemetryRecord, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}
