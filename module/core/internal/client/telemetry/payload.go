package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"fleet-dispatch/module/core/domain"
)

// The fleet's GPS vendors report positions in one of two JSON shapes. The
// legacy shape is a bare array of records with capitalized keys; the detail
// shape wraps lowercase records in a detail_data array. Anything else is
// rejected as unrecognized rather than silently yielding no records.
//
//	[{"VehName": "UK07TA1234", "Latitude": "30.37", "Longitude": "78.48"}, ...]
//	{"detail_data": [{"vehicle_no": "UK07TA1234", "latitude": 30.37, "longitude": 78.48}, ...]}

type PayloadKind int

const (
	KindLegacy PayloadKind = iota
	KindDetail
)

type legacyRecord struct {
	VehName   string          `json:"VehName"`
	Latitude  json.RawMessage `json:"Latitude"`
	Longitude json.RawMessage `json:"Longitude"`
}

type detailRecord struct {
	VehicleNo string          `json:"vehicle_no"`
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

type detailEnvelope struct {
	DetailData []detailRecord `json:"detail_data"`
}

// Payload is a classified telemetry response.
type Payload struct {
	Kind   PayloadKind
	legacy []legacyRecord
	detail []detailRecord
}

// Parse classifies a raw telemetry body into one of the two known shapes.
// Returns domain.ErrUnrecognizedSchema when neither matches.
func Parse(body []byte) (*Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrUnrecognizedSchema)
	}

	if trimmed[0] == '[' {
		var records []legacyRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnrecognizedSchema, err)
		}
		if len(records) > 0 && records[0].VehName == "" {
			return nil, fmt.Errorf("%w: array records missing VehName", domain.ErrUnrecognizedSchema)
		}
		return &Payload{Kind: KindLegacy, legacy: records}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnrecognizedSchema, err)
	}
	if _, ok := envelope["detail_data"]; !ok {
		return nil, fmt.Errorf("%w: object without detail_data", domain.ErrUnrecognizedSchema)
	}
	var detail detailEnvelope
	if err := json.Unmarshal(trimmed, &detail); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnrecognizedSchema, err)
	}
	return &Payload{Kind: KindDetail, detail: detail.DetailData}, nil
}

// RecordsFor returns normalized records for the requested vehicle. Entries
// describing other vehicles are discarded; entries with non-numeric
// coordinates are skipped, never fatal.
func (p *Payload) RecordsFor(vehicleID string) []domain.TelemetryRecord {
	var out []domain.TelemetryRecord
	switch p.Kind {
	case KindLegacy:
		for _, rec := range p.legacy {
			if rec.VehName != vehicleID {
				continue
			}
			lat, latOK := coerceFloat(rec.Latitude)
			lon, lonOK := coerceFloat(rec.Longitude)
			if !latOK || !lonOK {
				continue
			}
			out = append(out, domain.TelemetryRecord{VehicleID: vehicleID, Lat: lat, Lon: lon})
		}
	case KindDetail:
		for _, rec := range p.detail {
			if rec.VehicleNo != vehicleID {
				continue
			}
			lat, latOK := coerceFloat(rec.Latitude)
			lon, lonOK := coerceFloat(rec.Longitude)
			if !latOK || !lonOK {
				continue
			}
			out = append(out, domain.TelemetryRecord{VehicleID: vehicleID, Lat: lat, Lon: lon})
		}
	}
	return out
}

// VehicleIDs lists the vehicle identifiers a payload describes, used when
// registering vehicles from an endpoint. The legacy shape names a single
// vehicle (its first record); the detail shape can carry a whole fleet.
func (p *Payload) VehicleIDs() []string {
	switch p.Kind {
	case KindLegacy:
		if len(p.legacy) > 0 && p.legacy[0].VehName != "" {
			return []string{p.legacy[0].VehName}
		}
	case KindDetail:
		var ids []string
		seen := make(map[string]bool)
		for _, rec := range p.detail {
			if rec.VehicleNo == "" || seen[rec.VehicleNo] {
				continue
			}
			seen[rec.VehicleNo] = true
			ids = append(ids, rec.VehicleNo)
		}
		return ids
	}
	return nil
}

// coerceFloat accepts a JSON number or a numeric string. Vendors have been
// seen emitting both for the same field.
func coerceFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
