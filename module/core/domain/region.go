package domain

// Region is a named geographic bounding box. Bounds satisfy South <= North
// and West <= East. Regions are immutable once configured.
type Region struct {
	Name  string  `json:"name"`
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside the region. All four
// boundary edges are inclusive.
func (r Region) Contains(lat, lon float64) bool {
	return r.South <= lat && lat <= r.North && r.West <= lon && lon <= r.East
}

type RegionEventType string

const (
	RegionExit RegionEventType = "region_exit"
)

// RegionAlert is raised when a recorded sample places a vehicle outside its
// assigned region.
type RegionAlert struct {
	AlertID   string          `json:"alert_id"`
	VehicleID string          `json:"vehicle_id"`
	Region    string          `json:"region"`
	Event     RegionEventType `json:"event"`
	Location  Location        `json:"location"`
	Timestamp int64           `json:"timestamp"`
}
