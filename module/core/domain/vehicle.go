package domain

// Vehicle is a service vehicle registered with the fleet. TelemetryURL is
// the vehicle's live position endpoint; empty means not currently trackable.
type Vehicle struct {
	VehicleID      string `json:"vehicle_id"`
	Type           string `json:"type"`
	AssignedRegion string `json:"assigned_region"`
	TelemetryURL   string `json:"telemetry_url,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
}
