package domain

// DispatchCandidate is a vehicle scored for an emergency assignment.
// DistanceKm and DurationMin are nil when the routing collaborator could not
// produce a route for the candidate.
type DispatchCandidate struct {
	VehicleID   string   `json:"vehicle_id"`
	Lat         float64  `json:"latitude"`
	Lon         float64  `json:"longitude"`
	DistanceKm  *float64 `json:"distance_from_user"`
	DurationMin *float64 `json:"duration"`
}

// DispatchResult is the outcome of a successful emergency dispatch. Ranked
// holds all scored candidates in ascending distance order plus a synthetic
// zero-distance entry for the caller, appended after selection for display.
type DispatchResult struct {
	DispatchID string              `json:"dispatch_id"`
	Assigned   DispatchCandidate   `json:"assigned"`
	Ranked     []DispatchCandidate `json:"candidates"`
}
