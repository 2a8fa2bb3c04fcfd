package domain

import "errors"

var (
	// ErrNotFound covers unknown vehicles and empty candidate sets.
	ErrNotFound = errors.New("not found")

	// ErrUnrecognizedSchema means a telemetry payload matched neither
	// supported shape.
	ErrUnrecognizedSchema = errors.New("unrecognized telemetry schema")

	// ErrExternalCall covers network errors, timeouts and non-success
	// responses from the telemetry, routing and notification collaborators.
	ErrExternalCall = errors.New("external call failed")

	// ErrInvalidInput covers malformed coordinates and timestamps.
	ErrInvalidInput = errors.New("invalid input")
)
