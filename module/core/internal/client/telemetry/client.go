package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fleet-dispatch/module/core/domain"
)

const maxBodyBytes = 1 << 20

// Client fetches live positions from per-vehicle telemetry endpoints.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// FetchPayload issues one GET to a telemetry endpoint and classifies the body.
func (c *Client) FetchPayload(ctx context.Context, url string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalCall, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalCall, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: telemetry endpoint returned %d", domain.ErrExternalCall, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalCall, err)
	}

	return Parse(body)
}

// FetchRecords fetches and normalizes the endpoint's payload down to the
// records describing the requested vehicle.
func (c *Client) FetchRecords(ctx context.Context, vehicleID, url string) ([]domain.TelemetryRecord, error) {
	payload, err := c.FetchPayload(ctx, url)
	if err != nil {
		return nil, err
	}
	return payload.RecordsFor(vehicleID), nil
}
