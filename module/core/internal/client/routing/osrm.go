package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleet-dispatch/module/core/domain"
)

// Route is a scored driving route between two coordinates.
type Route struct {
	DistanceKm  float64
	DurationMin float64
}

// Client queries an OSRM-compatible router for driving distance and duration.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

// Route returns the driving route from origin to destination, or (nil, nil)
// when the router knows no route between the two points.
func (c *Client) Route(ctx context.Context, originLat, originLon, destLat, destLon float64) (*Route, error) {
	// OSRM takes lon,lat pairs
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, originLon, originLat, destLon, destLat)

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
		return nil, fmt.Errorf("%w: router returned %d", domain.ErrExternalCall, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalCall, err)
	}

	if len(body.Routes) == 0 {
		return nil, nil
	}

	return &Route{
		DistanceKm:  body.Routes[0].Distance / 1000,
		DurationMin: body.Routes[0].Duration / 60,
	}, nil
}
