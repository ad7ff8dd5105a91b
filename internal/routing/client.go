package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RouteNotFoundError means the routing service found no route between the
// requested coordinates. Maps to HTTP 404.
type RouteNotFoundError struct{}

func (e *RouteNotFoundError) Error() string { return "no route found" }

// RouteUnavailableError wraps a transport-level failure talking to the
// routing service. The caller may retry; the client never retries
// internally. Maps to HTTP 503.
type RouteUnavailableError struct {
	Err error
}

func (e *RouteUnavailableError) Error() string { return "routing service unavailable: " + e.Err.Error() }

func (e *RouteUnavailableError) Unwrap() error { return e.Err }

// Coord is a single polyline point.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is the reshaped result of an OSRM route query.
type Route struct {
	Coords   []Coord `json:"coords"`
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

// Client talks to an OSRM-compatible HTTP routing service. Safe for
// concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a routing client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// osrmResponse models the subset of the OSRM /route response we consume.
// Geometry coordinates arrive as [lng, lat] pairs.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route fetches the driving route between two coordinates.
func (c *Client) Route(ctx context.Context, originLat, originLng, destLat, destLng float64) (*Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=full&geometries=geojson",
		c.baseURL,
		formatCoord(originLng), formatCoord(originLat),
		formatCoord(destLng), formatCoord(destLat),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &RouteUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	// OSRM reports NoRoute with a 400; anything else non-2xx is a service
	// problem.
	if resp.StatusCode >= 500 {
		return nil, &RouteUnavailableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RouteUnavailableError{Err: fmt.Errorf("decode response: %w", err)}
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		return nil, &RouteNotFoundError{}
	}

	best := body.Routes[0]
	route := &Route{
		Coords:   make([]Coord, 0, len(best.Geometry.Coordinates)),
		Distance: best.Distance,
		Duration: best.Duration,
	}
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		route.Coords = append(route.Coords, Coord{Lat: pair[1], Lng: pair[0]})
	}
	return route, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
