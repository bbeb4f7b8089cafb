// Package places resolves raw event requests against an external
// place/travel API. The engine only depends on the calendar.Enricher
// interface; this client is the production implementation.
package places

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"wakecal/pkg/calendar"
)

// routeResponse is the payload the enrichment endpoint returns for a
// resolved origin/destination pair.
type routeResponse struct {
	OriginPlaceID string  `json:"origin_place_id"`
	DestPlaceID   string  `json:"dest_place_id"`
	Rating        float64 `json:"rating"`
	PriceLevel    int     `json:"price_level"`
	OpeningPeriod string  `json:"opening_period"`
	DurationSec   int     `json:"duration_sec"`
	DistanceM     int     `json:"distance_m"`
}

// Client calls the place/travel enrichment API.
type Client struct {
	http    *resty.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient builds a retrying client. apiKey may be empty for keyless
// deployments; timeout bounds each attempt.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	http := resty.New().
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetTimeout(timeout)
	if apiKey != "" {
		http.SetQueryParam("key", apiKey)
	}
	return &Client{http: http, baseURL: baseURL, log: logger}
}

// Enrich resolves the request's route and place data. It returns the place
// payload and the travel duration in seconds. Errors are returned for the
// caller to degrade on, never fatal.
func (c *Client) Enrich(ctx context.Context, req calendar.RawRequest) (calendar.PlaceInfo, int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origin":      req.AddressFrom,
			"destination": req.AddressTo,
			"mode":        req.Mode,
			"arrival":     req.Arrival.Format(time.RFC3339),
		}).
		SetResult(&routeResponse{}).
		Get(c.baseURL + "/route")
	if err != nil {
		return calendar.PlaceInfo{}, 0, fmt.Errorf("route lookup failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return calendar.PlaceInfo{}, 0, fmt.Errorf("route lookup returned status %d", resp.StatusCode())
	}
	result, ok := resp.Result().(*routeResponse)
	if !ok {
		return calendar.PlaceInfo{}, 0, fmt.Errorf("unexpected route response")
	}

	c.log.Debug().
		Str("request_id", req.ID).
		Int("duration_sec", result.DurationSec).
		Float64("rating", result.Rating).
		Msg("Route resolved")

	info := calendar.PlaceInfo{
		OriginPlaceID:   result.OriginPlaceID,
		DestPlaceID:     result.DestPlaceID,
		Rating:          result.Rating,
		PriceLevel:      result.PriceLevel,
		OpeningPeriod:   result.OpeningPeriod,
		TravelDistanceM: result.DistanceM,
	}
	return info, result.DurationSec, nil
}

// Ensure Client satisfies the engine's enrichment seam.
var _ calendar.Enricher = (*Client)(nil)
