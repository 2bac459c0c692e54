// Package nominatim implements domain.Geocoder against the OSM Nominatim
// search API, with a process-wide courtesy throttle and a memoizing decorator.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
	"github.com/couchcryptid/hazard-report-ingest/internal/observability"
)

// Client implements domain.Geocoder using the Nominatim search API.
//
// Nominatim's usage policy caps clients at one request per second and requires
// an identifying User-Agent. The limiter is shared by every caller of this
// client, so concurrent lookups for different phrases serialize their dispatch
// through one clock rather than bursting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. minInterval is the minimum spacing
// between dispatched lookups across all callers.
func NewClient(baseURL, userAgent string, timeout, minInterval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		metrics:   metrics,
		logger:    logger,
	}
}

// Locate resolves a location phrase to coordinates. It returns (nil, nil) when
// the provider has no match, and an error for transport or decode failures.
func (c *Client) Locate(ctx context.Context, phrase string) (*domain.Coordinates, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode throttle: %w", err)
	}

	params := url.Values{
		"q":      {phrase},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("malformed coordinates %q,%q", places[0].Lat, places[0].Lon)
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return &domain.Coordinates{Lat: lat, Lon: lon}, nil
}

// Nominatim API response types. Coordinates arrive as strings.

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
