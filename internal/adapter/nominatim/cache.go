package nominatim

import (
	"context"
	"sync"

	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
	"github.com/couchcryptid/hazard-report-ingest/internal/observability"
)

// CachedGeocoder wraps a Geocoder with a process-lifetime memoization layer
// keyed by the raw location phrase. It also short-circuits the unknown-location
// sentinel and empty phrases without touching the inner geocoder, so those
// never consume a throttle slot.
type CachedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]domain.Coordinates
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		metrics: metrics,
		entries: make(map[string]domain.Coordinates),
	}
}

// Locate returns cached coordinates when the phrase has resolved before.
// Only positive results are cached, so transient failures and "not found"
// responses can be retried on a later report.
func (c *CachedGeocoder) Locate(ctx context.Context, phrase string) (*domain.Coordinates, error) {
	if phrase == "" || phrase == domain.UnknownLocation {
		return nil, nil
	}

	c.mu.Lock()
	coords, ok := c.entries[phrase]
	c.mu.Unlock()
	if ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return &coords, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.Locate(ctx, phrase)
	if err != nil || result == nil {
		return result, err
	}

	c.mu.Lock()
	c.entries[phrase] = *result
	c.mu.Unlock()
	return result, nil
}
