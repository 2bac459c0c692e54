package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	ReportsIngested *prometheus.CounterVec // labels: hazard_type, channel
	WebhookRejected prometheus.Counter
	WebhookDuration prometheus.Histogram
	ReportsRetained prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,empty,error}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Media and confirmation metrics.
	MediaDownloads    *prometheus.CounterVec // labels: outcome={success,skipped,error}
	ConfirmationsSent *prometheus.CounterVec // labels: channel, outcome={success,skipped,error}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReportsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_ingest",
			Name:      "reports_ingested_total",
			Help:      "Reports created from inbound webhooks by hazard type and channel.",
		}, []string{"hazard_type", "channel"}),
		WebhookRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_ingest",
			Name:      "webhook_rejected_total",
			Help:      "Inbound webhooks rejected for failed signature validation.",
		}),
		WebhookDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_ingest",
			Name:      "webhook_duration_seconds",
			Help:      "End-to-end inbound webhook handling duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ReportsRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_ingest",
			Name:      "reports_retained",
			Help:      "Reports currently held in the bounded in-memory store.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_ingest",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_ingest",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_ingest",
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		MediaDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_ingest",
			Name:      "media_downloads_total",
			Help:      "Webhook media download attempts by outcome.",
		}, []string{"outcome"}),
		ConfirmationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_ingest",
			Name:      "confirmations_sent_total",
			Help:      "Outbound confirmation sends by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}

	prometheus.MustRegister(
		m.ReportsIngested,
		m.WebhookRejected,
		m.WebhookDuration,
		m.ReportsRetained,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.MediaDownloads,
		m.ConfirmationsSent,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReportsIngested:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_ingest", Name: "reports_ingested_total"}, []string{"hazard_type", "channel"}),
		WebhookRejected:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_ingest", Name: "webhook_rejected_total"}),
		WebhookDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_ingest", Name: "webhook_duration_seconds"}),
		ReportsRetained:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazard_ingest", Name: "reports_retained"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_ingest", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_ingest", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_ingest", Name: "geocode_api_duration_seconds"}),
		MediaDownloads:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_ingest", Name: "media_downloads_total"}, []string{"outcome"}),
		ConfirmationsSent:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_ingest", Name: "confirmations_sent_total"}, []string{"channel", "outcome"}),
	}
}
