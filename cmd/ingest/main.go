package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/hazard-report-ingest/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hazard-report-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-report-ingest/internal/adapter/nominatim"
	"github.com/couchcryptid/hazard-report-ingest/internal/adapter/twilio"
	"github.com/couchcryptid/hazard-report-ingest/internal/config"
	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
	"github.com/couchcryptid/hazard-report-ingest/internal/ingest"
	"github.com/couchcryptid/hazard-report-ingest/internal/observability"
	"github.com/couchcryptid/hazard-report-ingest/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reportStore := store.New(cfg.DataFile, cfg.MaxReports, logger)
	metrics.ReportsRetained.Set(float64(reportStore.Count()))

	// Geocoding is feature-flagged; without it reports carry no coordinates.
	var geocoder domain.Geocoder
	if cfg.GeocodeEnabled {
		client := nominatim.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeUserAgent, cfg.GeocodeTimeout, cfg.GeocodeMinInterval, metrics, logger)
		geocoder = nominatim.NewCachedGeocoder(client, metrics)
		logger.Info("geocoding enabled", "base_url", cfg.GeocodeBaseURL, "min_interval", cfg.GeocodeMinInterval)
	} else {
		logger.Info("geocoding disabled")
	}

	// Dashboard events flow to Kafka when brokers are configured.
	var publisher ingest.Publisher
	var publisherCloser interface{ Close() error }
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		publisher = kp
		publisherCloser = kp
		logger.Info("dashboard event publishing enabled", "topic", cfg.KafkaReportTopic)
	} else {
		logger.Info("dashboard event publishing disabled")
	}

	validator := twilio.NewValidator(cfg.TwilioAuthToken, cfg.CallbackURL, logger)
	media := twilio.NewMediaFetcher(cfg, metrics, logger)
	sender := twilio.NewSender(cfg, metrics, logger)

	pipeline := ingest.New(validator, geocoder, media, sender, publisher, reportStore, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.MediaDir, pipeline, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherCloser != nil {
		if err := publisherCloser.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
