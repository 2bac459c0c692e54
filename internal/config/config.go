package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultWhatsAppFrom is Twilio's documented WhatsApp sandbox sender,
// used when TWILIO_WHATSAPP_NUMBER is unset.
const defaultWhatsAppFrom = "whatsapp:+14155238886"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Twilio gateway credentials and sender identities. Empty credentials
	// disable signature validation, media download, and confirmations.
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string

	// CallbackURL overrides the reconstructed request URL during signature
	// validation. Required behind proxies that rewrite the Host header.
	CallbackURL string

	DataFile   string
	MediaDir   string
	MaxReports int

	// Nominatim geocoding configuration.
	GeocodeEnabled     bool
	GeocodeBaseURL     string
	GeocodeUserAgent   string
	GeocodeTimeout     time.Duration
	GeocodeMinInterval time.Duration

	// Kafka dashboard-event publishing configuration.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaReportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	// 1.1s minimum spacing is the courtesy floor for the public Nominatim
	// service (absolute maximum of 1 request per second, plus margin).
	geocodeMinInterval, err := parseDuration("GEOCODE_MIN_INTERVAL", "1.1s")
	if err != nil {
		return nil, err
	}

	maxReports, err := parseMaxReports()
	if err != nil {
		return nil, err
	}

	geocodeEnabled := true
	if v := os.Getenv("GEOCODE_ENABLED"); v != "" {
		geocodeEnabled = v == "true"
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:    os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioWhatsAppNumber: envOrDefault("TWILIO_WHATSAPP_NUMBER", defaultWhatsAppFrom),
		CallbackURL:          os.Getenv("CALLBACK_URL"),

		DataFile:   envOrDefault("DATA_FILE", "data/reports.json"),
		MediaDir:   envOrDefault("MEDIA_DIR", "data/media"),
		MaxReports: maxReports,

		GeocodeEnabled:     geocodeEnabled,
		GeocodeBaseURL:     envOrDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent:   envOrDefault("GEOCODE_USER_AGENT", "hazard-report-ingest/1.0 (github.com/couchcryptid/hazard-report-ingest)"),
		GeocodeTimeout:     geocodeTimeout,
		GeocodeMinInterval: geocodeMinInterval,

		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     kafkaBrokers,
		KafkaReportTopic: envOrDefault("KAFKA_REPORT_TOPIC", "hazard-reports"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.GeocodeEnabled && cfg.GeocodeBaseURL == "" {
		return nil, errors.New("GEOCODE_ENABLED is true but GEOCODE_BASE_URL is empty")
	}
	if cfg.GeocodeEnabled && cfg.GeocodeMinInterval <= 0 {
		return nil, errors.New("invalid GEOCODE_MIN_INTERVAL")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseMaxReports() (int, error) {
	s := os.Getenv("MAX_REPORTS")
	if s == "" {
		return 100, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid MAX_REPORTS")
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
