package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host settings cannot leak in.
// envOrDefault treats empty as unset, so t.Setenv("", ...) is equivalent to
// the variable being absent while still restoring the host value afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER",
		"TWILIO_WHATSAPP_NUMBER", "CALLBACK_URL",
		"DATA_FILE", "MEDIA_DIR", "MAX_REPORTS",
		"GEOCODE_ENABLED", "GEOCODE_BASE_URL", "GEOCODE_USER_AGENT",
		"GEOCODE_TIMEOUT", "GEOCODE_MIN_INTERVAL",
		"KAFKA_BROKERS", "KAFKA_ENABLED", "KAFKA_REPORT_TOPIC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Empty(t, cfg.TwilioAccountSID)
	assert.Empty(t, cfg.TwilioAuthToken)
	assert.Equal(t, "whatsapp:+14155238886", cfg.TwilioWhatsAppNumber)
	assert.Empty(t, cfg.CallbackURL)

	assert.Equal(t, "data/reports.json", cfg.DataFile)
	assert.Equal(t, "data/media", cfg.MediaDir)
	assert.Equal(t, 100, cfg.MaxReports)

	assert.True(t, cfg.GeocodeEnabled)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.GeocodeBaseURL)
	assert.Equal(t, 5*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 1100*time.Millisecond, cfg.GeocodeMinInterval)

	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "hazard-reports", cfg.KafkaReportTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550001111")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "whatsapp:+15550002222")
	t.Setenv("CALLBACK_URL", "https://hazards.example.com/webhook/sms")
	t.Setenv("DATA_FILE", "/var/lib/hazards/reports.json")
	t.Setenv("MEDIA_DIR", "/var/lib/hazards/media")
	t.Setenv("MAX_REPORTS", "250")
	t.Setenv("GEOCODE_BASE_URL", "http://nominatim.internal")
	t.Setenv("GEOCODE_TIMEOUT", "2s")
	t.Setenv("GEOCODE_MIN_INTERVAL", "500ms")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_REPORT_TOPIC", "dashboard-events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "AC123", cfg.TwilioAccountSID)
	assert.Equal(t, "secret", cfg.TwilioAuthToken)
	assert.Equal(t, "+15550001111", cfg.TwilioPhoneNumber)
	assert.Equal(t, "whatsapp:+15550002222", cfg.TwilioWhatsAppNumber)
	assert.Equal(t, "https://hazards.example.com/webhook/sms", cfg.CallbackURL)
	assert.Equal(t, "/var/lib/hazards/reports.json", cfg.DataFile)
	assert.Equal(t, "/var/lib/hazards/media", cfg.MediaDir)
	assert.Equal(t, 250, cfg.MaxReports)
	assert.Equal(t, "http://nominatim.internal", cfg.GeocodeBaseURL)
	assert.Equal(t, 2*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.GeocodeMinInterval)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "dashboard-events", cfg.KafkaReportTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeGeocodeMinInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOCODE_MIN_INTERVAL", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODE_MIN_INTERVAL")
}

func TestLoad_InvalidMaxReports(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_REPORTS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_REPORTS")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaBrokersImplyEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_GeocodeExplicitlyDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOCODE_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.GeocodeEnabled)
}
