package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
)

func TestBuildMessage(t *testing.T) {
	report := domain.Report{
		ID:          "1700000000000",
		CreatedAt:   time.Date(2024, 11, 14, 22, 13, 20, 0, time.UTC),
		PhoneNumber: "+15551234567",
		Message:     "Flooding near Marina Beach, urgent help needed",
		HazardType:  "flood",
		Urgency:     "urgent",
		Location:    "Marina Beach",
		Coordinates: &domain.Coordinates{Lat: 13.05, Lon: 80.28},
		MessageSID:  "SM123",
		Source:      domain.ChannelSMS,
		Status:      domain.StatusPending,
	}

	msg, err := buildMessage("new-report", report)
	require.NoError(t, err)

	assert.Equal(t, []byte("1700000000000"), msg.Key)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "new-report", headers["event"])
	assert.Equal(t, "flood", headers["hazard_type"])

	var decoded domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, report.ID, decoded.ID)
	assert.Equal(t, report.Location, decoded.Location)
	require.NotNil(t, decoded.Coordinates)
	assert.Equal(t, 13.05, decoded.Coordinates.Lat)
}

func TestBuildMessageEmptyHazardType(t *testing.T) {
	msg, err := buildMessage("new-report", domain.Report{ID: "42", HazardType: "other"})
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	var found bool
	for _, h := range msg.Headers {
		if h.Key == "hazard_type" {
			assert.Equal(t, "other", string(h.Value))
			found = true
		}
	}
	assert.True(t, found)
}
