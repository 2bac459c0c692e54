package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-report-ingest/internal/config"
	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
	"github.com/couchcryptid/hazard-report-ingest/internal/observability"
)

// Sender dispatches outbound confirmation messages through the gateway's
// Messages REST endpoint.
type Sender struct {
	accountSID   string
	authToken    string
	smsFrom      string
	whatsappFrom string
	httpClient   *http.Client
	baseURL      string
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewSender creates a Sender from the gateway configuration. With credentials
// unset, SendConfirmation becomes a no-op.
func NewSender(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Sender {
	return &Sender{
		accountSID:   cfg.TwilioAccountSID,
		authToken:    cfg.TwilioAuthToken,
		smsFrom:      cfg.TwilioPhoneNumber,
		whatsappFrom: cfg.TwilioWhatsAppNumber,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: "https://api.twilio.com",
		metrics: metrics,
		logger:  logger,
	}
}

// SendConfirmation formats and sends the acknowledgement for a stored report
// on the channel it arrived on, returning the gateway message SID. A WhatsApp
// destination keeps (or regains) the channel prefix; an SMS destination has it
// stripped. Without credentials the send is skipped with an empty SID.
func (s *Sender) SendConfirmation(ctx context.Context, report domain.Report, ch domain.ChannelInfo) (string, error) {
	if s.accountSID == "" || s.authToken == "" {
		s.metrics.ConfirmationsSent.WithLabelValues(ch.Channel, "skipped").Inc()
		s.logger.Debug("gateway credentials unset, skipping confirmation", "report_id", report.ID)
		return "", nil
	}

	to, from := s.addresses(ch)
	body := fmt.Sprintf(
		"Hazard report received: %s near %s. Reference %s. Responders have been notified.",
		report.HazardType, report.Location, report.ID,
	)

	sid, err := s.sendMessage(ctx, from, to, body)
	if err != nil {
		s.metrics.ConfirmationsSent.WithLabelValues(ch.Channel, "error").Inc()
		return "", err
	}
	s.metrics.ConfirmationsSent.WithLabelValues(ch.Channel, "success").Inc()
	return sid, nil
}

// addresses resolves the destination and sender identity for a channel.
func (s *Sender) addresses(ch domain.ChannelInfo) (to, from string) {
	if ch.IsChatApp {
		to = ch.CleanNumber
		if !strings.HasPrefix(to, domain.WhatsAppPrefix) {
			to = domain.WhatsAppPrefix + to
		}
		return to, s.whatsappFrom
	}
	return strings.TrimPrefix(ch.CleanNumber, domain.WhatsAppPrefix), s.smsFrom
}

// sendMessage performs one Messages.json create call.
func (s *Sender) sendMessage(ctx context.Context, from, to, body string) (string, error) {
	form := url.Values{
		"To":   {to},
		"From": {from},
		"Body": {body},
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gateway send error: status %d: %s", resp.StatusCode, respBody)
	}

	var created struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}
	return created.SID, nil
}
