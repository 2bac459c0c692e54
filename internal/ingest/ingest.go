// Package ingest sequences the inbound webhook flow: authenticate, detect the
// channel, classify the text, geocode, persist, attach media, notify the
// dashboard topic, and confirm back to the sender — all within the webhook
// request. Enrichment failures degrade the report; only authentication stops it.
package ingest

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
	"github.com/couchcryptid/hazard-report-ingest/internal/observability"
)

// EventNewReport is the publish event emitted once per created report.
const EventNewReport = "new-report"

// TwiML acknowledgement bodies expected by the gateway.
const (
	twimlOK    = "<Response></Response>"
	twimlError = "<Response><Message>Error</Message></Response>"
)

// SignatureValidator gates inbound webhooks.
type SignatureValidator interface {
	ValidateRequest(r *http.Request, rawBody []byte) bool
}

// MediaFetcher downloads a report's attachment; nil means skipped or failed.
type MediaFetcher interface {
	Fetch(ctx context.Context, mediaURL, contentType, reportID string) *domain.Media
}

// ConfirmationSender acknowledges a stored report to its sender.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, report domain.Report, ch domain.ChannelInfo) (string, error)
}

// Publisher emits dashboard notification events.
type Publisher interface {
	Publish(ctx context.Context, event string, report domain.Report) error
}

// ReportStore owns the persisted report collection.
type ReportStore interface {
	Create(draft domain.Report) domain.Report
	UpdateByID(id string, mutate func(*domain.Report)) bool
	List() []domain.Report
	Count() int
}

// Pipeline orchestrates one ingestion flow per inbound webhook call.
// geocoder and publisher may be nil when the corresponding feature is disabled.
type Pipeline struct {
	validator SignatureValidator
	geocoder  domain.Geocoder
	media     MediaFetcher
	sender    ConfirmationSender
	publisher Publisher
	store     ReportStore
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Pipeline with the given collaborators and observability.
func New(validator SignatureValidator, geocoder domain.Geocoder, media MediaFetcher, sender ConfirmationSender, publisher Publisher, store ReportStore, metrics *observability.Metrics, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		validator: validator,
		geocoder:  geocoder,
		media:     media,
		sender:    sender,
		publisher: publisher,
		store:     store,
		metrics:   metrics,
		logger:    logger,
	}
}

// CheckReadiness reports whether the pipeline can serve traffic. All
// collaborators are in-process or best-effort, so readiness follows
// construction (the store has already attempted its startup load).
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	return nil
}

// HandleWebhook processes one inbound gateway webhook and answers with the
// gateway's TwiML acknowledgement. The response is not written until the
// confirmation send has been attempted, so webhook latency includes the
// geocoder round-trip and any media download — an accepted trade-off at this
// service's load.
func (p *Pipeline) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		p.metrics.WebhookDuration.Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("webhook handling panicked", "panic", rec)
			writeTwiML(w, http.StatusInternalServerError, twimlError)
		}
	}()

	rawBody, err := readBody(r)
	if err != nil {
		p.logger.Error("read webhook body failed", "error", err)
		writeTwiML(w, http.StatusInternalServerError, twimlError)
		return
	}

	if !p.validator.ValidateRequest(r, rawBody) {
		p.metrics.WebhookRejected.Inc()
		http.Error(w, "signature validation failed", http.StatusForbidden)
		return
	}

	// Parse the exact raw body once; the same bytes were just validated.
	params, err := url.ParseQuery(string(rawBody))
	if err != nil {
		p.logger.Error("unparseable webhook body", "error", err)
		writeTwiML(w, http.StatusInternalServerError, twimlError)
		return
	}

	ctx := r.Context()
	ch := domain.DetectChannel(params.Get("From"))
	cls := domain.ClassifyMessage(params.Get("Body"))
	numMedia, _ := strconv.Atoi(params.Get("NumMedia"))

	report := p.store.Create(domain.Report{
		PhoneNumber: params.Get("From"),
		Message:     params.Get("Body"),
		HazardType:  cls.HazardType,
		Urgency:     cls.Urgency,
		Location:    cls.Location,
		Coordinates: p.locate(ctx, cls.Location),
		MessageSID:  params.Get("MessageSid"),
		Source:      ch.Channel,
		HasMedia:    numMedia > 0,
	})

	p.metrics.ReportsIngested.WithLabelValues(report.HazardType, report.Source).Inc()
	p.metrics.ReportsRetained.Set(float64(p.store.Count()))
	p.logger.Info("report created",
		"report_id", report.ID,
		"hazard_type", report.HazardType,
		"urgency", report.Urgency,
		"location", report.Location,
		"channel", report.Source,
	)

	if numMedia > 0 && p.media != nil {
		report = p.attachMedia(ctx, report, params)
	}

	p.notify(ctx, report)
	p.confirm(ctx, report, ch)

	writeTwiML(w, http.StatusOK, twimlOK)
}

// HandleListReports serves the full current collection, most-recent-first.
func (p *Pipeline) HandleListReports(w http.ResponseWriter, _ *http.Request) {
	reports := p.store.List()
	writeJSON(w, http.StatusOK, listResponse{
		Count:   len(reports),
		Reports: reports,
	})
}

// locate resolves a classified location phrase to coordinates. The geocoder
// already skips the unknown-location sentinel; any failure yields absent
// coordinates and the report proceeds without them.
func (p *Pipeline) locate(ctx context.Context, phrase string) *domain.Coordinates {
	if p.geocoder == nil {
		return nil
	}
	coords, err := p.geocoder.Locate(ctx, phrase)
	if err != nil {
		p.logger.Warn("geocoding failed", "location", phrase, "error", err)
		return nil
	}
	return coords
}

// attachMedia downloads the first attachment and records it on the stored
// report. A report evicted before the download completes loses its media;
// that is accepted, not an error.
func (p *Pipeline) attachMedia(ctx context.Context, report domain.Report, params url.Values) domain.Report {
	media := p.media.Fetch(ctx, params.Get("MediaUrl0"), params.Get("MediaContentType0"), report.ID)
	if media == nil {
		return report
	}
	if !p.store.UpdateByID(report.ID, func(r *domain.Report) { r.Media = media }) {
		p.logger.Warn("report evicted before media attach", "report_id", report.ID)
		return report
	}
	report.Media = media
	return report
}

func (p *Pipeline) notify(ctx context.Context, report domain.Report) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, EventNewReport, report); err != nil {
		p.logger.Warn("publish new-report event failed", "report_id", report.ID, "error", err)
	}
}

// confirm is fire-and-forget relative to the webhook acknowledgement: a send
// failure is logged with the channel and changes nothing about the response.
func (p *Pipeline) confirm(ctx context.Context, report domain.Report, ch domain.ChannelInfo) {
	sid, err := p.sender.SendConfirmation(ctx, report, ch)
	if err != nil {
		p.logger.Warn("confirmation send failed", "channel", ch.Channel, "report_id", report.ID, "error", err)
		return
	}
	if sid != "" {
		p.logger.Info("confirmation sent", "channel", ch.Channel, "report_id", report.ID, "message_sid", sid)
	}
}
