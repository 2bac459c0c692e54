// Package kafka publishes dashboard notification events. The socket fan-out to
// browser clients is a downstream consumer's concern; this service only emits.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/hazard-report-ingest/internal/config"
	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
)

// Publisher produces report events to the dashboard topic.
// It implements ingest.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the report and emits one event message keyed by report ID.
func (p *Publisher) Publish(ctx context.Context, event string, report domain.Report) error {
	msg, err := buildMessage(event, report)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// buildMessage marshals a report into an event message.
func buildMessage(event string, report domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event", Value: []byte(event)},
			{Key: "hazard_type", Value: []byte(report.HazardType)},
		},
	}, nil
}
