// Package kafka mirrors search records onto an audit topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-proximity-service/internal/config"
	"github.com/couchcryptid/quake-proximity-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes search records to the audit topic. It implements
// lookup.SearchRecorder; like every recorder it is best-effort, so a broker
// outage degrades to a logged warning rather than a failed lookup.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured audit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Record serializes and publishes one search record.
func (w *Writer) Record(ctx context.Context, rec domain.SearchRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SearchRecord into a Kafka message keyed by
// city name so one city's searches stay on one partition.
func serializeToMessage(rec domain.SearchRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize search record: %w", err)
	}

	outcome := "no_results"
	if rec.ClosestMagnitude != nil {
		outcome = "found"
	}

	return kafkago.Message{
		Key:   []byte(rec.CityName),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(outcome)},
			{Key: "recorded_at", Value: []byte(rec.RecordedAt.Format(time.RFC3339))},
		},
	}, nil
}
