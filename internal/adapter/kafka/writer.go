// Package kafka publishes extracted world records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// Message header keys.
const (
	HeaderSex       = "sex"
	HeaderScrapedAt = "scraped_at"
	HeaderRunID     = "run_id"
)

// Writer produces one message per record to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the records topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Load publishes every record of every set in a single WriteMessages call.
func (w *Writer) Load(ctx context.Context, sets []domain.RecordSet) error {
	var msgs []kafkago.Message
	for _, set := range sets {
		for _, rec := range set.Records {
			msg, err := serializeToMessage(set, rec)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("records published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey is the partition key for a record: records of the same event
// and sex land on the same partition.
func MessageKey(sex domain.Sex, event string) string {
	return string(sex) + "|" + event
}

// serializeToMessage marshals one record of set into a Kafka message.
func serializeToMessage(set domain.RecordSet, rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(set.Sex, rec.Event)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderSex, Value: []byte(set.Sex)},
			{Key: HeaderScrapedAt, Value: []byte(set.ScrapedAt.UTC().Format(time.RFC3339))},
			{Key: HeaderRunID, Value: []byte(set.RunID)},
		},
	}, nil
}
