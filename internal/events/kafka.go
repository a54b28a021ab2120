// Package events publishes job outcomes to a Kafka topic so other services
// can react to finished jobs without exposing a webhook.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/maauso/ffmpeg-service/internal/notify"
)

// messageWriter is the subset of kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per finished job, keyed by generation id.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return newKafkaPublisher(w, logger)
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish writes n as JSON. The status is also carried as a header.
func (p *KafkaPublisher) Publish(ctx context.Context, n notify.Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("events: marshal notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.GenerationID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(n.Status)},
			{Key: "processing_id", Value: []byte(n.ProcessingID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write message: %w", err)
	}

	p.logger.Debug("job event published",
		slog.String("processing_id", n.ProcessingID),
		slog.String("status", string(n.Status)),
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
