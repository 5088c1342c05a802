package notify

import (
	"context"
	"encoding/json"
	"time"

	"medibook/internal/pkg/config"
	"medibook/internal/pkg/errs"
	"medibook/internal/usecase/commands"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes booking lifecycle events. Callers treat
// publishing as fire-and-forget; delivery failures are theirs to log,
// never to act on.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(cfg config.KafkaConfig) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.NotificationsTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &KafkaNotifier{writer: writer}
}

// Keyed by booking so one booking's events stay ordered per partition.
func (n *KafkaNotifier) Publish(ctx context.Context, event commands.BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "failed to marshal booking event")
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.BookingID.String()),
		Value: data,
		Time:  event.OccurredAt,
	})
	if err != nil {
		return errs.Wrap(err, "failed to write booking event")
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
