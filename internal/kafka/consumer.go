package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bookabite/reservations/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeEvents decodes each message into a ReservationEvent. Undecodable
// messages are logged and skipped.
func (c *Consumer) ConsumeEvents(ctx context.Context, handle func(context.Context, domain.ReservationEvent) error) error {
	return c.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
		return DecodeEvent(ctx, msg.Value, c.log, handle)
	})
}

func DecodeEvent(ctx context.Context, body []byte, log *zap.Logger, handle func(context.Context, domain.ReservationEvent) error) error {
	var event domain.ReservationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn("skipping undecodable event", zap.Error(err))
		return nil
	}
	return handle(ctx, event)
}
