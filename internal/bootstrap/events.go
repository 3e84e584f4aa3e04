package bootstrap

import (
	"context"
	"fmt"

	"github.com/bookabite/reservations/config"
	"github.com/bookabite/reservations/internal/kafka"
	"github.com/bookabite/reservations/internal/rabbitmq"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
	Close() error
}

// NewPublisher returns the broker client for cfg.Events.Driver, or nil when
// events are disabled.
func NewPublisher(cfg *config.Config, log *zap.Logger) (Publisher, error) {
	switch cfg.Events.Driver {
	case config.EventsKafka:
		return kafka.NewProducer(cfg.Kafka.Brokers, log), nil
	case config.EventsRabbitMQ:
		return rabbitmq.NewPublisher(cfg.RabbitMQ.URL, log), nil
	case config.EventsNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Events.Driver)
	}
}
