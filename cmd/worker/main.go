package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookabite/reservations/config"
	"github.com/bookabite/reservations/internal/bootstrap"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/bookabite/reservations/internal/email"
	"github.com/bookabite/reservations/internal/kafka"
	"github.com/bookabite/reservations/internal/logger"
	"github.com/bookabite/reservations/internal/rabbitmq"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("init app", zap.Error(err))
	}
	defer app.Close()

	sender := email.NewSender(logg)
	go consumeNotifications(ctx, cfg, logg, sender.Send)

	sweep := time.NewTicker(time.Duration(cfg.Worker.CompletionSweepMinutes) * time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-sweep.C:
			completed, err := app.Reservations.CompletePast(ctx, time.Now())
			if err != nil {
				logg.Error("complete past reservations", zap.Error(err))
				continue
			}
			if len(completed) > 0 {
				logg.Info("completed past reservations", zap.Int("count", len(completed)))
			}
		case <-ctx.Done():
			logg.Info("shutting down worker")
			return
		}
	}
}

func consumeNotifications(ctx context.Context, cfg *config.Config, logg *zap.Logger, handle func(context.Context, domain.ReservationEvent) error) {
	topic := cfg.Events.NotificationsTopic
	if topic == "" {
		topic = cfg.Events.ReservationTopic
	}

	var err error
	switch cfg.Events.Driver {
	case config.EventsKafka:
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, logg)
		defer consumer.Close()
		err = consumer.ConsumeEvents(ctx, handle)
	case config.EventsRabbitMQ:
		consumer := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, topic, logg)
		err = consumer.Consume(ctx, func(ctx context.Context, body []byte) error {
			return kafka.DecodeEvent(ctx, body, logg, handle)
		})
	default:
		logg.Info("events disabled, notifications consumer not started")
		return
	}
	if err != nil && ctx.Err() == nil {
		logg.Error("notifications consumer stopped", zap.Error(err))
	}
}
