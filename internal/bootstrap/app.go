package bootstrap

import (
	"context"
	"time"

	"github.com/bookabite/reservations/api"
	"github.com/bookabite/reservations/config"
	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/cache"
	"github.com/bookabite/reservations/internal/kafka"
	"github.com/bookabite/reservations/internal/service/reservation"
	"github.com/bookabite/reservations/internal/service/timeslot"
	"go.uber.org/zap"
)

// App holds the wired services and the resources they own.
type App struct {
	Reservations *reservation.Service
	TimeSlots    *timeslot.Service

	cfg       *config.Config
	log       *zap.Logger
	storage   *Storage
	cache     *cache.RedisCache
	publisher Publisher
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	storage, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	publisher, err := NewPublisher(cfg, log)
	if err != nil {
		storage.Close()
		return nil, err
	}

	app := &App{cfg: cfg, log: log, storage: storage, publisher: publisher}

	var (
		slotCache        timeslot.Cache
		reservationCache reservation.Cache
		producer         reservation.Producer
	)
	if cfg.Redis.Enabled {
		app.cache = cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Reservation.AvailabilityCacheTTLSeconds)*time.Second)
		slotCache, reservationCache = app.cache, app.cache
	}
	if publisher != nil {
		producer = publisher
	}

	app.TimeSlots = timeslot.NewService(storage.TimeSlots, slotCache, log)
	app.Reservations = reservation.NewService(
		storage.Reservations,
		storage.TimeSlots,
		reservationCache,
		producer,
		log,
		reservation.WithTopic(cfg.Events.ReservationTopic),
		reservation.WithNotificationsTopic(cfg.Events.NotificationsTopic),
		reservation.WithCodeAttempts(cfg.Reservation.CodeAttempts),
	)
	return app, nil
}

// HealthChecks lists one probe per configured backing service.
func (a *App) HealthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{
		a.cfg.Database.Driver: a.storage.Ping,
	}
	if a.cache != nil {
		checks["redis"] = a.cache.Ping
	}
	if producer, ok := a.publisher.(*kafka.Producer); ok {
		checks["kafka"] = producer.CheckConnection
	}
	return checks
}

func (a *App) RouterDeps(verifier auth.TokenVerifier) api.RouterDeps {
	deps := api.RouterDeps{
		Log:          a.log,
		Verifier:     verifier,
		Reservations: api.NewReservationHandler(a.Reservations),
		TimeSlots:    api.NewTimeSlotHandler(a.TimeSlots),
		Health:       api.NewHealthHandler(a.HealthChecks()),
		SwaggerSpec:  a.cfg.HTTP.SwaggerSpec,
	}
	if a.cfg.RateLimit.Enabled {
		deps.RateLimiter = api.NewRateLimiter(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst, a.log)
	}
	return deps
}

func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("close publisher", zap.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("close cache", zap.Error(err))
		}
	}
	a.storage.Close()
}
