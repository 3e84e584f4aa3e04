package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/bookabite/reservations/config"
	"github.com/bookabite/reservations/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Storage bundles the two stores backed by one driver.
type Storage struct {
	TimeSlots    repository.TimeSlotRepository
	Reservations repository.ReservationRepository

	ping  func(ctx context.Context) error
	close func()
}

func (s *Storage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects to the configured driver and prepares its schema or indexes.
func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Database, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg.Mongo, log)
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return &Storage{
			TimeSlots:    repository.NewMemoryTimeSlotRepository(),
			Reservations: repository.NewMemoryReservationRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	log.Info("connected to postgres", zap.String("host", cfg.Host), zap.String("database", cfg.Name))

	return &Storage{
		TimeSlots:    repository.NewTimeSlotRepository(pool),
		Reservations: repository.NewReservationRepository(pool),
		ping:         pool.Ping,
		close:        pool.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*Storage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		disconnect()
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	slots := repository.NewMongoTimeSlotRepository(db)
	reservations := repository.NewMongoReservationRepository(db)
	if err := slots.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, err
	}
	if err := reservations.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, err
	}
	log.Info("connected to mongo", zap.String("database", cfg.Database))

	return &Storage{
		TimeSlots:    slots,
		Reservations: reservations,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: disconnect,
	}, nil
}
