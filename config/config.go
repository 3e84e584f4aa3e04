package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bookabite/reservations/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Mongo       MongoConfig       `yaml:"mongo"`
	Redis       RedisConfig       `yaml:"redis"`
	Events      EventsConfig      `yaml:"events"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Auth        AuthConfig        `yaml:"auth"`
	Reservation ReservationConfig `yaml:"reservation"`
	Worker      WorkerConfig      `yaml:"worker"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Log         logger.Config     `yaml:"log"`
}

type HTTPConfig struct {
	Address     string `yaml:"address"`
	SwaggerSpec string `yaml:"swagger_spec"`
}

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

const (
	EventsKafka    = "kafka"
	EventsRabbitMQ = "rabbitmq"
	EventsNone     = "none"
)

type EventsConfig struct {
	Driver             string `yaml:"driver"`
	ReservationTopic   string `yaml:"reservation_topic"`
	NotificationsTopic string `yaml:"notifications_topic"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type ReservationConfig struct {
	AvailabilityCacheTTLSeconds int `yaml:"availability_cache_ttl_seconds"`
	CodeAttempts                int `yaml:"code_attempts"`
}

type WorkerConfig struct {
	CompletionSweepMinutes int `yaml:"completion_sweep_minutes"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// LoadConfig reads an optional .env file, parses the YAML file at path, applies
// environment overrides for secrets and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"JWT_SECRET":        &c.Auth.JWTSecret,
		"DATABASE_PASSWORD": &c.Database.Password,
		"MONGO_URI":         &c.Mongo.URI,
		"REDIS_PASSWORD":    &c.Redis.Password,
		"RABBITMQ_URL":      &c.RabbitMQ.URL,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = strings.Split(brokers, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "bookabite"
	}
	if c.Events.Driver == "" {
		c.Events.Driver = EventsNone
	}
	if c.Events.ReservationTopic == "" {
		c.Events.ReservationTopic = "reservation-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "reservation-worker"
	}
	if c.Reservation.AvailabilityCacheTTLSeconds == 0 {
		c.Reservation.AvailabilityCacheTTLSeconds = 30
	}
	if c.Reservation.CodeAttempts == 0 {
		c.Reservation.CodeAttempts = 5
	}
	if c.Worker.CompletionSweepMinutes == 0 {
		c.Worker.CompletionSweepMinutes = 15
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Events.Driver {
	case EventsKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka events require at least one broker")
		}
	case EventsRabbitMQ:
		if c.RabbitMQ.URL == "" {
			return errors.New("rabbitmq events require rabbitmq.url")
		}
	case EventsNone:
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.Reservation.AvailabilityCacheTTLSeconds < 0 {
		return errors.New("reservation.availability_cache_ttl_seconds must not be negative")
	}
	if c.Reservation.CodeAttempts < 1 {
		return errors.New("reservation.code_attempts must be positive")
	}
	if c.Worker.CompletionSweepMinutes < 1 {
		return errors.New("worker.completion_sweep_minutes must be positive")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must not be negative")
	}
	return nil
}
