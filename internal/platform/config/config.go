// Package config builds the service configuration from environment variables.
//
// Configuration is an explicit value passed to constructors; nothing below
// main reads the process environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server   Server
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	JWTSigningKey  string
	JWTIssuer      string
	RequestTimeout time.Duration
}

// IsProduction reports whether the service runs in production mode.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// PostgresConfig configures the durable store. An empty DSN selects the
// in-memory stores (development and tests).
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

// RedisConfig configures the template cache. An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TemplateTTL  time.Duration
}

// KafkaConfig configures the audit outbox relay. No brokers disables the relay.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	Partitions   int32
	Replication  int16
	PollInterval time.Duration
	BatchSize    int
}

// Enabled reports whether the relay should run.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8080",
			Environment:    "development",
			JWTSigningKey:  "dev-secret-key-change-in-production",
			JWTIssuer:      "duediligence",
			RequestTimeout: 30 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			TxTimeout:       5 * time.Second,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			TemplateTTL:  24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Topic:        "onboarding.audit",
			Partitions:   3,
			Replication:  1,
			PollInterval: time.Second,
			BatchSize:    100,
		},
	}
}

// FromEnv overlays environment variables on the defaults so main stays lean.
func FromEnv() Config {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) Config {
	cfg := Default()

	setString(&cfg.Server.Addr, getenv("DD_ADDR"))
	setString(&cfg.Server.Environment, getenv("DD_ENV"))
	setString(&cfg.Server.JWTSigningKey, getenv("JWT_SIGNING_KEY"))
	setString(&cfg.Server.JWTIssuer, getenv("JWT_ISSUER"))
	setDuration(&cfg.Server.RequestTimeout, getenv("DD_REQUEST_TIMEOUT"))

	setString(&cfg.Postgres.DSN, getenv("DATABASE_URL"))
	setInt(&cfg.Postgres.MaxOpenConns, getenv("DATABASE_MAX_OPEN_CONNS"))
	setInt(&cfg.Postgres.MaxIdleConns, getenv("DATABASE_MAX_IDLE_CONNS"))
	setDuration(&cfg.Postgres.TxTimeout, getenv("DATABASE_TX_TIMEOUT"))

	setString(&cfg.Redis.URL, getenv("REDIS_URL"))
	setInt(&cfg.Redis.PoolSize, getenv("REDIS_POOL_SIZE"))
	setDuration(&cfg.Redis.TemplateTTL, getenv("REDIS_TEMPLATE_TTL"))

	if brokers := getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	setString(&cfg.Kafka.Topic, getenv("KAFKA_AUDIT_TOPIC"))
	setDuration(&cfg.Kafka.PollInterval, getenv("KAFKA_OUTBOX_POLL_INTERVAL"))
	setInt(&cfg.Kafka.BatchSize, getenv("KAFKA_OUTBOX_BATCH_SIZE"))

	return cfg
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}

func setDuration(dst *time.Duration, v string) {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}
