package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Event delivery drivers.
const (
	EventsDriverNone  = "none"
	EventsDriverKafka = "kafka"
	EventsDriverNATS  = "nats"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	ShutdownTimeout time.Duration
	LogLevel        string

	EventsDriver string
	KafkaBrokers []string
	KafkaTopic   string
	NATSURL      string
	NATSSubject  string

	DispatchWorkers int
	DispatchBuffer  int

	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

const (
	defaultRunAddress      = ":8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
	defaultKafkaTopic      = "point-transactions"
	defaultNATSSubject     = "points.transactions"
	defaultDispatchWorkers = 4
	defaultDispatchBuffer  = 256
	defaultRateLimitBurst  = 100
)

// Load parses configuration from .env, environment variables and flags.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

// loadDotEnv exports variables from file without overriding the environment.
// A missing file is not an error.
func loadDotEnv(file string) error {
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:        getString(lookup, "LOG_LEVEL", defaultLogLevel),
		EventsDriver:    getString(lookup, "EVENTS_DRIVER", EventsDriverNone),
		KafkaTopic:      getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		NATSURL:         getString(lookup, "NATS_URL", ""),
		NATSSubject:     getString(lookup, "NATS_SUBJECT", defaultNATSSubject),
		DispatchWorkers: getInt(lookup, "DISPATCH_WORKERS", defaultDispatchWorkers),
		DispatchBuffer:  getInt(lookup, "DISPATCH_BUFFER", defaultDispatchBuffer),
		RateLimitRPS:    getFloat(lookup, "RATE_LIMIT_RPS", 0),
		RateLimitBurst:  getInt(lookup, "RATE_LIMIT_BURST", defaultRateLimitBurst),
	}

	fs := flag.NewFlagSet("pointledger", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		kafkaBrokersStr    = getString(lookup, "KAFKA_BROKERS", "")
		corsOriginsStr     = getString(lookup, "CORS_ALLOWED_ORIGINS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN, in-memory storage when empty")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.EventsDriver, "events", cfg.EventsDriver, "Transaction events driver: none, kafka, nats")
	fs.StringVar(&kafkaBrokersStr, "kafka-brokers", kafkaBrokersStr, "Comma separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for transaction events")
	fs.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server URL")
	fs.StringVar(&cfg.NATSSubject, "nats-subject", cfg.NATSSubject, "NATS subject for transaction events")
	fs.IntVar(&cfg.DispatchWorkers, "dispatch-workers", cfg.DispatchWorkers, "Number of event dispatch workers")
	fs.IntVar(&cfg.DispatchBuffer, "dispatch-buffer", cfg.DispatchBuffer, "Pending events per dispatch worker")
	fs.Float64Var(&cfg.RateLimitRPS, "rate-limit", cfg.RateLimitRPS, "Requests per second, unlimited when zero")
	fs.IntVar(&cfg.RateLimitBurst, "rate-burst", cfg.RateLimitBurst, "Rate limiter burst size")
	fs.StringVar(&corsOriginsStr, "cors-origins", corsOriginsStr, "Comma separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(kafkaBrokersStr)
	cfg.CORSAllowedOrigins = splitList(corsOriginsStr)
	cfg.EventsDriver = strings.ToLower(strings.TrimSpace(cfg.EventsDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DispatchWorkers <= 0 {
		cfg.DispatchWorkers = defaultDispatchWorkers
	}

	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = defaultDispatchBuffer
	}

	if cfg.RateLimitRPS < 0 {
		cfg.RateLimitRPS = 0
	}

	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	switch cfg.EventsDriver {
	case "", EventsDriverNone:
		cfg.EventsDriver = EventsDriverNone
	case EventsDriverKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka brokers must be provided for kafka events driver")
		}
	case EventsDriverNATS:
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("nats url must be provided for nats events driver")
		}
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.EventsDriver)
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
