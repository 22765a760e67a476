package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	defaultAddr              = ":3130"
	defaultServiceName       = "coffee-machine"
	defaultLowStockThreshold = 1000
	defaultRequestTimeoutSec = 30
	defaultKafkaTopic        = "coffee-machine.sales"
)

const (
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
	JournalMongo    = "mongo"
)

type Config struct {
	Addr              string
	ServiceName       string
	MenuFile          string
	LowStockThreshold int
	RequestTimeout    time.Duration
	LogLevel          string
	RedisAddr         string
	KafkaBrokers      []string
	KafkaTopic        string
	SalesJournal      string
	DatabaseURL       string
	MongoURI          string
	LokiURL           string
	OTLPEndpoint      string
}

// Load reads the environment and lets command-line flags override it.
func Load(args []string) (Config, error) {
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:         stringEnv(getenv, "ADDR", defaultAddr),
		ServiceName:  stringEnv(getenv, "SERVICE_NAME", defaultServiceName),
		MenuFile:     getenv("MENU_FILE"),
		LogLevel:     stringEnv(getenv, "LOG_LEVEL", "info"),
		RedisAddr:    getenv("REDIS_ADDR"),
		KafkaBrokers: listEnv(getenv, "KAFKA_BROKERS"),
		KafkaTopic:   stringEnv(getenv, "KAFKA_TOPIC", defaultKafkaTopic),
		SalesJournal: getenv("SALES_JOURNAL"),
		DatabaseURL:  getenv("DATABASE_URL"),
		MongoURI:     getenv("MONGO_URI"),
		LokiURL:      getenv("LOKI_URL"),
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if port := getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}

	threshold, err := intEnv(getenv, "LOW_STOCK_THRESHOLD", defaultLowStockThreshold)
	if err != nil {
		return Config{}, err
	}
	timeoutSec, err := intEnv(getenv, "REQUEST_TIMEOUT_SECONDS", defaultRequestTimeoutSec)
	if err != nil {
		return Config{}, err
	}

	flags := pflag.NewFlagSet("coffee-machine", pflag.ContinueOnError)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flags.StringVar(&cfg.MenuFile, "menu", cfg.MenuFile, "YAML menu definition (built-in menu when empty)")
	flags.IntVar(&cfg.LowStockThreshold, "low-stock", threshold, "level under which an ingredient is flagged low")
	flags.IntVar(&timeoutSec, "timeout", timeoutSec, "per-request timeout in seconds")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for payment idempotency keys")
	flags.StringSliceVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "Kafka brokers for sale events")
	flags.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for sale events")
	flags.StringVar(&cfg.SalesJournal, "journal", cfg.SalesJournal, "sales journal: memory, postgres or mongo")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL DSN for the sales journal")
	flags.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB URI for the sales journal")
	flags.StringVar(&cfg.LokiURL, "loki", cfg.LokiURL, "Loki base URL for log shipping")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if timeoutSec <= 0 {
		return Config{}, fmt.Errorf("timeout must be positive, got %d", timeoutSec)
	}
	cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.LowStockThreshold < 0 {
		return Config{}, fmt.Errorf("low stock threshold must not be negative, got %d", cfg.LowStockThreshold)
	}

	if cfg.SalesJournal == "" {
		switch {
		case cfg.DatabaseURL != "":
			cfg.SalesJournal = JournalPostgres
		case cfg.MongoURI != "":
			cfg.SalesJournal = JournalMongo
		default:
			cfg.SalesJournal = JournalMemory
		}
	}
	switch cfg.SalesJournal {
	case JournalMemory:
	case JournalPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("journal %q needs DATABASE_URL", cfg.SalesJournal)
		}
	case JournalMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("journal %q needs MONGO_URI", cfg.SalesJournal)
		}
	default:
		return Config{}, fmt.Errorf("unknown sales journal %q", cfg.SalesJournal)
	}

	return cfg, nil
}

func stringEnv(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func listEnv(getenv func(string) string, key string) []string {
	var out []string
	for _, part := range strings.Split(getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
