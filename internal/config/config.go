package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sink names accepted by FEATURE_SINK.
const (
	SinkNone       = "none"
	SinkClickHouse = "clickhouse"
	SinkSQLite     = "sqlite"
)

type Config struct {
	// Server
	Port        int
	Env         string
	MaxBodySize int64

	// CORS
	AllowedOrigins []string

	// Feature extraction
	FeatureProfile     string
	FeatureProfilePath string
	FeatureSink        string

	// Backends; each is optional unless the configured sink needs it
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string
	SQLitePath    string
	CacheTTL      time.Duration

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// Load loads configuration from environment variables.
// It returns an error if the selected sink is missing its connection string.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Env:         getEnv("ENV", "development"),
		MaxBodySize: int64(getEnvInt("MAX_BODY_SIZE", 64<<20)),

		FeatureProfile:     getEnv("FEATURE_PROFILE", ""),
		FeatureProfilePath: getEnv("FEATURE_PROFILE_PATH", ""),
		FeatureSink:        strings.ToLower(getEnv("FEATURE_SINK", SinkNone)),

		PostgresURL:   os.Getenv("POSTGRES_URL"),
		ClickHouseURL: os.Getenv("CLICKHOUSE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SQLitePath:    getEnv("SQLITE_PATH", "features.db"),
		CacheTTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),

		WorkerCount:   getEnvInt("WORKER_COUNT", 8),
		QueueSize:     getEnvInt("QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("BATCH_SIZE", 500),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 1*time.Second),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	var err error
	switch cfg.FeatureSink {
	case SinkNone, SinkSQLite:
	case SinkClickHouse:
		if cfg.ClickHouseURL, err = getEnvRequired("CLICKHOUSE_URL"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown FEATURE_SINK %q (want none, clickhouse or sqlite)", cfg.FeatureSink)
	}

	if cfg.WorkerCount < 1 || cfg.BatchSize < 1 || cfg.QueueSize < 1 {
		return nil, fmt.Errorf("WORKER_COUNT, BATCH_SIZE and QUEUE_SIZE must be positive")
	}

	return cfg, nil
}

// IsProduction reports whether ENV selects production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
