package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Feed    FeedConfig
	Monitor MonitorConfig
	Notify  NotifyConfig
	Worker  WorkerConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second across all clients
}

type FeedConfig struct {
	URL      string
	APIKey   string // empty means fallback-only operation
	PageSize int
	Timeout  time.Duration
}

type MonitorConfig struct {
	Enabled         bool
	Interval        time.Duration
	MaxRetries      int
	FreshnessWindow time.Duration
}

type NotifyConfig struct {
	PushURL         string
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopic       string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisChannel    string
	DeliveryTimeout time.Duration
}

// WorkerConfig sizes the per-channel delivery queues. Each channel has one
// worker so deliveries reach it in dispatch order.
type WorkerConfig struct {
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// maxFeedTimeout bounds the provider call so a hung feed cannot stall the tick schedule.
const maxFeedTimeout = 10 * time.Second

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("SERVER_RATE_LIMIT", 20),
		},
		Feed: FeedConfig{
			URL:      getEnv("FEED_URL", "https://www.safetydata.go.kr/V2/api/DSSP-IF-00247"),
			APIKey:   os.Getenv("FEED_API_KEY"),
			PageSize: getEnvInt("FEED_PAGE_SIZE", 10),
			Timeout:  getEnvDuration("FEED_TIMEOUT", maxFeedTimeout),
		},
		Monitor: MonitorConfig{
			Enabled:         getEnvBool("MONITOR_ENABLED", true),
			Interval:        getEnvDuration("MONITOR_INTERVAL", 30*time.Second),
			MaxRetries:      getEnvInt("MONITOR_MAX_RETRIES", 3),
			FreshnessWindow: getEnvDuration("MONITOR_FRESHNESS_WINDOW", time.Hour),
		},
		Notify: NotifyConfig{
			PushURL:         os.Getenv("PUSH_GATEWAY_URL"),
			MQTTBroker:      os.Getenv("MQTT_BROKER"),
			MQTTClientID:    getEnv("MQTT_CLIENT_ID", "safety-alert"),
			MQTTTopic:       getEnv("MQTT_VIBRATION_TOPIC", "safety/alerts/vibration"),
			RedisAddr:       os.Getenv("REDIS_ADDR"),
			RedisPassword:   os.Getenv("REDIS_PASSWORD"),
			RedisDB:         getEnvInt("REDIS_DB", 0),
			RedisChannel:    getEnv("REDIS_VISUAL_CHANNEL", "safety:alerts:visual"),
			DeliveryTimeout: getEnvDuration("NOTIFY_DELIVERY_TIMEOUT", 5*time.Second),
		},
		Worker: WorkerConfig{
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 64),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/safety-alerts.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("server rate limit must be at least 1, got %d", c.Server.RateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Feed.Timeout <= 0 || c.Feed.Timeout > maxFeedTimeout {
		return fmt.Errorf("feed timeout must be in (0, %s], got %s", maxFeedTimeout, c.Feed.Timeout)
	}
	if c.Feed.PageSize < 1 || c.Feed.PageSize > 1000 {
		return fmt.Errorf("invalid feed page size: %d", c.Feed.PageSize)
	}

	if c.Monitor.Interval < time.Second {
		return fmt.Errorf("monitor interval must be at least 1 second")
	}
	if c.Monitor.MaxRetries < 1 {
		return fmt.Errorf("monitor max retries must be at least 1")
	}
	if c.Monitor.FreshnessWindow <= 0 {
		return fmt.Errorf("monitor freshness window must be positive")
	}

	if c.Worker.BufferSize < 1 {
		return fmt.Errorf("invalid worker buffer size: %d", c.Worker.BufferSize)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
