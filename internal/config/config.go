// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Database DatabaseConfig `mapstructure:"database"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// LoggingConfig toggles zap development features and error alerting.
type LoggingConfig struct {
	Development  bool   `mapstructure:"development"`
	AlertWebhook string `mapstructure:"alert_webhook"`
}

// ServerConfig controls the operational HTTP server. Enabled starts it
// alongside the scrape and consume commands; `firstd serve` always runs
// it.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// RedisConfig locates the Redis instance backing the queue and seen-set.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// QueueConfig names the queue lists and selects the implementation.
// Provider is "redis" or "memory"; memory is for development only.
type QueueConfig struct {
	Provider   string `mapstructure:"provider"`
	Main       string `mapstructure:"main"`
	Processing string `mapstructure:"processing"`
}

// DatabaseConfig controls access to the relational database. Provider is
// "postgres" or "noop"; noop drops writes and lists no subscriptions.
type DatabaseConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// ScraperConfig governs the scrape cycle.
type ScraperConfig struct {
	Categories         []string `mapstructure:"categories"`
	BaseURL            string   `mapstructure:"base_url"`
	UserAgent          string   `mapstructure:"user_agent"`
	ListingLimit       int      `mapstructure:"listing_limit"`
	IntervalSeconds    int      `mapstructure:"interval_seconds"`
	NavTimeoutSeconds  int      `mapstructure:"nav_timeout_seconds"`
	DomainRPS          float64  `mapstructure:"domain_rps"`
	DomainBurst        int      `mapstructure:"domain_burst"`
	FetchTimeoutSecond int      `mapstructure:"fetch_timeout_seconds"`
}

// ConsumerConfig governs the queue consumer loop.
type ConsumerConfig struct {
	ClaimTimeoutSeconds int `mapstructure:"claim_timeout_seconds"`
	BackoffSeconds      int `mapstructure:"backoff_seconds"`
}

// NotifyConfig holds delivery channel credentials.
type NotifyConfig struct {
	TelegramToken string `mapstructure:"telegram_token"`
}

// Load builds a Config from disk/environment. Environment variables use
// the FIRST prefix with dots replaced by underscores, e.g.
// FIRST_REDIS_URL overrides redis.url.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIRST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", false)
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("queue.provider", "redis")
	v.SetDefault("queue.main", "task_queue")
	v.SetDefault("queue.processing", "task_queue:processing")
	v.SetDefault("database.provider", "postgres")
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("scraper.categories", []string{
		"business",
		"development",
		"engineering-architecture",
		"design",
		"marketing",
		"writing-translation",
		"support",
		"training",
	})
	v.SetDefault("scraper.base_url", "https://mostaql.com")
	v.SetDefault("scraper.listing_limit", 10)
	v.SetDefault("scraper.interval_seconds", 60)
	v.SetDefault("scraper.nav_timeout_seconds", 45)
	v.SetDefault("scraper.fetch_timeout_seconds", 30)
	v.SetDefault("scraper.domain_rps", 2)
	v.SetDefault("scraper.domain_burst", 1)
	v.SetDefault("consumer.claim_timeout_seconds", 30)
	v.SetDefault("consumer.backoff_seconds", 5)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	switch c.Queue.Provider {
	case "redis", "memory":
	default:
		return fmt.Errorf("queue.provider must be redis or memory, got %q", c.Queue.Provider)
	}
	switch c.Database.Provider {
	case "postgres", "noop":
	default:
		return fmt.Errorf("database.provider must be postgres or noop, got %q", c.Database.Provider)
	}
	if c.Queue.Provider == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("redis.url must be set when queue.provider is redis")
	}
	if c.Database.Provider == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must be set when database.provider is postgres")
	}
	if c.Queue.Main == "" || c.Queue.Processing == "" {
		return fmt.Errorf("queue.main and queue.processing must be set")
	}
	if c.Queue.Main == c.Queue.Processing {
		return fmt.Errorf("queue.main and queue.processing must differ")
	}
	if len(c.Scraper.Categories) == 0 {
		return fmt.Errorf("scraper.categories must not be empty")
	}
	if c.Scraper.IntervalSeconds <= 0 {
		return fmt.Errorf("scraper.interval_seconds must be > 0")
	}
	if c.Consumer.ClaimTimeoutSeconds <= 0 {
		return fmt.Errorf("consumer.claim_timeout_seconds must be > 0")
	}
	return nil
}

// ScrapeInterval returns the scrape cadence as a duration.
func (c Config) ScrapeInterval() time.Duration {
	return time.Duration(c.Scraper.IntervalSeconds) * time.Second
}

// NavTimeout bounds one headless detail page visit.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Scraper.NavTimeoutSeconds) * time.Second
}

// FetchTimeout bounds one listing page fetch.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scraper.FetchTimeoutSecond) * time.Second
}

// ClaimTimeout is how long a consumer blocks waiting for work.
func (c Config) ClaimTimeout() time.Duration {
	return time.Duration(c.Consumer.ClaimTimeoutSeconds) * time.Second
}

// Backoff is the pause after a failed claim or delivery.
func (c Config) Backoff() time.Duration {
	return time.Duration(c.Consumer.BackoffSeconds) * time.Second
}
