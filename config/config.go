// Package config loads the framework configuration from environment
// variables. Every knob has a default suitable for local development; only
// the bot token is mandatory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all framework configuration.
type Config struct {
	// Application
	App AppConfig

	// Telegram transport
	Telegram TelegramConfig

	// Polling driver
	Polling PollingConfig

	// Webhook driver
	Webhook WebhookConfig

	// Redis-backed chat store
	Redis RedisConfig

	// PostgreSQL-backed message store
	Database DatabaseConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// TelegramConfig holds transport settings.
type TelegramConfig struct {
	// Bot token from @BotFather. Loaded from the environment variable named
	// by BOTCORE_TOKEN_VAR (default TELEGRAM_BOT_TOKEN).
	Token string

	// Bot username without "@", used to gate "/cmd@username" commands.
	Username string

	// API server root; point at a local Bot API server to use one.
	BaseURL string

	// Per-call HTTP timeout for methods without their own deadline.
	Timeout time.Duration
}

// PollingConfig holds long polling settings.
type PollingConfig struct {
	// Long poll timeout in seconds. Zero means short polling.
	Timeout int

	// Batch size cap (1..100). Zero keeps the server default.
	Limit int

	// Minimum spacing between getUpdates calls.
	Interval time.Duration

	// Process only the most recent N pending updates on startup.
	LastN int

	// Discard the pending backlog on startup.
	DropPending bool

	// Updates dispatched in parallel. Zero or one keeps batches sequential.
	Concurrency int
}

// WebhookConfig holds webhook driver settings.
type WebhookConfig struct {
	// Enabled switches ingestion from polling to the webhook driver.
	Enabled bool

	// Listen address, e.g. ":8443".
	Addr string

	// Externally reachable URL registered with setWebhook.
	PublicURL string

	// Secret echoed by the API server on every delivery. Empty disables the
	// check.
	SecretToken string

	// Simultaneous delivery cap (1..100). Zero keeps the server default.
	MaxConnections int
}

// RedisConfig holds Redis connection settings for the chat store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// Enable for development without Redis.
	Disabled bool
}

// DatabaseConfig holds PostgreSQL connection settings for the message store.
type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// Enable for development without PostgreSQL.
	Disabled bool
}

// tokenVarName returns the name of the environment variable holding the bot
// token. The name itself is configurable so one host can run several bots.
func tokenVarName() string {
	return getEnv("BOTCORE_TOKEN_VAR", "TELEGRAM_BOT_TOKEN")
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:            getEnv("BOTCORE_APP_NAME", "botcore"),
			Environment:     Environment(getEnv("BOTCORE_ENV", string(EnvDevelopment))),
			Debug:           getEnvBool("BOTCORE_DEBUG", false),
			ShutdownTimeout: getEnvDuration("BOTCORE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Telegram: TelegramConfig{
			Token:    os.Getenv(tokenVarName()),
			Username: strings.TrimPrefix(getEnv("BOTCORE_BOT_USERNAME", ""), "@"),
			BaseURL:  getEnv("BOTCORE_API_URL", "https://api.telegram.org"),
			Timeout:  getEnvDuration("BOTCORE_API_TIMEOUT", 30*time.Second),
		},
		Polling: PollingConfig{
			Timeout:     getEnvInt("BOTCORE_POLL_TIMEOUT", 30),
			Limit:       getEnvInt("BOTCORE_POLL_LIMIT", 0),
			Interval:    getEnvDuration("BOTCORE_POLL_INTERVAL", 25*time.Millisecond),
			LastN:       getEnvInt("BOTCORE_POLL_LAST_N", 0),
			DropPending: getEnvBool("BOTCORE_POLL_DROP_PENDING", false),
			Concurrency: getEnvInt("BOTCORE_POLL_CONCURRENCY", 0),
		},
		Webhook: WebhookConfig{
			Enabled:        getEnvBool("BOTCORE_WEBHOOK_ENABLED", false),
			Addr:           getEnv("BOTCORE_WEBHOOK_ADDR", ":8443"),
			PublicURL:      getEnv("BOTCORE_WEBHOOK_URL", ""),
			SecretToken:    getEnv("BOTCORE_WEBHOOK_SECRET", ""),
			MaxConnections: getEnvInt("BOTCORE_WEBHOOK_MAX_CONNECTIONS", 0),
		},
		Redis: RedisConfig{
			Host:     getEnv("BOTCORE_REDIS_HOST", "localhost"),
			Port:     getEnvInt("BOTCORE_REDIS_PORT", 6379),
			Password: getEnv("BOTCORE_REDIS_PASSWORD", ""),
			DB:       getEnvInt("BOTCORE_REDIS_DB", 0),
			Disabled: getEnvBool("BOTCORE_REDIS_DISABLED", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("BOTCORE_DB_HOST", "localhost"),
			Port:     getEnvInt("BOTCORE_DB_PORT", 5432),
			Database: getEnv("BOTCORE_DB_NAME", "postgres"),
			User:     getEnv("BOTCORE_DB_USER", "postgres"),
			Password: getEnv("BOTCORE_DB_PASSWORD", ""),
			SSLMode:  getEnv("BOTCORE_DB_SSLMODE", "disable"),
			Disabled: getEnvBool("BOTCORE_DB_DISABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("config: bot token missing; set %s", tokenVarName())
	}
	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("config: unknown environment %q", c.App.Environment)
	}
	if c.Polling.Limit < 0 || c.Polling.Limit > 100 {
		return fmt.Errorf("config: poll limit %d out of range 0..100", c.Polling.Limit)
	}
	if c.Webhook.Enabled && c.Webhook.PublicURL == "" {
		return fmt.Errorf("config: webhook enabled but BOTCORE_WEBHOOK_URL is empty")
	}
	if c.Webhook.MaxConnections < 0 || c.Webhook.MaxConnections > 100 {
		return fmt.Errorf("config: webhook max connections %d out of range 0..100", c.Webhook.MaxConnections)
	}
	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
