package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stockpulse/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	AI            AIConfig
	Messaging     MessagingConfig
	MarketData    MarketDataConfig
	Agent         AgentConfig
	DailyUpdate   DailyUpdateConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"stockpulse"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"1.0.0"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"SERVER_PORT" default:"8000"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AIConfig struct {
	OpenAIKey   string        `envconfig:"OPENAI_API_KEY" required:"true"`
	Model       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Temperature float64       `envconfig:"OPENAI_TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"OPENAI_TIMEOUT" default:"45s"`
}

type MessagingConfig struct {
	// Provider selects the delivery channel: "twilio" or "telegram"
	Provider string `envconfig:"MESSAGING_PROVIDER" default:"twilio"`

	TwilioAccountSID     string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber string `envconfig:"TWILIO_WHATSAPP_NUMBER" default:"whatsapp:+14155238886"`

	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`

	HTTPTimeout    time.Duration `envconfig:"MESSAGING_HTTP_TIMEOUT" default:"30s"`
	RateLimitRate  int           `envconfig:"MESSAGING_RATE_LIMIT_RATE" default:"20"`
	RateLimitBurst int           `envconfig:"MESSAGING_RATE_LIMIT_BURST" default:"30"`
}

type MarketDataConfig struct {
	BaseURL   string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://query1.finance.yahoo.com"`
	Timeout   time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"10s"`
	BatchSize int           `envconfig:"MARKET_DATA_BATCH_SIZE" default:"20"`
}

type AgentConfig struct {
	// HistoryWindow bounds the persisted conversation history, in messages
	HistoryWindow int `envconfig:"AGENT_HISTORY_WINDOW" default:"40"`

	// MaxToolSteps bounds tool-calling iterations within a single turn
	MaxToolSteps int `envconfig:"AGENT_MAX_TOOL_STEPS" default:"8"`

	// TurnTimeout bounds a full turn including all tool executions
	TurnTimeout time.Duration `envconfig:"AGENT_TURN_TIMEOUT" default:"60s"`

	// LockTTL is the per-user turn lock expiry; must exceed TurnTimeout
	LockTTL time.Duration `envconfig:"AGENT_LOCK_TTL" default:"90s"`
}

type DailyUpdateConfig struct {
	Enabled bool `envconfig:"DAILY_UPDATE_ENABLED" default:"true"`
	Hour    int  `envconfig:"DAILY_UPDATE_HOUR" default:"8"`
	Minute  int  `envconfig:"DAILY_UPDATE_MINUTE" default:"30"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
