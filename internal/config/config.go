package config

import (
	"time"

	"github.com/samber/lo"
)

// WatcherConfig is the root configuration for a watcher instance.
type WatcherConfig struct {
	Instance  InstanceConfig   `yaml:"instance"`
	Logging   LoggingConfig    `yaml:"logging"`
	Scheduler SchedulerConfig  `yaml:"scheduler"`
	Exchanges []ExchangeConfig `yaml:"exchanges"`
	Database  DatabaseConfig   `yaml:"database"`
	Notify    NotifyConfig     `yaml:"notify"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

// InstanceConfig identifies this watcher.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SchedulerConfig holds cycle loop settings.
type SchedulerConfig struct {
	Interval            time.Duration `yaml:"interval"`             // Delay after a cycle completes
	ExchangeConcurrency int           `yaml:"exchange_concurrency"` // 1 = strictly sequential
	FetchTimeout        time.Duration `yaml:"fetch_timeout"`        // Per-exchange LoadMarkets timeout
	TradingCheck        string        `yaml:"trading_check"`        // "always" or "reported"
}

// ExchangeConfig describes one watched exchange.
type ExchangeConfig struct {
	Name        string   `yaml:"name"`
	Enabled     bool     `yaml:"enabled"`
	APIKey      string   `yaml:"api_key"`
	APISecret   string   `yaml:"api_secret"`
	BaseURL     string   `yaml:"base_url"`     // Optional override (testnets, proxies)
	QuoteAssets []string `yaml:"quote_assets"` // Optional filter; empty keeps every quote
}

// DatabaseConfig holds the state store settings.
type DatabaseConfig struct {
	Driver               string        `yaml:"driver"` // postgres, sqlite, memory
	Postgres             DBConfig      `yaml:"postgres"`
	SQLite               SQLiteConfig  `yaml:"sqlite"`
	ConnectRetryInterval time.Duration `yaml:"connect_retry_interval"`
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
}

// DBConfig holds a single Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// SQLiteConfig holds the embedded store file location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig holds every notification channel.
type NotifyConfig struct {
	Concurrency int            `yaml:"concurrency"`  // Max concurrent sends per channel
	SendTimeout time.Duration  `yaml:"send_timeout"` // Upper bound on one delivery attempt
	Email       EmailConfig    `yaml:"email"`
	SMS         TwilioConfig   `yaml:"sms"`
	Voice       TwilioConfig   `yaml:"voice"`
	Telegram    TelegramConfig `yaml:"telegram"`
	Log         LogConfig      `yaml:"log"`
}

// EmailConfig holds SMTP delivery settings.
type EmailConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Subscribers []string `yaml:"subscribers"`
	From        string   `yaml:"from"`
	SMTPHost    string   `yaml:"smtp_host"`
	SMTPPort    int      `yaml:"smtp_port"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
}

// TwilioConfig holds SMS or voice delivery settings.
type TwilioConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Subscribers []string `yaml:"subscribers"`
	From        string   `yaml:"from"`
	AccountSID  string   `yaml:"account_sid"`
	AuthToken   string   `yaml:"auth_token"`
	URL         string   `yaml:"url"` // TwiML callback, voice only
}

// TelegramConfig holds bot delivery settings. Subscribers are chat IDs.
type TelegramConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Subscribers []string `yaml:"subscribers"`
	BotToken    string   `yaml:"bot_token"`
}

// LogConfig enables the structured-log channel.
type LogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// EnabledExchanges returns enabled exchanges in configured order.
func (c *WatcherConfig) EnabledExchanges() []ExchangeConfig {
	return lo.Filter(c.Exchanges, func(ex ExchangeConfig, _ int) bool {
		return ex.Enabled
	})
}
