package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
	DefaultInterval             = 60 * time.Second
	DefaultExchangeConcurrency  = 1
	DefaultFetchTimeout         = 30 * time.Second
	DefaultTradingCheck         = TradingCheckAlways
	DefaultDriver               = DriverPostgres
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultSQLitePath           = "listing-watch.db"
	DefaultConnectRetryInterval = 500 * time.Millisecond
	DefaultConnectTimeout       = 5 * time.Minute
	DefaultNotifyConcurrency    = 10
	DefaultSendTimeout          = 15 * time.Second
	DefaultSMTPPort             = 587
	DefaultVoiceURL             = "http://demo.twilio.com/docs/voice.xml"
	DefaultMetricsPort          = 9090
	DefaultMetricsPath          = "/metrics"
)

// Trading check policies.
const (
	TradingCheckAlways   = "always"
	TradingCheckReported = "reported"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

func (c *WatcherConfig) applyDefaults() {
	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	// Scheduler defaults
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = DefaultInterval
	}
	if c.Scheduler.ExchangeConcurrency == 0 {
		c.Scheduler.ExchangeConcurrency = DefaultExchangeConcurrency
	}
	if c.Scheduler.FetchTimeout == 0 {
		c.Scheduler.FetchTimeout = DefaultFetchTimeout
	}
	if c.Scheduler.TradingCheck == "" {
		c.Scheduler.TradingCheck = DefaultTradingCheck
	}

	// Database defaults
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	applyDBDefaults(&c.Database.Postgres)
	if c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = DefaultSQLitePath
	}
	if c.Database.ConnectRetryInterval == 0 {
		c.Database.ConnectRetryInterval = DefaultConnectRetryInterval
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = DefaultConnectTimeout
	}

	// Notify defaults
	if c.Notify.Concurrency == 0 {
		c.Notify.Concurrency = DefaultNotifyConcurrency
	}
	if c.Notify.SendTimeout == 0 {
		c.Notify.SendTimeout = DefaultSendTimeout
	}
	if c.Notify.Email.SMTPPort == 0 {
		c.Notify.Email.SMTPPort = DefaultSMTPPort
	}
	if c.Notify.Voice.URL == "" {
		c.Notify.Voice.URL = DefaultVoiceURL
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
