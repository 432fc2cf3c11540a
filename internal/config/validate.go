package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *WatcherConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Scheduler.Interval <= 0 {
		return errors.New("scheduler.interval must be > 0")
	}
	if c.Scheduler.ExchangeConcurrency < 1 {
		return errors.New("scheduler.exchange_concurrency must be >= 1")
	}
	switch c.Scheduler.TradingCheck {
	case TradingCheckAlways, TradingCheckReported:
	default:
		return fmt.Errorf("scheduler.trading_check must be %s or %s, got %q",
			TradingCheckAlways, TradingCheckReported, c.Scheduler.TradingCheck)
	}

	if len(c.Exchanges) == 0 {
		return errors.New("at least one exchange is required")
	}
	seen := make(map[string]struct{}, len(c.Exchanges))
	for i, ex := range c.Exchanges {
		if ex.Name == "" {
			return fmt.Errorf("exchanges[%d].name is required", i)
		}
		if _, dup := seen[ex.Name]; dup {
			return fmt.Errorf("exchanges[%d].name %q is duplicated", i, ex.Name)
		}
		seen[ex.Name] = struct{}{}
	}

	if err := c.Database.validate(); err != nil {
		return err
	}

	if err := c.Notify.validate(); err != nil {
		return err
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (d *DatabaseConfig) validate() error {
	switch d.Driver {
	case DriverPostgres:
		return d.Postgres.validate("database.postgres")
	case DriverSQLite:
		if d.SQLite.Path == "" {
			return errors.New("database.sqlite.path is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be postgres, sqlite or memory, got %q", d.Driver)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if n.Concurrency < 1 {
		return errors.New("notify.concurrency must be >= 1")
	}
	if n.SendTimeout <= 0 {
		return errors.New("notify.send_timeout must be > 0")
	}

	if n.Email.Enabled {
		if n.Email.From == "" {
			return errors.New("notify.email.from is required")
		}
		if n.Email.SMTPHost == "" {
			return errors.New("notify.email.smtp_host is required")
		}
	}
	if err := n.SMS.validate("notify.sms"); err != nil {
		return err
	}
	if err := n.Voice.validate("notify.voice"); err != nil {
		return err
	}
	if n.Telegram.Enabled && n.Telegram.BotToken == "" {
		return errors.New("notify.telegram.bot_token is required")
	}
	return nil
}

func (t *TwilioConfig) validate(prefix string) error {
	if !t.Enabled {
		return nil
	}
	if t.From == "" {
		return fmt.Errorf("%s.from is required", prefix)
	}
	if t.AccountSID == "" {
		return fmt.Errorf("%s.account_sid is required", prefix)
	}
	if t.AuthToken == "" {
		return fmt.Errorf("%s.auth_token is required", prefix)
	}
	return nil
}
