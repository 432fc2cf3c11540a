package notify

import (
	"log/slog"

	"github.com/samber/lo"

	"github.com/rickgao/listing-watch/internal/config"
)

// BuildRoutes constructs a route for every enabled channel. Disabled channels
// and channels without subscribers are skipped.
func BuildRoutes(cfg config.NotifyConfig, logger *slog.Logger) ([]Route, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var routes []Route
	add := func(ch Channel, recipients []string) {
		recipients = lo.Uniq(lo.Compact(recipients))
		if len(recipients) == 0 {
			logger.Warn("notification channel enabled without subscribers", "channel", ch.Name())
			return
		}
		routes = append(routes, Route{Channel: ch, Recipients: recipients})
	}

	if cfg.Email.Enabled {
		add(NewEmail(cfg.Email, cfg.SendTimeout), cfg.Email.Subscribers)
	}
	if cfg.SMS.Enabled {
		add(NewSMS(cfg.SMS, cfg.SendTimeout), cfg.SMS.Subscribers)
	}
	if cfg.Voice.Enabled {
		add(NewVoice(cfg.Voice, cfg.SendTimeout), cfg.Voice.Subscribers)
	}
	if cfg.Telegram.Enabled {
		tg, err := NewTelegram(cfg.Telegram.BotToken, cfg.SendTimeout)
		if err != nil {
			return nil, err
		}
		add(tg, cfg.Telegram.Subscribers)
	}
	if cfg.Log.Enabled {
		add(NewLog(logger), []string{LogRecipient})
	}

	return routes, nil
}
