package notify

import (
	"context"
	"log/slog"
)

// LogRecipient is the single pseudo-recipient of the log channel.
const LogRecipient = "log"

// Log writes alerts to the structured log.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a log channel.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Send(ctx context.Context, recipient string, msg Message) error {
	l.logger.InfoContext(ctx, "ALERT", "subject", msg.Subject, "body", msg.Body)
	return nil
}
