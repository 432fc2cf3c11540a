package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rickgao/listing-watch/internal/model"
)

// Channel delivers one message to one recipient.
type Channel interface {
	Name() string
	Send(ctx context.Context, recipient string, msg Message) error
}

// Message is the rendered alert.
type Message struct {
	Subject string
	Body    string
}

// NewMessage renders the alert for a transition.
func NewMessage(ev model.TransitionEvent) Message {
	var subject string
	switch ev.Kind {
	case model.Listed:
		subject = fmt.Sprintf("New listing: %s on %s", ev.Market.Base, ev.Market.Exchange)
	case model.BecameTrading:
		subject = fmt.Sprintf("Now trading: %s on %s", ev.Market.Base, ev.Market.Exchange)
	default:
		subject = ev.Message()
	}
	body := ev.Message()
	if ev.Kind == model.Listed {
		body += tradingRules(ev.Market)
	}
	return Message{Subject: subject, Body: body}
}

// tradingRules renders the known price and quantity increments, if any.
func tradingRules(m model.MarketSnapshot) string {
	var parts []string
	if !m.TickSize.IsZero() {
		parts = append(parts, "tick size "+m.TickSize.String())
	}
	if !m.LotStep.IsZero() {
		parts = append(parts, "lot step "+m.LotStep.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// Route binds a channel to its subscribers.
type Route struct {
	Channel    Channel
	Recipients []string
}

// DeliveryError is a failed send to one recipient.
type DeliveryError struct {
	Channel   string
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver via %s to %s: %v", e.Channel, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
