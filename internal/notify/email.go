package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/listing-watch/internal/config"
)

// Email delivers alerts over SMTP. Every send is bounded by timeout and by
// the caller's context deadline, from dial through QUIT.
type Email struct {
	host    string
	addr    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
	now     func() time.Time
}

// NewEmail builds an SMTP channel. Auth is skipped when no username is set.
// timeout <= 0 uses DefaultSendTimeout.
func NewEmail(cfg config.EmailConfig, timeout time.Duration) *Email {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	dialer := &net.Dialer{Timeout: timeout}
	return &Email{
		host:    cfg.SMTPHost,
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth:    auth,
		from:    cfg.From,
		timeout: timeout,
		dial:    dialer.DialContext,
		now:     time.Now,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, recipient string, msg Message) error {
	if strings.ContainsAny(recipient, "\r\n") {
		return fmt.Errorf("invalid recipient %q", recipient)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.dial(ctx, "tcp", e.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", e.addr, err)
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	// Unblock any in-flight read or write if ctx is cancelled early.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	if err := e.deliver(conn, recipient, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp %s: %w", e.addr, ctxErr)
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("smtp %s: %w: %w", e.addr, context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}

// deliver runs one SMTP transaction over conn and always closes it.
func (e *Email) deliver(conn net.Conn, recipient string, msg Message) error {
	c, err := smtp.NewClient(conn, e.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(nil); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if e.auth != nil {
		if err := c.Auth(e.auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(e.from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := c.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(e.render(recipient, msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	return c.Quit()
}

func (e *Email) render(to string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", e.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
