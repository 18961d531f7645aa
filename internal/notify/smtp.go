package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/dajohi/goemail"
)

// SMTP sends mail through an SMTP relay. Sending happens in a separate
// goroutine so a slow relay never blocks the request that triggered it.
type SMTP struct {
	client   *goemail.SMTP
	from     string
	fromName string
}

type SMTPConfig struct {
	Host       string // host:port
	User       string
	Password   string
	From       string
	FromName   string
	SkipVerify bool
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	addr := fmt.Sprintf("smtps://%s:%s@%s", cfg.User, cfg.Password, cfg.Host)
	client, err := goemail.NewSMTP(addr, &tls.Config{
		InsecureSkipVerify: cfg.SkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTP{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
	}, nil
}

func (s *SMTP) Notify(ctx context.Context, email string, tmpl Template, data map[string]string) {
	subject, body, err := render(tmpl, data)
	if err != nil {
		slog.Error("render notification", "error", err, "template", tmpl, "to", email)
		return
	}

	go func() {
		msg := goemail.NewMessage(s.from, subject, body)
		msg.SetName(s.fromName)
		msg.AddTo(email)

		if err := s.client.Send(msg); err != nil {
			slog.Error("send notification", "error", err, "template", tmpl, "to", email)
		}
	}()
}
