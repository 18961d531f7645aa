package notify

import (
	"context"
	"log/slog"
)

// Log writes notifications to the log instead of sending mail. Used in
// development and tests.
type Log struct{}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Notify(ctx context.Context, email string, tmpl Template, data map[string]string) {
	subject, body, err := render(tmpl, data)
	if err != nil {
		slog.Error("render notification", "error", err, "template", tmpl, "to", email)
		return
	}

	slog.Info("notification",
		"to", email,
		"template", tmpl,
		"subject", subject,
		"body", body,
	)
}
