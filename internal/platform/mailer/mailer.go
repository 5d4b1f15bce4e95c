// Package mailer sends transactional email. Delivery is best-effort across
// the codebase: callers log failures and move on.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"

	"vowline/internal/platform/config"
)

// SMTP sends plain-text mail through a relay.
type SMTP struct {
	addr string
	from string
}

func NewSMTP(cfg config.SMTPConfig) *SMTP {
	return &SMTP{
		addr: cfg.Host + ":" + strconv.Itoa(cfg.Port),
		from: cfg.From,
	}
}

func (m *SMTP) Send(ctx context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// Log is the development mailer: it writes the message to the log instead of
// delivering it. Used when no SMTP host is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (m *Log) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "email (log mailer)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
