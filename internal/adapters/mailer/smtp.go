package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"creatora-api/internal/infra/metrics"
)

// SMTPConfig задаёт параметры SMTP-релея.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	FromName string
}

// SMTP отправляет письма через SMTP-релей.
type SMTP struct {
	cfg  SMTPConfig
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	var auth smtp.Auth
	if cfg.User != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTP{cfg: cfg, auth: auth, send: smtp.SendMail}
}

func (s *SMTP) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := s.cfg.From
	if strings.TrimSpace(s.cfg.FromName) != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}
	msg := strings.Join([]string{
		"From: " + sanitizeHeader(from),
		"To: " + sanitizeHeader(to),
		"Subject: " + sanitizeHeader(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		htmlBody,
	}, "\r\n")

	start := time.Now()
	err := s.send(s.cfg.Host+":"+s.cfg.Port, s.auth, s.cfg.From, []string{sanitizeHeader(to)}, []byte(msg))
	metrics.ObserveNetworkRequest("mailer", "send", "smtp", start, err)
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
