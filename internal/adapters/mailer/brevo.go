package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"creatora-api/internal/infra/metrics"
)

// BrevoConfig задаёт параметры транзакционного API Brevo.
type BrevoConfig struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
}

// Brevo отправляет письма через POST /v3/smtp/email.
type Brevo struct {
	cfg        BrevoConfig
	httpClient *http.Client
}

func NewBrevo(cfg BrevoConfig) *Brevo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.brevo.com"
	}
	return &Brevo{cfg: cfg, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (b *Brevo) Send(ctx context.Context, to, subject, htmlBody string) error {
	if b.cfg.APIKey == "" {
		return fmt.Errorf("brevo api key is not configured")
	}
	payload, err := json.Marshal(brevoEmail{
		Sender:      brevoAddress{Name: b.cfg.FromName, Email: b.cfg.FromEmail},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(b.cfg.BaseURL, "/")+"/v3/smtp/email", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.cfg.APIKey)

	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err == nil && resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err = fmt.Errorf("brevo status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	metrics.ObserveNetworkRequest("mailer", "send", "brevo", start, err)
	if resp != nil {
		resp.Body.Close()
	}
	return err
}
