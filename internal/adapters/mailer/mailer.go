package mailer

import (
	"context"
	"fmt"
	"time"

	"creatora-api/internal/domain"
)

// Transport доставляет одно HTML-письмо.
type Transport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer формирует транзакционные письма и отдаёт их транспорту.
type Mailer struct {
	transport Transport
	otpTTL    time.Duration
}

func New(transport Transport, otpTTL time.Duration) *Mailer {
	if otpTTL <= 0 {
		otpTTL = 15 * time.Minute
	}
	return &Mailer{transport: transport, otpTTL: otpTTL}
}

func (m *Mailer) SendOTP(ctx context.Context, email, otp string) error {
	body, err := renderOTP(otp, m.otpTTL)
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}
	if err := m.transport.Send(ctx, email, "Creatora Password Reset Verification Code", body); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

func (m *Mailer) SendAccountDeletion(ctx context.Context, email, name string) error {
	body, err := renderDeletion(name)
	if err != nil {
		return fmt.Errorf("render deletion email: %w", err)
	}
	if err := m.transport.Send(ctx, email, "Creatora Account Deletion", body); err != nil {
		return fmt.Errorf("send deletion email: %w", err)
	}
	return nil
}

var _ domain.Mailer = (*Mailer)(nil)
