package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPService creates a gomail-backed email service.
func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAccessCode(ctx context.Context, to string, code string) error {
	body := fmt.Sprintf(
		"A diagnosis edit was requested at your clinic.\n\n"+
			"Access code: %s\n\n"+
			"Give this code to the requesting clinician only if you approve the edit. "+
			"The code is valid for a single use and expires shortly.",
		code,
	)
	return s.SendCustom(ctx, to, "Diagnosis edit approval code", body)
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to string, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset token: %s\n\n"+
			"The token expires in 10 minutes. Ignore this email if you did not request a reset.",
		token,
	)
	return s.SendCustom(ctx, to, "Password reset", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
