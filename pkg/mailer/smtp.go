package mailer

import (
	"context"
	"errors"
	"fmt"

	"instamakaan/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("smtp credentials are not configured")

type SMTPMailer struct {
	cfg    utils.EmailConfig
	brand  string
	dialer *gomail.Dialer
	log    *zap.Logger
}

func NewSMTPMailer(cfg utils.EmailConfig, brand string, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		brand:  brand,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		log:    log.With(zap.String("mailer", "smtp")),
	}
}

// Send dials the SMTP server for every message; there is no retry or queue.
func (m *SMTPMailer) Send(ctx context.Context, to string, msg Message) error {
	if !m.cfg.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := render(m.brand, msg)
	if err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", to)
	gm.SetHeader("Subject", content.Subject)
	gm.SetBody("text/plain", content.Text)
	gm.AddAlternative("text/html", content.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		m.log.Warn("Failed to send email", zap.Error(err), zap.String("to", to))
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	m.log.Info("Email sent", zap.String("to", to), zap.String("subject", content.Subject))
	return nil
}
