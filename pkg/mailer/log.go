package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes messages to the log instead of sending them. It is
// used in development when SMTP is not configured.
type LogMailer struct {
	brand string
	log   *zap.Logger
}

func NewLogMailer(brand string, log *zap.Logger) *LogMailer {
	return &LogMailer{brand: brand, log: log.With(zap.String("mailer", "log"))}
}

func (m *LogMailer) Send(ctx context.Context, to string, msg Message) error {
	content, err := render(m.brand, msg)
	if err != nil {
		return err
	}

	fields := []zap.Field{zap.String("to", to), zap.String("subject", content.Subject)}
	switch v := msg.(type) {
	case OTPMessage:
		fields = append(fields, zap.String("otp_code", v.Code), zap.Duration("valid_for", v.ValidFor))
	case ResetMessage:
		fields = append(fields, zap.String("reset_link", v.Link), zap.Duration("valid_for", v.ValidFor))
	}

	m.log.Info("Email not sent (development mailer)", fields...)
	return nil
}
