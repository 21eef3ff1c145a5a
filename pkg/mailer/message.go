package mailer

import (
	"context"
	"fmt"
	"html"
	"time"
)

// Mailer delivers a Message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to string, msg Message) error
}

// Message is either an OTPMessage or a ResetMessage.
type Message interface {
	message()
}

// OTPMessage carries an email verification code.
type OTPMessage struct {
	Code     string
	ValidFor time.Duration
}

// ResetMessage carries a password reset link.
type ResetMessage struct {
	Link     string
	ValidFor time.Duration
}

func (OTPMessage) message()   {}
func (ResetMessage) message() {}

type rendered struct {
	Subject string
	HTML    string
	Text    string
}

func render(brand string, msg Message) (rendered, error) {
	switch m := msg.(type) {
	case OTPMessage:
		return rendered{
			Subject: fmt.Sprintf("Your %s verification code", brand),
			HTML:    fmt.Sprintf(otpTemplate, brand, html.EscapeString(m.Code), humanDuration(m.ValidFor)),
			Text: fmt.Sprintf("Your %s verification code is %s. It is valid for %s.",
				brand, m.Code, humanDuration(m.ValidFor)),
		}, nil
	case ResetMessage:
		return rendered{
			Subject: fmt.Sprintf("Reset your %s password", brand),
			HTML:    fmt.Sprintf(resetTemplate, brand, html.EscapeString(m.Link), humanDuration(m.ValidFor)),
			Text: fmt.Sprintf("Reset your %s password: %s\nThis link expires in %s.",
				brand, m.Link, humanDuration(m.ValidFor)),
		}, nil
	default:
		return rendered{}, fmt.Errorf("unsupported message type %T", msg)
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

const otpTemplate = `<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f6f8; padding: 20px;">
    <div style="max-width: 500px; margin: auto; background: #ffffff; padding: 20px; border-radius: 8px;">
      <h2 style="color: #333;">%s Verification</h2>
      <p>Your verification code is:</p>
      <div style="font-size: 28px; font-weight: bold; letter-spacing: 6px; margin: 20px 0;">%s</div>
      <p>This code is valid for <b>%s</b>.</p>
      <p style="color: #888; font-size: 12px;">If you did not request this, please ignore this email.</p>
    </div>
  </body>
</html>`

const resetTemplate = `<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f6f8; padding: 20px;">
    <div style="max-width: 500px; margin: auto; background: #ffffff; padding: 20px; border-radius: 8px;">
      <h2 style="color: #333;">Reset Your %s Password</h2>
      <p>We received a request to reset your password.</p>
      <a href="%s" style="display: inline-block; margin: 20px 0; padding: 12px 20px; background-color: #2563eb; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: bold;">Reset Password</a>
      <p>This link will expire in <b>%s</b>.</p>
      <p style="color: #888; font-size: 12px;">If you did not request this, you can safely ignore this email.</p>
    </div>
  </body>
</html>`
