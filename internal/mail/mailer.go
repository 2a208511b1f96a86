// Package mail is the outbound-mail collaborator used by the password-reset
// flow. Delivery itself is outside the portal core; the SMTP sender here is
// intentionally minimal.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers transactional mail.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// SMTP sends mail through a plain SMTP relay with optional AUTH.
type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

var _ Mailer = (*SMTP)(nil)

func (s *SMTP) SendPasswordReset(_ context.Context, to, token string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("mail: recipient is required")
	}
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password reset\r\n\r\n"+
			"A password reset was requested for your account.\r\n"+
			"Reset code: %s\r\n\r\n"+
			"If you did not request this, ignore this message.\r\n",
		s.From, to, token,
	)
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	return smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg))
}

// Nop discards mail; used in tests and when SMTP is not configured.
type Nop struct{}

var _ Mailer = Nop{}

func (Nop) SendPasswordReset(context.Context, string, string) error { return nil }
