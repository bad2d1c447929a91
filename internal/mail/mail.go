package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Sender delivers account-verification mail. Kept as an interface so the
// auth service can be tested with a recording fake.
type Sender interface {
	SendVerification(email, username, verifyURL string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (s *SMTPSender) SendVerification(email, username, verifyURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Confirm your account")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nFollow this link to activate your account:\n%s\n", username, verifyURL))
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}
