package mailer

import (
	"fmt"
	"net/smtp"
)

// Sender delivers plain-text email. Delivery is best effort; callers decide
// what a failed send means for already-persisted state.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a single SMTP relay using PLAIN auth.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// Ensure SMTPSender implements Sender
var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender for the given relay. Username may be empty
// for relays that accept unauthenticated submission.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send submits a single message. No retries; the error is surfaced as is.
func (s *SMTPSender) Send(to, subject, body string) error {
	if s.host == "" || s.from == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + body + "\r\n")
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}
