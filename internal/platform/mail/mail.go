package mail

import (
	"fmt"
	"net/smtp"
)

// Sender delivers plain-text email. The reminder loop depends on this
// interface so tests can substitute a recording fake.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	Host string
	Port string
	From string
}

func NewSMTPSender(host, port, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.From, to, subject, body)
	addr := s.Host + ":" + s.Port
	if err := smtp.SendMail(addr, nil, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}
