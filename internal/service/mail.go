package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mail struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m *Mail) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay. A new connection is dialed
// for every mail
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(c SMTPConfig) (*SMTPSender, error) {
	if c.Host == "" {
		return nil, errors.New("no mail host provided")
	}

	if c.From == "" {
		return nil, errors.New("no sender address provided")
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(c.Host, c.Port, c.Username, c.Password),
		from:   c.From,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m *Mail) error {
	if m.To == s.from {
		return errors.New("invalid email address")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	return s.dialer.DialAndSend(msg)
}

// LogSender only logs mails. Used when no SMTP relay is configured so links
// can still be picked up from the logs during development
type LogSender struct{}

func (LogSender) Send(_ context.Context, m *Mail) error {
	zap.L().Info("Mail delivery disabled, logging mail instead",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.HTML))

	return nil
}
