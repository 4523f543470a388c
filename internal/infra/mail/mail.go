package mail

import (
	"context"
	"errors"
	"fmt"

	"uptech/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// 送信1通分
type Message struct {
	To      string
	Subject string
	HTML    string
}

func (m Message) validate() error {
	if m.To == "" {
		return errors.New("mail: recipient required")
	}
	if m.Subject == "" {
		return errors.New("mail: subject required")
	}
	return nil
}

// Template から本文を組み立てる
func NewMessage(to, subject, templateName string, data any) (Message, error) {
	html, err := Render(templateName, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: html}, nil
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender はgomailでSMTP送信する
type SMTPSender struct {
	from   string
	dialer dialer
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		from:   cfg.MailFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender はSMTP未設定時の代替（送らずにログだけ）
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_len", len(msg.HTML)).
		Msg("mail not sent (smtp disabled)")
	return nil
}
