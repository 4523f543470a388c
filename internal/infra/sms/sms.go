package sms

import (
	"context"
	"errors"
	"fmt"

	"uptech/internal/config"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrRecipientRequired = errors.New("sms: recipient required")

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender はTwilio REST APIでSMSを送る
type TwilioSender struct {
	from string
	api  messageCreator
}

func NewTwilioSender(cfg config.SMSConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioSender{from: cfg.TwilioFromNumber, api: client.Api}
}

func (s *TwilioSender) Send(ctx context.Context, to string, body string) error {
	if to == "" {
		return ErrRecipientRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}

// LogSender はTwilio未設定時の代替
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to string, body string) error {
	if to == "" {
		return ErrRecipientRequired
	}
	s.log.Info().Str("to", to).Int("body_len", len(body)).Msg("sms not sent (twilio disabled)")
	return nil
}
