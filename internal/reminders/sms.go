package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// ErrSMSNotConfigured is returned when no SMS credentials are available.
var ErrSMSNotConfigured = errors.New("reminders: sms not configured")

// SMSSender abstracts outbound SMS sending.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type messageAPI interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioConfig holds the Twilio account used for reminder texts.
type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	CountryCode string
}

// TwilioSender sends texts through the Twilio REST API.
type TwilioSender struct {
	api         messageAPI
	from        string
	countryCode string
	logger      *logging.Logger
}

// NewTwilioSender returns nil when the account is not configured.
func NewTwilioSender(cfg TwilioConfig, logger *logging.Logger) *TwilioSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.AccountSID,
		Password:   cfg.AuthToken,
		AccountSid: cfg.AccountSID,
	})
	return newTwilioSender(client.Api, cfg, logger)
}

func newTwilioSender(api messageAPI, cfg TwilioConfig, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	code := cfg.CountryCode
	if code == "" {
		code = "+52"
	}
	return &TwilioSender{api: api, from: cfg.FromNumber, countryCode: code, logger: logger}
}

// SendSMS sends body to the given local or E.164 number.
func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if s == nil {
		return ErrSMSNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(s.e164(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: create message: %w", err)
	}
	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Info("reminder sms sent", "to", to, "sid", sid)
	return nil
}

func (s *TwilioSender) e164(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return s.countryCode + phone
}

// StubSMSSender logs texts instead of sending them.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a logging-only sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

func (s *StubSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info("stub sms", "to", to, "body", body)
	return nil
}
