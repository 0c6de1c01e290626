package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends through the SES v2 API.
type SESSender struct {
	client           sesAPI
	from             string
	configurationSet string
	logger           *logging.Logger
}

// SESConfig holds configuration for AWS SES. ConfigurationSet is optional and
// enables SES event publishing for the tagged messages.
type SESConfig struct {
	FromEmail        string
	FromName         string
	ConfigurationSet string
}

// NewSESSender creates an SES sender, or nil without a client.
func NewSESSender(client sesAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SESSender{
		client:           client,
		from:             fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		configurationSet: cfg.ConfigurationSet,
		logger:           logger,
	}
}

func utf8Content(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

func (s *SESSender) input(msg EmailMessage) *sesv2.SendEmailInput {
	body := &types.Body{Text: utf8Content(msg.textBody())}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: utf8Content(msg.Subject), Body: body},
		},
	}
	if msg.ReplyTo != "" {
		in.ReplyToAddresses = []string{msg.ReplyTo}
	}
	if s.configurationSet != "" {
		in.ConfigurationSetName = aws.String(s.configurationSet)
	}
	if msg.Category != "" {
		in.EmailTags = append(in.EmailTags, types.MessageTag{Name: aws.String("category"), Value: aws.String(msg.Category)})
	}
	if msg.BookingID != "" {
		in.EmailTags = append(in.EmailTags, types.MessageTag{Name: aws.String("booking_id"), Value: aws.String(msg.BookingID)})
	}
	return in
}

// Send sends an email via AWS SES.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return ErrNotConfigured
	}

	out, err := s.client.SendEmail(ctx, s.input(msg))
	if err != nil {
		s.logger.Error("ses send failed", "error", err, "to", msg.To, "category", msg.Category)
		return fmt.Errorf("notify: ses send failed: %w", err)
	}

	s.logger.Info("email sent via ses", "to", msg.To, "category", msg.Category, "message_id", aws.ToString(out.MessageId))
	return nil
}

var _ EmailSender = (*SESSender)(nil)
