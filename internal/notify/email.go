package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// ErrNotConfigured means no credential is available for the email provider.
// It is permanent until an operator fixes the deployment.
var ErrNotConfigured = errors.New("notify: email delivery not configured")

const defaultFromName = "Pitaya Nails"

// Message categories, also used as provider tags.
const (
	CategorySalonNotification = "salon_notification"
	CategoryAcknowledgment    = "customer_acknowledgment"
	CategoryReminder          = "reminder"
)

// EmailSender delivers one message. Implementations: HTTP API, SendGrid, SES, stub.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one booking email.
type EmailMessage struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Body    string // plain text
	HTML    string

	// Category and BookingID are forwarded to providers that support tagging.
	Category  string
	BookingID string
}

// textBody falls back to the subject so providers never reject an empty part.
func (m EmailMessage) textBody() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Subject
}

// SendGridSender sends through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a SendGrid sender, or nil without an API key.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) build(msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	if msg.BookingID != "" {
		p.SetCustomArg("booking_id", msg.BookingID)
	}
	m.AddPersonalizations(p)

	m.AddContent(mail.NewContent("text/plain", msg.textBody()))
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	return m
}

// Send sends an email via SendGrid. Any non-2xx status is a failure.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return ErrNotConfigured
	}

	response, err := s.client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To, "category", msg.Category)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		s.logger.Error("sendgrid rejected message", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "category", msg.Category, "booking_id", msg.BookingID)
	return nil
}

// StubEmailSender logs messages instead of sending them.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a logging-only sender.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("stub email", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
