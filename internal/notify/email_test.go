package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "citas@pitayanails.mx"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "citas@pitayanails.mx"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Pitaya Nails", sender.fromName)
}

func TestSendGridSender_NilIsNotConfigured(t *testing.T) {
	var sender *SendGridSender
	err := sender.Send(context.Background(), EmailMessage{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendGridSender_BuildsTaggedMessage(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "k", FromEmail: "citas@pitayanails.mx"}, nil)
	require.NotNil(t, sender)

	m := sender.build(EmailMessage{
		To:        "ana@example.com",
		ToName:    "Ana",
		ReplyTo:   "salon@pitayanails.mx",
		Subject:   "Tu cita",
		HTML:      "<p>hola</p>",
		Category:  CategoryAcknowledgment,
		BookingID: "b-1",
	})

	assert.Equal(t, "citas@pitayanails.mx", m.From.Address)
	assert.Equal(t, "salon@pitayanails.mx", m.ReplyTo.Address)
	assert.Equal(t, []string{CategoryAcknowledgment}, m.Categories)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "ana@example.com", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "b-1", m.Personalizations[0].CustomArgs["booking_id"])
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "Tu cita", m.Content[0].Value, "empty text body falls back to the subject")
	assert.Equal(t, "<p>hola</p>", m.Content[1].Value)
}

func TestStubEmailSender_Send(t *testing.T) {
	err := NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "a@example.com", Subject: "hola"})
	assert.NoError(t, err)
}

type mockSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	id := "msg-1"
	return &sesv2.SendEmailOutput{MessageId: &id}, nil
}

func TestSESSender_Send(t *testing.T) {
	mock := &mockSES{}
	sender := NewSESSender(mock, SESConfig{FromEmail: "citas@pitayanails.mx"}, nil)
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "ana@example.com",
		Subject: "Tu cita",
		Body:    "texto",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pitaya Nails <citas@pitayanails.mx>", *mock.input.FromEmailAddress)
	assert.Equal(t, []string{"ana@example.com"}, mock.input.Destination.ToAddresses)
	assert.Equal(t, "Tu cita", *mock.input.Content.Simple.Subject.Data)
	assert.Equal(t, "texto", *mock.input.Content.Simple.Body.Text.Data)
	assert.Equal(t, "<p>html</p>", *mock.input.Content.Simple.Body.Html.Data)
	assert.Empty(t, mock.input.ReplyToAddresses)
	assert.Empty(t, mock.input.EmailTags)
	assert.Nil(t, mock.input.ConfigurationSetName)
}

func TestSESSender_ReplyToAndTags(t *testing.T) {
	mock := &mockSES{}
	sender := NewSESSender(mock, SESConfig{FromEmail: "citas@pitayanails.mx", ConfigurationSet: "bookings"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:        "salon@pitayanails.mx",
		ReplyTo:   "ana@example.com",
		Subject:   "Nueva cita",
		Category:  CategorySalonNotification,
		BookingID: "b-42",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, mock.input.ReplyToAddresses)
	assert.Equal(t, "bookings", aws.ToString(mock.input.ConfigurationSetName))
	require.Len(t, mock.input.EmailTags, 2)
	assert.Equal(t, "category", aws.ToString(mock.input.EmailTags[0].Name))
	assert.Equal(t, CategorySalonNotification, aws.ToString(mock.input.EmailTags[0].Value))
	assert.Equal(t, "b-42", aws.ToString(mock.input.EmailTags[1].Value))
	assert.Nil(t, mock.input.Content.Simple.Body.Html)
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&mockSES{err: errors.New("throttled")}, SESConfig{FromEmail: "x@y.z"}, nil)
	err := sender.Send(context.Background(), EmailMessage{To: "a@example.com", HTML: "<p/>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}
