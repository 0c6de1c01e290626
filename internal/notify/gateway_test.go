package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pitaya-nails-booking/internal/observability/metrics"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    []EmailMessage
	failFor map[string]error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	if err, ok := r.failFor[msg.To]; ok {
		return err
	}
	return nil
}

func (r *recordingSender) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.sent {
		out = append(out, m.To)
	}
	return out
}

func TestGatewaySendsBothEmails(t *testing.T) {
	sender := &recordingSender{}
	gw := NewGateway(sender, "http", testComposer(), metrics.NewBookingMetrics(prometheus.NewRegistry()), nil)

	require.NoError(t, gw.SendBooking(context.Background(), testAppointment(t)))
	assert.ElementsMatch(t, []string{"salon@pitayanails.mx", "ana@example.com"}, sender.recipients())
}

func TestGatewayFailsWhenCustomerEmailFails(t *testing.T) {
	sender := &recordingSender{failFor: map[string]error{"ana@example.com": errors.New("status 422")}}
	gw := NewGateway(sender, "http", testComposer(), nil, nil)

	err := gw.SendBooking(context.Background(), testAppointment(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "customer email")
	assert.Len(t, sender.recipients(), 2, "the salon email is still dispatched")
}

func TestGatewayFailsWhenSalonEmailFails(t *testing.T) {
	sender := &recordingSender{failFor: map[string]error{"salon@pitayanails.mx": errors.New("timeout")}}
	gw := NewGateway(sender, "http", testComposer(), nil, nil)

	err := gw.SendBooking(context.Background(), testAppointment(t))
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestGatewayNotConfigured(t *testing.T) {
	gw := NewGateway(nil, "http", testComposer(), nil, nil)
	assert.False(t, gw.Configured())
	assert.ErrorIs(t, gw.SendBooking(context.Background(), testAppointment(t)), ErrNotConfigured)
	assert.ErrorIs(t, gw.Send(context.Background(), "reminder", EmailMessage{}), ErrNotConfigured)

	noSalon := testComposer()
	noSalon.SalonEmail = ""
	assert.False(t, NewGateway(&recordingSender{}, "http", noSalon, nil, nil).Configured())

	var nilGateway *Gateway
	assert.False(t, nilGateway.Configured())
}

func TestGatewaySendSingle(t *testing.T) {
	sender := &recordingSender{}
	gw := NewGateway(sender, "ses", testComposer(), nil, nil)
	require.NoError(t, gw.Send(context.Background(), "reminder", EmailMessage{To: "ana@example.com"}))
	assert.Equal(t, []string{"ana@example.com"}, sender.recipients())
}
