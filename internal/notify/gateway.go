package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/internal/observability/metrics"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

var notifyTracer = otel.Tracer("pitaya.internal.notify")

// ErrDeliveryFailed wraps any failure to deliver one of the booking emails.
var ErrDeliveryFailed = errors.New("notify: booking email delivery failed")

// Gateway sends the salon notification and the customer acknowledgment for a
// booking. Both must be accepted for the submission to count.
type Gateway struct {
	sender   EmailSender
	provider string
	composer Composer
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewGateway builds a gateway. A nil sender leaves the gateway unconfigured.
func NewGateway(sender EmailSender, provider string, composer Composer, m *metrics.BookingMetrics, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gateway{
		sender:   sender,
		provider: provider,
		composer: composer,
		metrics:  m,
		logger:   logger,
	}
}

// Configured reports whether the gateway has a sender with credentials.
func (g *Gateway) Configured() bool {
	return g != nil && g.sender != nil && g.composer.SalonEmail != ""
}

// Composer exposes the email templates for reminders.
func (g *Gateway) Composer() Composer { return g.composer }

// SendBooking dispatches both emails concurrently and waits for both.
func (g *Gateway) SendBooking(ctx context.Context, appt booking.Appointment) error {
	if !g.Configured() {
		return ErrNotConfigured
	}
	ctx, span := notifyTracer.Start(ctx, "notify.send_booking")
	defer span.End()
	span.SetAttributes(
		attribute.String("email.provider", g.provider),
		attribute.String("booking.id", appt.ID),
	)

	var group errgroup.Group
	group.Go(func() error {
		return g.send(ctx, "salon", g.composer.SalonNotification(appt))
	})
	group.Go(func() error {
		return g.send(ctx, "customer", g.composer.CustomerAcknowledgment(appt))
	})
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// Send delivers a single message, recording metrics under kind.
func (g *Gateway) Send(ctx context.Context, kind string, msg EmailMessage) error {
	if g == nil || g.sender == nil {
		return ErrNotConfigured
	}
	return g.send(ctx, kind, msg)
}

func (g *Gateway) send(ctx context.Context, kind string, msg EmailMessage) error {
	start := time.Now()
	err := g.sender.Send(ctx, msg)
	g.metrics.ObserveEmail(g.provider, kind, err == nil, time.Since(start).Seconds())
	if err != nil {
		g.logger.Error("booking email failed", "kind", kind, "provider", g.provider, "to", msg.To, "error", err)
		return fmt.Errorf("%s email: %w", kind, err)
	}
	return nil
}
