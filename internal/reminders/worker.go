package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/notify"
	"github.com/wolfman30/pitaya-nails-booking/internal/observability/metrics"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

const (
	defaultBatchSize = 100
	retryBackoff     = 5 * time.Minute
)

// EmailGateway is the part of notify.Gateway the worker needs.
type EmailGateway interface {
	Send(ctx context.Context, kind string, msg notify.EmailMessage) error
}

// Worker delivers due reminders.
type Worker struct {
	store    Store
	email    EmailGateway
	sms      SMSSender
	composer notify.Composer
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewWorker creates a reminder worker. Either sender may be nil; reminders
// for a missing channel fail and are retried.
func NewWorker(store Store, email EmailGateway, sms SMSSender, composer notify.Composer, m *metrics.BookingMetrics, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		store:    store,
		email:    email,
		sms:      sms,
		composer: composer,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessDue sends every pending reminder whose due time has passed and
// returns how many were delivered.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	now := w.now().UTC()
	due, err := w.store.ListDue(ctx, now, defaultBatchSize)
	if err != nil {
		return 0, fmt.Errorf("reminders worker: list due: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	w.logger.Info("reminders worker: processing due reminders", "count", len(due))

	sent := 0
	for i := range due {
		r := &due[i]
		if err := w.processOne(ctx, r, now); err != nil {
			w.logger.Error("reminders worker: delivery failed",
				"id", r.ID, "channel", r.Channel, "attempts", r.Attempts, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (w *Worker) processOne(ctx context.Context, r *Reminder, now time.Time) error {
	deliverErr := w.deliver(ctx, r)
	w.metrics.ObserveReminder(string(r.Channel), deliverErr == nil)

	r.Attempts++
	if deliverErr == nil {
		r.Status = StatusSent
		r.SentAt = &now
		r.LastError = ""
	} else {
		r.LastError = deliverErr.Error()
		if r.Attempts >= MaxAttempts {
			r.Status = StatusFailed
		} else {
			r.DueAt = now.Add(retryBackoff)
		}
	}
	if err := w.store.Update(ctx, r); err != nil {
		return errors.Join(deliverErr, fmt.Errorf("update: %w", err))
	}
	if deliverErr != nil {
		return deliverErr
	}
	w.logger.Info("reminders worker: reminder sent",
		"id", r.ID, "channel", r.Channel, "appointment_id", r.Appointment.ID)
	return nil
}

func (w *Worker) deliver(ctx context.Context, r *Reminder) error {
	switch r.Channel {
	case ChannelEmail:
		if w.email == nil {
			return notify.ErrNotConfigured
		}
		return w.email.Send(ctx, "reminder", w.composer.Reminder(r.Appointment))
	case ChannelSMS:
		if w.sms == nil {
			return ErrSMSNotConfigured
		}
		return w.sms.SendSMS(ctx, r.Appointment.Client.Phone, w.composer.ReminderSMS(r.Appointment))
	default:
		return fmt.Errorf("unknown channel %q", r.Channel)
	}
}
