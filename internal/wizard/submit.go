package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/pitaya-nails-booking/internal/availability"
	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
)

var wizardTracer = otel.Tracer("pitaya.internal.wizard")

// Submit sends the booking from the confirm step. On success the wizard moves
// to StepSubmitted, the booking is added to history and the saved in-progress
// state is cleared. On failure nothing changes except the error message, so
// the client can retry.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepConfirm {
		return fmt.Errorf("%w: submit is only allowed on %s", ErrInvalidStep, StepConfirm)
	}
	if !w.SubmitEnabled() {
		w.metrics.ObserveSubmission("disabled")
		return ErrSubmissionDisabled
	}

	appt, err := w.appointmentLocked()
	if err != nil {
		return err
	}

	ctx, span := wizardTracer.Start(ctx, "wizard.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking.id", appt.ID),
		attribute.Int("booking.services", len(appt.Lines)),
		attribute.Int("booking.total_price", appt.Totals.Price),
	)

	if err := w.gateway.SendBooking(ctx, appt); err != nil {
		w.submitErr = SubmitFailureMessage
		w.metrics.ObserveSubmission("failure")
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		w.logger.Error("wizard: submission failed", "booking_id", appt.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	now := w.clock.Now()
	w.slotTask.Cancel()
	w.slotTask = nil
	w.step = StepSubmitted
	w.submitErr = ""
	w.errors = nil
	w.confirmed = &appt
	w.lastActive = now
	w.store.AppendHistory(ctx, booking.NewHistoryItem(appt, now))
	w.store.Clear(ctx)
	w.store.SaveConfirmed(ctx, appt)
	w.metrics.ObserveSubmission("success")
	w.metrics.ObserveTransition("submit", StepSubmitted.String())
	w.logger.Info("wizard: booking submitted",
		"booking_id", appt.ID, "professional", appt.Professional.Name, "start", appt.Start)

	if w.reminders != nil && (appt.Reminders.Email || appt.Reminders.SMS) {
		if _, err := w.reminders.Schedule(ctx, appt); err != nil {
			w.logger.Error("wizard: schedule reminders", "booking_id", appt.ID, "error", err)
		}
	}
	return nil
}

// appointmentLocked assembles the confirmed booking from the selection.
func (w *Wizard) appointmentLocked() (booking.Appointment, error) {
	errs := map[string]string{}
	for _, step := range []Step{StepPreferences, StepProfessional, StepDateTime, StepClientDetails} {
		for k, v := range w.validateLocked(step) {
			errs[k] = v
		}
	}
	if len(errs) > 0 {
		return booking.Appointment{}, w.rejectLocked(&ValidationError{Step: w.step, Fields: errs})
	}
	start, err := availability.At(*w.sel.Date, *w.sel.Time)
	if err != nil {
		return booking.Appointment{}, fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	lines := booking.Lines(w.catalog, w.sel)
	return booking.Appointment{
		ID:           uuid.New().String(),
		Start:        start,
		Lines:        lines,
		Totals:       booking.Sum(lines),
		Professional: *w.sel.Professional,
		Client:       w.sel.Client,
		Reminders:    w.sel.Reminders,
		Currency:     w.catalog.Salon().Currency,
	}, nil
}

// Appointment returns the submitted booking. It survives eviction because the
// confirmation is saved alongside the history.
func (w *Wizard) Appointment() (booking.Appointment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.confirmed == nil {
		return booking.Appointment{}, ErrNotSubmitted
	}
	return *w.confirmed, nil
}
