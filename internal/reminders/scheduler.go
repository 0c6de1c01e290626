package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// DefaultLeadTime is how far ahead of the appointment a reminder goes out.
const DefaultLeadTime = 24 * time.Hour

// Scheduler creates reminders for submitted appointments.
type Scheduler struct {
	store    Store
	leadTime time.Duration
	now      func() time.Time
	logger   *logging.Logger
}

// NewScheduler creates a scheduler. A non-positive lead time uses DefaultLeadTime.
func NewScheduler(store Store, leadTime time.Duration, logger *logging.Logger) *Scheduler {
	if leadTime <= 0 {
		leadTime = DefaultLeadTime
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{store: store, leadTime: leadTime, now: time.Now, logger: logger}
}

// Schedule stores one reminder per channel the client opted into. Appointments
// closer than the lead time are reminded on the next worker pass; appointments
// already started are skipped.
func (s *Scheduler) Schedule(ctx context.Context, appt booking.Appointment) ([]Reminder, error) {
	now := s.now().UTC()
	if !appt.Start.After(now) {
		return nil, nil
	}
	due := appt.Start.Add(-s.leadTime)
	if due.Before(now) {
		due = now
	}

	var channels []Channel
	if appt.Reminders.Email && appt.Client.Email != "" {
		channels = append(channels, ChannelEmail)
	}
	if appt.Reminders.SMS && appt.Client.Phone != "" {
		channels = append(channels, ChannelSMS)
	}

	created := make([]Reminder, 0, len(channels))
	for _, ch := range channels {
		r := Reminder{
			ID:          uuid.New().String(),
			Channel:     ch,
			Appointment: appt,
			DueAt:       due,
			Status:      StatusPending,
			CreatedAt:   now,
		}
		if err := s.store.Create(ctx, &r); err != nil {
			return created, fmt.Errorf("reminders: schedule %s: %w", ch, err)
		}
		s.logger.Info("reminder scheduled",
			"id", r.ID, "appointment_id", appt.ID, "channel", ch, "due_at", due)
		created = append(created, r)
	}
	return created, nil
}
