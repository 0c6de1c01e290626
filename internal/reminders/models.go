// Package reminders schedules and sends pre-appointment reminders to clients
// who opted in during booking.
package reminders

import (
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
)

// Channel is how a reminder is delivered.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Status tracks a reminder through delivery.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// MaxAttempts bounds delivery retries before a reminder is marked failed.
const MaxAttempts = 3

// Reminder is one scheduled message for one appointment and channel.
type Reminder struct {
	ID          string              `json:"id"`
	Channel     Channel             `json:"channel"`
	Appointment booking.Appointment `json:"appointment"`
	DueAt       time.Time           `json:"dueAt"`
	Status      Status              `json:"status"`
	Attempts    int                 `json:"attempts"`
	LastError   string              `json:"lastError,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	SentAt      *time.Time          `json:"sentAt,omitempty"`
}
