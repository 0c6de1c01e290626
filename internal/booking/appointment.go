package booking

import (
	"strconv"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

// Appointment is a confirmed booking ready to be sent and exported.
type Appointment struct {
	ID           string             `json:"id"`
	Start        time.Time          `json:"start"`
	Lines        []Line             `json:"lines"`
	Totals       Totals             `json:"totals"`
	Professional catalog.TeamMember `json:"professional"`
	Client       ClientDetails      `json:"client"`
	Reminders    Reminders          `json:"reminders"`
	Currency     string             `json:"currency"`
}

// End is Start plus the total duration.
func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.Totals.Duration) * time.Minute)
}

// ServiceNames lists line service names in order.
func (a Appointment) ServiceNames() []string {
	names := make([]string, 0, len(a.Lines))
	for _, l := range a.Lines {
		names = append(names, l.Service.Name)
	}
	return names
}

// ServiceRef is the id/name pair kept in history.
type ServiceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryItem is a past successful submission.
type HistoryItem struct {
	ID               string       `json:"id"`
	Date             time.Time    `json:"date"`
	Services         []ServiceRef `json:"services"`
	ProfessionalID   int          `json:"professionalId,omitempty"`
	ProfessionalName string       `json:"professionalName"`
	TotalPrice       int          `json:"totalPrice"`
	TotalDuration    int          `json:"totalDuration"`
}

// NewHistoryItem snapshots an appointment. The id is the submission time in
// milliseconds.
func NewHistoryItem(a Appointment, submittedAt time.Time) HistoryItem {
	refs := make([]ServiceRef, 0, len(a.Lines))
	for _, l := range a.Lines {
		refs = append(refs, ServiceRef{ID: l.Service.ID, Name: l.Service.Name})
	}
	return HistoryItem{
		ID:               strconv.FormatInt(submittedAt.UnixMilli(), 10),
		Date:             a.Start,
		Services:         refs,
		ProfessionalID:   a.Professional.ID,
		ProfessionalName: a.Professional.Name,
		TotalPrice:       a.Totals.Price,
		TotalDuration:    a.Totals.Duration,
	}
}
