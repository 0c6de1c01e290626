// Package booking holds the appointment data shared by the wizard, the
// persistence adapter, notifications and calendar export.
package booking

import (
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

// ClientDetails are the contact fields captured in the wizard.
type ClientDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Reminders records which reminder channels the client opted into.
type Reminders struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// Customization is the quantity and notes for a customizable service.
type Customization struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// Selection is the in-progress booking. The JSON layout is the persisted
// state record.
type Selection struct {
	Services       []string                 `json:"selectedServices"`
	Customizations map[string]Customization `json:"customizations"`
	Professional   *catalog.TeamMember      `json:"selectedProfessional"`
	Date           *time.Time               `json:"selectedDate"`
	Time           *string                  `json:"selectedTime"`
	Client         ClientDetails            `json:"clientDetails"`
	Reminders      Reminders                `json:"reminders"`
	ViewDate       *time.Time               `json:"viewDate"`
}

// HasService reports whether id is among the chosen services.
func (s Selection) HasService(id string) bool {
	for _, existing := range s.Services {
		if existing == id {
			return true
		}
	}
	return false
}

// Clone deep-copies the selection.
func (s Selection) Clone() Selection {
	out := s
	out.Services = append([]string(nil), s.Services...)
	if s.Customizations != nil {
		out.Customizations = make(map[string]Customization, len(s.Customizations))
		for k, v := range s.Customizations {
			out.Customizations[k] = v
		}
	}
	if s.Professional != nil {
		p := *s.Professional
		p.UnavailableDays = append([]int(nil), s.Professional.UnavailableDays...)
		out.Professional = &p
	}
	if s.Date != nil {
		d := *s.Date
		out.Date = &d
	}
	if s.Time != nil {
		t := *s.Time
		out.Time = &t
	}
	if s.ViewDate != nil {
		v := *s.ViewDate
		out.ViewDate = &v
	}
	return out
}

// Line is one chosen service with its resolved contribution.
type Line struct {
	Service  catalog.Service `json:"service"`
	Quantity int             `json:"quantity"`
	Notes    string          `json:"notes,omitempty"`
	Price    int             `json:"price"`
	Duration int             `json:"duration"`
}

// Totals are derived from the chosen services, never stored.
type Totals struct {
	Price    int `json:"price"`
	Duration int `json:"duration"`
}

// Lines resolves the selection against the catalog. Unknown service ids are
// skipped. Non-customizable services always count with quantity 1.
func Lines(cat *catalog.Catalog, sel Selection) []Line {
	lines := make([]Line, 0, len(sel.Services))
	for _, id := range sel.Services {
		svc, err := cat.Service(id)
		if err != nil {
			continue
		}
		line := Line{Service: svc, Quantity: 1}
		if svc.IsCustomizable {
			if c, ok := sel.Customizations[id]; ok {
				line.Quantity = max(c.Quantity, 1)
				line.Notes = c.Notes
			}
		}
		line.Price, line.Duration = svc.Contribution(line.Quantity)
		lines = append(lines, line)
	}
	return lines
}

// Sum adds up price and duration across lines.
func Sum(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Price += l.Price
		t.Duration += l.Duration
	}
	return t
}

// ComputeTotals is Sum(Lines(cat, sel)).
func ComputeTotals(cat *catalog.Catalog, sel Selection) Totals {
	return Sum(Lines(cat, sel))
}
