package wizard

import (
	"fmt"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/availability"
	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
)

// StepInfo names one visible step.
type StepInfo struct {
	Step int    `json:"step"`
	Name string `json:"name"`
}

// DayCell is one day of the month calendar.
type DayCell struct {
	Date        string `json:"date"`
	Day         int    `json:"day"`
	Unavailable bool   `json:"unavailable"`
	Selected    bool   `json:"selected"`
}

// MonthView is the calendar shown on the date step. Weeks start on Sunday and
// cells outside the month are null.
type MonthView struct {
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Label string       `json:"label"`
	Weeks [][]*DayCell `json:"weeks"`
}

// View is a read-only snapshot of the wizard for rendering.
type View struct {
	Step          int                  `json:"currentStep"`
	StepName      string               `json:"stepName"`
	Steps         []StepInfo           `json:"steps"`
	Selection     booking.Selection    `json:"selection"`
	Lines         []booking.Line       `json:"lines"`
	Totals        booking.Totals       `json:"totals"`
	Slots         []string             `json:"slots"`
	SlotsLoading  bool                 `json:"slotsLoading"`
	Month         MonthView            `json:"month"`
	Errors        map[string]string    `json:"errors,omitempty"`
	SubmitError   string               `json:"submitError,omitempty"`
	SubmitEnabled bool                 `json:"submitEnabled"`
	ConfigNotice  string               `json:"configNotice,omitempty"`
	Appointment   *booking.Appointment `json:"appointment,omitempty"`
}

// Snapshot captures the current state.
func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	steps := make([]StepInfo, 0, len(w.seq.steps))
	for _, s := range w.seq.steps {
		steps = append(steps, StepInfo{Step: int(s), Name: s.String()})
	}
	lines := booking.Lines(w.catalog, w.sel)
	slots := append([]string{}, w.slots...)

	v := View{
		Step:          int(w.step),
		StepName:      w.step.String(),
		Steps:         steps,
		Selection:     w.sel.Clone(),
		Lines:         lines,
		Totals:        booking.Sum(lines),
		Slots:         slots,
		SlotsLoading:  w.slotsLoading,
		Month:         w.monthViewLocked(),
		SubmitError:   w.submitErr,
		SubmitEnabled: w.SubmitEnabled(),
		ConfigNotice:  w.ConfigNotice(),
	}
	if len(w.errors) > 0 {
		v.Errors = make(map[string]string, len(w.errors))
		for k, msg := range w.errors {
			v.Errors[k] = msg
		}
	}
	if w.confirmed != nil {
		appt := *w.confirmed
		v.Appointment = &appt
	}
	return v
}

func (w *Wizard) monthViewLocked() MonthView {
	view := w.viewDateLocked()
	today := w.now()
	grid := availability.MonthGrid(view)

	weeks := make([][]*DayCell, 0, len(grid))
	for _, week := range grid {
		cells := make([]*DayCell, len(week))
		for i, day := range week {
			if day == nil {
				continue
			}
			cells[i] = &DayCell{
				Date:        day.Format(time.DateOnly),
				Day:         day.Day(),
				Unavailable: availability.IsDateUnavailable(*day, w.sel.Professional, today),
				Selected:    w.sel.Date != nil && availability.SameDay(*day, *w.sel.Date),
			}
		}
		weeks = append(weeks, cells)
	}
	return MonthView{
		Year:  view.Year(),
		Month: int(view.Month()),
		Label: fmt.Sprintf("%s %d", availability.MonthName(view.Month()), view.Year()),
		Weeks: weeks,
	}
}
