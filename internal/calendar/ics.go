// Package calendar exports confirmed appointments as iCalendar files.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

// ContentType is the MIME type of exported files.
const ContentType = "text/calendar; charset=utf-8"

// Exporter renders appointments. Now stamps DTSTAMP and defaults to time.Now.
type Exporter struct {
	Salon    catalog.Salon
	Location string
	Domain   string
	Now      func() time.Time
}

// NewExporter returns an exporter for the salon at the given address.
func NewExporter(salon catalog.Salon, location string) *Exporter {
	return &Exporter{Salon: salon, Location: location, Domain: "pitayanails.mx", Now: time.Now}
}

// Export builds a single-event VCALENDAR document with CRLF line endings and
// UTC timestamps.
func (e *Exporter) Export(a booking.Appointment) []byte {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	cal := ics.NewCalendar()
	cal.SetProductId(fmt.Sprintf("-//%s//Reservas//ES", e.Salon.Name))
	cal.SetMethod(ics.MethodPublish)

	event := cal.AddEvent(fmt.Sprintf("%s@%s", a.ID, e.Domain))
	event.SetDtStampTime(now())
	event.SetStartAt(a.Start)
	event.SetEndAt(a.End())
	event.SetSummary(fmt.Sprintf("Cita en %s: %s", e.Salon.Name, strings.Join(a.ServiceNames(), ", ")))
	event.SetDescription(e.description(a))
	event.SetLocation(e.Location)

	return []byte(cal.Serialize())
}

func (e *Exporter) description(a booking.Appointment) string {
	var b strings.Builder
	for _, l := range a.Lines {
		if l.Service.IsCustomizable {
			fmt.Fprintf(&b, "%s x%d\n", l.Service.Name, l.Quantity)
		} else {
			fmt.Fprintf(&b, "%s\n", l.Service.Name)
		}
	}
	fmt.Fprintf(&b, "Profesional: %s\n", a.Professional.Name)
	fmt.Fprintf(&b, "Duración: %d min\n", a.Totals.Duration)
	fmt.Fprintf(&b, "Total: $%d %s", a.Totals.Price, e.Salon.Currency)
	return b.String()
}

// Filename is the download name for an appointment, in the salon's local date.
func Filename(a booking.Appointment) string {
	return fmt.Sprintf("cita-pitaya-nails-%s.ics", a.Start.Format("2006-01-02"))
}
