package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/availability"
	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

// Composer renders the booking emails.
type Composer struct {
	Salon      catalog.Salon
	SalonEmail string
	Location   *time.Location
}

func (c Composer) local(t time.Time) time.Time {
	if c.Location == nil {
		return t
	}
	return t.In(c.Location)
}

func row(label, value string) string {
	return fmt.Sprintf(`<tr><td style="padding:6px 12px;font-weight:bold;">%s</td><td style="padding:6px 12px;">%s</td></tr>`,
		html.EscapeString(label), value)
}

func valueOrNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/D"
	}
	return value
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

func (c Composer) servicesHTML(lines []booking.Line) string {
	var b strings.Builder
	b.WriteString("<ul style=\"margin:0;padding-left:18px;\">")
	for _, l := range lines {
		label := html.EscapeString(l.Service.Name)
		if l.Service.IsCustomizable {
			label += fmt.Sprintf(" × %d", l.Quantity)
		}
		b.WriteString(fmt.Sprintf("<li>%s (%d min, $%d %s)", label, l.Duration, l.Price, html.EscapeString(c.Salon.Currency)))
		if l.Notes != "" {
			b.WriteString("<br><em>" + html.EscapeString(l.Notes) + "</em>")
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func (c Composer) summaryRows(a booking.Appointment) string {
	start := c.local(a.Start)
	return strings.Join([]string{
		row("Servicios", c.servicesHTML(a.Lines)),
		row("Profesional", html.EscapeString(valueOrNA(a.Professional.Name))),
		row("Fecha", html.EscapeString(availability.LongDate(start))),
		row("Hora", start.Format("15:04")),
		row("Duración", fmt.Sprintf("%d min", a.Totals.Duration)),
		row("Total", fmt.Sprintf("$%d %s", a.Totals.Price, html.EscapeString(c.Salon.Currency))),
	}, "\n")
}

func wrap(title, rows, footer string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;">
<h2 style="color:#d6336c;">%s</h2>
<table style="border-collapse:collapse;width:100%%;">
%s
</table>
<p style="color:#666;font-size:12px;">%s</p>
</div>`, html.EscapeString(title), rows, footer)
}

// SalonNotification is the email telling the salon about a new request.
func (c Composer) SalonNotification(a booking.Appointment) EmailMessage {
	start := c.local(a.Start)
	client := strings.Join([]string{
		row("Cliente", html.EscapeString(valueOrNA(a.Client.Name))),
		row("Email", fmt.Sprintf(`<a href="mailto:%s">%s</a>`, html.EscapeString(a.Client.Email), html.EscapeString(a.Client.Email))),
		row("Teléfono", fmt.Sprintf(`<a href="tel:%s">%s</a>`, html.EscapeString(a.Client.Phone), html.EscapeString(valueOrNA(a.Client.Phone)))),
		row("Recordatorio por email", yesNo(a.Reminders.Email)),
		row("Recordatorio por SMS", yesNo(a.Reminders.SMS)),
	}, "\n")
	return EmailMessage{
		To:        c.SalonEmail,
		ToName:    c.Salon.Name,
		ReplyTo:   a.Client.Email,
		Category:  CategorySalonNotification,
		BookingID: a.ID,
		Subject:   fmt.Sprintf("Nueva cita: %s, %s %s", valueOrNA(a.Client.Name), start.Format("02/01/2006"), start.Format("15:04")),
		Body:      c.plainSummary(a),
		HTML:      wrap("Nueva solicitud de cita", client+"\n"+c.summaryRows(a), "Confirma la cita con la clienta lo antes posible."),
	}
}

// CustomerAcknowledgment is the email confirming receipt to the client.
func (c Composer) CustomerAcknowledgment(a booking.Appointment) EmailMessage {
	footer := fmt.Sprintf(`¿Necesitas cambiar tu cita? Escríbenos por <a href="%s">WhatsApp</a>.`, html.EscapeString(c.Salon.WhatsAppLink))
	return EmailMessage{
		To:        a.Client.Email,
		ToName:    a.Client.Name,
		ReplyTo:   c.SalonEmail,
		Category:  CategoryAcknowledgment,
		BookingID: a.ID,
		Subject:   fmt.Sprintf("Recibimos tu solicitud de cita en %s", c.Salon.Name),
		Body:      c.plainSummary(a),
		HTML: wrap(fmt.Sprintf("¡Gracias, %s!", valueOrNA(a.Client.Name)),
			row("Estado", "Solicitud recibida, te confirmaremos pronto")+"\n"+c.summaryRows(a), footer),
	}
}

// Reminder is the email sent ahead of the appointment.
func (c Composer) Reminder(a booking.Appointment) EmailMessage {
	start := c.local(a.Start)
	return EmailMessage{
		To:        a.Client.Email,
		ToName:    a.Client.Name,
		ReplyTo:   c.SalonEmail,
		Category:  CategoryReminder,
		BookingID: a.ID,
		Subject:   fmt.Sprintf("Recordatorio: tu cita en %s es el %s a las %s", c.Salon.Name, availability.LongDate(start), start.Format("15:04")),
		Body:      c.plainSummary(a),
		HTML:      wrap("Recordatorio de tu cita", c.summaryRows(a), "Te esperamos."),
	}
}

// ReminderSMS is the short text sent ahead of the appointment.
func (c Composer) ReminderSMS(a booking.Appointment) string {
	start := c.local(a.Start)
	return fmt.Sprintf("%s: te recordamos tu cita el %s a las %s con %s.",
		c.Salon.Name, availability.LongDate(start), start.Format("15:04"), valueOrNA(a.Professional.Name))
}

func (c Composer) plainSummary(a booking.Appointment) string {
	start := c.local(a.Start)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Servicios: %s\n", strings.Join(a.ServiceNames(), ", ")))
	b.WriteString(fmt.Sprintf("Profesional: %s\n", valueOrNA(a.Professional.Name)))
	b.WriteString(fmt.Sprintf("Fecha: %s\n", availability.LongDate(start)))
	b.WriteString(fmt.Sprintf("Hora: %s\n", start.Format("15:04")))
	b.WriteString(fmt.Sprintf("Total: $%d %s (%d min)\n", a.Totals.Price, c.Salon.Currency, a.Totals.Duration))
	return b.String()
}
