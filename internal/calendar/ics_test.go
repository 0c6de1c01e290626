package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

func appointment(t *testing.T) booking.Appointment {
	t.Helper()
	cat := catalog.Default()
	valeria, err := cat.Member(3)
	require.NoError(t, err)
	lines := booking.Lines(cat, booking.Selection{
		Services:       []string{"pedi-spa", "nail-art"},
		Customizations: map[string]booking.Customization{"nail-art": {Quantity: 2}},
	})
	return booking.Appointment{
		ID:           "1760000000000",
		Start:        time.Date(2026, 10, 20, 16, 0, 0, 0, time.FixedZone("EST", -5*3600)),
		Lines:        lines,
		Totals:       booking.Sum(lines),
		Professional: valeria,
		Currency:     "MXN",
	}
}

func TestExport(t *testing.T) {
	exp := NewExporter(catalog.PitayaNails, "Pitaya Nails, Cancún")
	exp.Now = func() time.Time { return time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC) }

	out := string(exp.Export(appointment(t)))

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"), out)
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"), out)
	assert.Contains(t, out, "BEGIN:VEVENT\r\n")
	assert.Contains(t, out, "END:VEVENT\r\n")
	assert.Contains(t, out, "VERSION:2.0\r\n")
	assert.Contains(t, out, "UID:1760000000000@pitayanails.mx\r\n")
	assert.Contains(t, out, "DTSTAMP:20261019T123000Z\r\n")
	assert.Contains(t, out, "DTSTART:20261020T210000Z\r\n")
	// 60 min pedicure + 2 x 30 min nail art.
	assert.Contains(t, out, "DTEND:20261020T230000Z\r\n")
	assert.Contains(t, out, "SUMMARY:Cita en Pitaya Nails")
	assert.Contains(t, out, "LOCATION:Pitaya Nails")
	assert.Contains(t, out, "DESCRIPTION:")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))

	for i, ch := range out {
		if ch == '\n' {
			require.Greater(t, i, 0)
			assert.Equal(t, byte('\r'), out[i-1], "bare LF at offset %d", i)
		}
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "cita-pitaya-nails-2026-10-20.ics", Filename(appointment(t)))
}
