package availability

import (
	"fmt"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var weekdayNames = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// LongDate renders t as "martes, 20 de octubre de 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", weekdayNames[t.Weekday()], t.Day(), MonthName(t.Month()), t.Year())
}

// MonthName returns the Spanish name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay compares two instants by calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthGrid lays out the month containing view as Sunday-first weeks of seven
// cells. Cells outside the month are nil.
func MonthGrid(view time.Time) [][]*time.Time {
	first := time.Date(view.Year(), view.Month(), 1, 0, 0, 0, 0, view.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()

	cells := make([]*time.Time, int(first.Weekday()), int(first.Weekday())+daysInMonth+6)
	for d := 1; d <= daysInMonth; d++ {
		day := time.Date(view.Year(), view.Month(), d, 0, 0, 0, 0, view.Location())
		cells = append(cells, &day)
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}

	weeks := make([][]*time.Time, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// ChangeMonth moves view by offset months, pinned to the first of the month so
// short months never roll over.
func ChangeMonth(view time.Time, offset int) time.Time {
	first := time.Date(view.Year(), view.Month(), 1, 0, 0, 0, 0, view.Location())
	return first.AddDate(0, offset, 0)
}

// IsDateUnavailable reports whether date is before today or falls on one of
// the professional's days off. A nil professional only checks the past.
func IsDateUnavailable(date time.Time, professional *catalog.TeamMember, today time.Time) bool {
	if Day(date).Before(Day(today.In(date.Location()))) {
		return true
	}
	return professional != nil && professional.UnavailableOn(date.Weekday())
}
