// Package availability derives bookable start times from business hours and
// blocked intervals.
package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

// Interval is a half-open [Start, End) range in minutes from midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two half-open intervals share any minute.
// Touching intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return max(i.Start, o.Start) < min(i.End, o.End)
}

// Hours describes one business day.
type Hours struct {
	Open      int
	Close     int
	Increment int
	Blocked   []Interval
}

// DefaultHours: 10:00 to 20:00 with a 13:00 to 14:00 lunch break, 15 minute grid.
var DefaultHours = Hours{
	Open:      10 * 60,
	Close:     20 * 60,
	Increment: 15,
	Blocked:   []Interval{{Start: 13 * 60, End: 14 * 60}},
}

// Length is the business day length in minutes.
func (h Hours) Length() int { return h.Close - h.Open }

// Slots returns the start times, ascending, of every window of the given
// length that fits inside business hours without touching a blocked interval.
// A zero or negative duration yields no slots.
func (h Hours) Slots(duration int, booked ...Interval) []string {
	slots := []string{}
	if duration <= 0 || duration > h.Length() || h.Increment <= 0 {
		return slots
	}
	blocked := append(append([]Interval(nil), h.Blocked...), booked...)
	for start := h.Open; start <= h.Close-duration; start += h.Increment {
		candidate := Interval{Start: start, End: start + duration}
		free := true
		for _, b := range blocked {
			if candidate.Overlaps(b) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, FormatTime(start))
		}
	}
	return slots
}

// BookedFunc supplies already-booked intervals for a professional on a date.
type BookedFunc func(date time.Time, professional catalog.TeamMember) []Interval

// Calculator computes slots for a date and professional. The caller must make
// sure the professional works on that date.
type Calculator struct {
	Hours  Hours
	Booked BookedFunc
}

// NewCalculator returns a calculator over DefaultHours with no bookings.
func NewCalculator() Calculator {
	return Calculator{Hours: DefaultHours}
}

// ComputeSlots returns the ordered HH:MM start times for totalDuration minutes.
func (c Calculator) ComputeSlots(date time.Time, professional catalog.TeamMember, totalDuration int) []string {
	var booked []Interval
	if c.Booked != nil {
		booked = c.Booked(date, professional)
	}
	return c.Hours.Slots(totalDuration, booked...)
}

// FormatTime renders minutes from midnight as HH:MM.
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseTime parses HH:MM into minutes from midnight. Both fields are exactly
// two ASCII digits.
func ParseTime(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 || !isTwoDigits(parts[0]) || !isTwoDigits(parts[1]) {
		return 0, fmt.Errorf("availability: invalid time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("availability: invalid hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("availability: invalid minute in %q", hhmm)
	}
	return h*60 + m, nil
}

func isTwoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// At combines a calendar date with an HH:MM time in the date's location.
func At(date time.Time, hhmm string) (time.Time, error) {
	minutes, err := ParseTime(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, date.Location()), nil
}
