package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/availability"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
	"github.com/wolfman30/pitaya-nails-booking/internal/clock"
)

// AvailabilityHandler is the quick availability viewer: free slots and month
// calendars without opening a booking session.
type AvailabilityHandler struct {
	catalog *catalog.Catalog
	calc    availability.Calculator
	clock   clock.Clock
	loc     *time.Location
}

// NewAvailabilityHandler creates the viewer. A nil clock uses the real one.
func NewAvailabilityHandler(cat *catalog.Catalog, calc availability.Calculator, clk clock.Clock, loc *time.Location) *AvailabilityHandler {
	if clk == nil {
		clk = clock.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{catalog: cat, calc: calc, clock: clk, loc: loc}
}

type slotsResponse struct {
	Professional catalog.TeamMember `json:"professional"`
	Date         string             `json:"date"`
	Duration     int                `json:"duration"`
	Unavailable  bool               `json:"unavailable"`
	Slots        []string           `json:"slots"`
}

// GetSlots returns free start times.
// GET /api/v1/availability?professional=<id>&date=YYYY-MM-DD&duration=<minutes>
func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	member, err := h.professional(q.Get("professional"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(q.Get("date")), h.loc)
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	duration, err := parseDuration(q.Get("duration"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := slotsResponse{
		Professional: member,
		Date:         date.Format(time.DateOnly),
		Duration:     duration,
		Slots:        []string{},
	}
	if availability.IsDateUnavailable(date, &member, h.clock.Now()) {
		resp.Unavailable = true
	} else {
		resp.Slots = h.calc.ComputeSlots(date, member, duration)
	}
	writeJSON(w, http.StatusOK, resp)
}

type monthDay struct {
	Date        string `json:"date"`
	Day         int    `json:"day"`
	Unavailable bool   `json:"unavailable"`
	FreeSlots   int    `json:"freeSlots"`
}

type monthResponse struct {
	Professional catalog.TeamMember `json:"professional"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	Label        string             `json:"label"`
	Previous     string             `json:"previous"`
	Next         string             `json:"next"`
	Weeks        [][]*monthDay      `json:"weeks"`
}

// GetMonth returns a Sunday-first calendar for one professional.
// GET /api/v1/availability/month?professional=<id>&month=YYYY-MM&duration=<minutes>
// month defaults to the current one; with a duration each day carries its
// number of free slots.
func (h *AvailabilityHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	member, err := h.professional(q.Get("professional"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	now := h.clock.Now().In(h.loc)
	view := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc)
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		view, err = time.ParseInLocation("2006-01", raw, h.loc)
		if err != nil {
			jsonError(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
	}
	duration := 0
	if raw := q.Get("duration"); raw != "" {
		if duration, err = parseDuration(raw); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	grid := availability.MonthGrid(view)
	weeks := make([][]*monthDay, 0, len(grid))
	for _, week := range grid {
		cells := make([]*monthDay, len(week))
		for i, day := range week {
			if day == nil {
				continue
			}
			cell := &monthDay{
				Date:        day.Format(time.DateOnly),
				Day:         day.Day(),
				Unavailable: availability.IsDateUnavailable(*day, &member, now),
			}
			if !cell.Unavailable && duration > 0 {
				cell.FreeSlots = len(h.calc.ComputeSlots(*day, member, duration))
			}
			cells[i] = cell
		}
		weeks = append(weeks, cells)
	}

	writeJSON(w, http.StatusOK, monthResponse{
		Professional: member,
		Year:         view.Year(),
		Month:        int(view.Month()),
		Label:        fmt.Sprintf("%s %d", availability.MonthName(view.Month()), view.Year()),
		Previous:     availability.ChangeMonth(view, -1).Format("2006-01"),
		Next:         availability.ChangeMonth(view, 1).Format("2006-01"),
		Weeks:        weeks,
	})
}

func (h *AvailabilityHandler) professional(raw string) (catalog.TeamMember, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return catalog.TeamMember{}, errors.New("professional must be a team member id")
	}
	member, err := h.catalog.Member(id)
	if err != nil {
		return catalog.TeamMember{}, fmt.Errorf("unknown professional %d", id)
	}
	return member, nil
}

func parseDuration(raw string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || d < 0 {
		return 0, errors.New("duration must be a non-negative number of minutes")
	}
	return d, nil
}
