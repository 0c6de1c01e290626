package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/internal/calendar"
	"github.com/wolfman30/pitaya-nails-booking/internal/wizard"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// SessionsHandler drives booking wizards keyed by session id.
type SessionsHandler struct {
	manager  *wizard.Manager
	exporter *calendar.Exporter
	loc      *time.Location
	logger   *logging.Logger
}

// NewSessionsHandler creates the booking session handler.
func NewSessionsHandler(manager *wizard.Manager, exporter *calendar.Exporter, loc *time.Location, logger *logging.Logger) *SessionsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionsHandler{manager: manager, exporter: exporter, loc: loc, logger: logger}
}

// Routes mounts the session endpoints under /api/v1/sessions.
func (h *SessionsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Route("/{sessionID}", func(s chi.Router) {
		s.Get("/", h.Get)
		s.Delete("/", h.Exit)
		s.Put("/services", h.SetServices)
		s.Put("/customizations/{serviceID}", h.SetCustomization)
		s.Put("/professional", h.SelectProfessional)
		s.Put("/date", h.SelectDate)
		s.Put("/time", h.SelectTime)
		s.Put("/client", h.SetClient)
		s.Put("/reminders", h.SetReminders)
		s.Put("/view-month", h.ChangeViewMonth)
		s.Post("/next", h.Next)
		s.Post("/back", h.Back)
		s.Post("/step", h.GoToStep)
		s.Post("/submit", h.Submit)
		s.Get("/calendar.ics", h.Calendar)
		s.Get("/history", h.History)
		s.Delete("/history", h.ClearHistory)
		s.Post("/rebook", h.Rebook)
	})
	return r
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	wizard.View
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *SessionsHandler) respond(w http.ResponseWriter, status int, id string, wz *wizard.Wizard) {
	writeJSON(w, status, sessionResponse{SessionID: id, View: wz.Snapshot()})
}

// fail maps wizard errors onto status codes.
func (h *SessionsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := wizard.IsValidationError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: ve.Fields})
		return
	}
	switch {
	case errors.Is(err, wizard.ErrSubmissionFailed):
		jsonError(w, wizard.SubmitFailureMessage, http.StatusBadGateway)
	case errors.Is(err, wizard.ErrSubmissionDisabled):
		jsonError(w, wizard.ConfigNoticeMessage, http.StatusServiceUnavailable)
	case errors.Is(err, wizard.ErrInvalidSessionID), errors.Is(err, wizard.ErrHistoryNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, wizard.ErrUnknownService), errors.Is(err, wizard.ErrUnknownProfessional):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, wizard.ErrInvalidStep),
		errors.Is(err, wizard.ErrDateUnavailable),
		errors.Is(err, wizard.ErrTimeRequiresDate),
		errors.Is(err, wizard.ErrSlotUnavailable),
		errors.Is(err, wizard.ErrNotSubmitted):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("session request failed", "path", r.URL.Path, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// load resolves the wizard for the {sessionID} URL parameter.
func (h *SessionsHandler) load(w http.ResponseWriter, r *http.Request) (string, *wizard.Wizard, bool) {
	return h.resolve(w, r, h.manager.Get)
}

// view resolves the wizard for a read without registering unknown ids.
func (h *SessionsHandler) view(w http.ResponseWriter, r *http.Request) (string, *wizard.Wizard, bool) {
	return h.resolve(w, r, h.manager.Lookup)
}

func (h *SessionsHandler) resolve(w http.ResponseWriter, r *http.Request, find func(context.Context, string) (*wizard.Wizard, error)) (string, *wizard.Wizard, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	wz, err := find(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return "", nil, false
	}
	return id, wz, true
}

// mutate runs op against the session wizard and answers with the new state.
func (h *SessionsHandler) mutate(w http.ResponseWriter, r *http.Request, op func(*wizard.Wizard) error) {
	id, wz, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := op(wz); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, id, wz)
}

// Create opens a session.
// POST /api/v1/sessions?service=<id>
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	serviceID := strings.TrimSpace(r.URL.Query().Get("service"))
	id, wz, err := h.manager.Create(r.Context(), serviceID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("booking session opened", "session_id", id, "service", serviceID)
	h.respond(w, http.StatusCreated, id, wz)
}

// Get returns the session state.
// GET /api/v1/sessions/{sessionID}
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := h.view(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK, id, wz)
}

// Exit abandons the booking.
// DELETE /api/v1/sessions/{sessionID}
func (h *SessionsHandler) Exit(w http.ResponseWriter, r *http.Request) {
	_, wz, ok := h.view(w, r)
	if !ok {
		return
	}
	wz.Exit(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type servicesRequest struct {
	Services []string `json:"services"`
	Toggle   string   `json:"toggle"`
}

// SetServices replaces the services, or toggles one.
// PUT /api/v1/sessions/{sessionID}/services
func (h *SessionsHandler) SetServices(w http.ResponseWriter, r *http.Request) {
	var req servicesRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		if req.Toggle != "" {
			return wz.ToggleService(r.Context(), req.Toggle)
		}
		return wz.SetServices(r.Context(), req.Services)
	})
}

type customizationRequest struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// SetCustomization updates quantity and notes of a customizable service.
// PUT /api/v1/sessions/{sessionID}/customizations/{serviceID}
func (h *SessionsHandler) SetCustomization(w http.ResponseWriter, r *http.Request) {
	var req customizationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	serviceID := chi.URLParam(r, "serviceID")
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.SetCustomization(r.Context(), serviceID, req.Quantity, req.Notes)
	})
}

type professionalRequest struct {
	ProfessionalID int `json:"professionalId"`
}

// SelectProfessional chooses the professional.
// PUT /api/v1/sessions/{sessionID}/professional
func (h *SessionsHandler) SelectProfessional(w http.ResponseWriter, r *http.Request) {
	var req professionalRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.SelectProfessional(r.Context(), req.ProfessionalID)
	})
}

type dateRequest struct {
	Date string `json:"date"`
}

// SelectDate picks the appointment day.
// PUT /api/v1/sessions/{sessionID}/date  {"date": "YYYY-MM-DD"}
func (h *SessionsHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(req.Date), h.loc)
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.SelectDate(r.Context(), date)
	})
}

type timeRequest struct {
	Time string `json:"time"`
}

// SelectTime picks the start time.
// PUT /api/v1/sessions/{sessionID}/time  {"time": "HH:MM"}
func (h *SessionsHandler) SelectTime(w http.ResponseWriter, r *http.Request) {
	var req timeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.SelectTime(r.Context(), strings.TrimSpace(req.Time))
	})
}

// SetClient stores the contact details.
// PUT /api/v1/sessions/{sessionID}/client
func (h *SessionsHandler) SetClient(w http.ResponseWriter, r *http.Request) {
	var req booking.ClientDetails
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.SetClientDetails(r.Context(), req)
	})
}

// SetReminders stores the reminder opt-ins.
// PUT /api/v1/sessions/{sessionID}/reminders
func (h *SessionsHandler) SetReminders(w http.ResponseWriter, r *http.Request) {
	var req booking.Reminders
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.SetReminders(r.Context(), req)
	})
}

type viewMonthRequest struct {
	Offset int `json:"offset"`
}

// ChangeViewMonth moves the calendar month.
// PUT /api/v1/sessions/{sessionID}/view-month  {"offset": 1}
func (h *SessionsHandler) ChangeViewMonth(w http.ResponseWriter, r *http.Request) {
	var req viewMonthRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.ChangeViewMonth(r.Context(), req.Offset)
	})
}

// Next validates and advances.
// POST /api/v1/sessions/{sessionID}/next
func (h *SessionsHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.Next(r.Context())
	})
}

type backResponse struct {
	Exited bool `json:"exited"`
	sessionResponse
}

// Back goes to the previous step, or exits from the first one.
// POST /api/v1/sessions/{sessionID}/back
func (h *SessionsHandler) Back(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := h.load(w, r)
	if !ok {
		return
	}
	exited, err := wz.Back(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backResponse{
		Exited:          exited,
		sessionResponse: sessionResponse{SessionID: id, View: wz.Snapshot()},
	})
}

type stepRequest struct {
	Step int `json:"step"`
}

// GoToStep jumps back to an earlier step.
// POST /api/v1/sessions/{sessionID}/step  {"step": 2}
func (h *SessionsHandler) GoToStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.GoToStep(r.Context(), wizard.Step(req.Step))
	})
}

// Submit sends the booking.
// POST /api/v1/sessions/{sessionID}/submit
func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.Submit(r.Context())
	})
}

// Calendar downloads the submitted appointment as an .ics file.
// GET /api/v1/sessions/{sessionID}/calendar.ics
func (h *SessionsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	_, wz, ok := h.view(w, r)
	if !ok {
		return
	}
	appt, err := wz.Appointment()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, calendar.Filename(appt)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.exporter.Export(appt))
}

// History lists past bookings, newest first.
// GET /api/v1/sessions/{sessionID}/history
func (h *SessionsHandler) History(w http.ResponseWriter, r *http.Request) {
	_, wz, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": wz.History(r.Context())})
}

// ClearHistory removes past bookings.
// DELETE /api/v1/sessions/{sessionID}/history
func (h *SessionsHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	_, wz, ok := h.view(w, r)
	if !ok {
		return
	}
	wz.ClearHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type rebookRequest struct {
	HistoryID string `json:"historyId"`
}

// Rebook starts a new booking from a history entry.
// POST /api/v1/sessions/{sessionID}/rebook  {"historyId": "..."}
func (h *SessionsHandler) Rebook(w http.ResponseWriter, r *http.Request) {
	var req rebookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(wz *wizard.Wizard) error {
		return wz.Rebook(r.Context(), req.HistoryID)
	})
}
