package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pitaya-nails-booking/internal/availability"
	"github.com/wolfman30/pitaya-nails-booking/internal/calendar"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
	"github.com/wolfman30/pitaya-nails-booking/internal/clock"
	"github.com/wolfman30/pitaya-nails-booking/internal/notify"
	"github.com/wolfman30/pitaya-nails-booking/internal/session"
	"github.com/wolfman30/pitaya-nails-booking/internal/wizard"
)

var (
	cancun  = time.FixedZone("EST", -5*3600)
	testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, cancun)
)

type fakeSender struct {
	mu     sync.Mutex
	failTo string
	sent   int
}

func (f *fakeSender) Send(_ context.Context, msg notify.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.To == f.failTo {
		return errors.New("boom")
	}
	f.sent++
	return nil
}

type testAPI struct {
	handler http.Handler
	sender  *fakeSender
	manager *wizard.Manager
	clk     *clock.Fake
}

func newTestAPI(t *testing.T, configured bool) *testAPI {
	t.Helper()
	cat := catalog.Default()
	clk := clock.NewFake(testNow)
	sender := &fakeSender{}

	var gateway *notify.Gateway
	composer := notify.Composer{Salon: cat.Salon(), SalonEmail: "salon@pitayanails.mx", Location: cancun}
	if configured {
		gateway = notify.NewGateway(sender, "test", composer, nil, nil)
	} else {
		gateway = notify.NewGateway(nil, "http", composer, nil, nil)
	}
	manager := wizard.NewManager(wizard.Options{
		Catalog:  cat,
		Store:    session.NewStore(session.NewMemoryKV(), nil),
		Gateway:  gateway,
		Clock:    clk,
		Location: cancun,
	})

	catalogHandler := NewCatalogHandler(cat)
	availabilityHandler := NewAvailabilityHandler(cat, availability.NewCalculator(), clk, cancun)
	sessions := NewSessionsHandler(manager, calendar.NewExporter(cat.Salon(), "Cancún"), cancun, nil)

	r := chi.NewRouter()
	r.Get("/api/v1/services", catalogHandler.ListServices)
	r.Get("/api/v1/team", catalogHandler.ListTeam)
	r.Get("/api/v1/availability", availabilityHandler.GetSlots)
	r.Get("/api/v1/availability/month", availabilityHandler.GetMonth)
	r.Mount("/api/v1/sessions", sessions.Routes())
	return &testAPI{handler: r, sender: sender, manager: manager, clk: clk}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type stateBody struct {
	SessionID     string            `json:"sessionId"`
	CurrentStep   int               `json:"currentStep"`
	StepName      string            `json:"stepName"`
	Slots         []string          `json:"slots"`
	SubmitEnabled bool              `json:"submitEnabled"`
	ConfigNotice  string            `json:"configNotice"`
	Errors        map[string]string `json:"errors"`
	Totals        struct {
		Price    int `json:"price"`
		Duration int `json:"duration"`
	} `json:"totals"`
	Selection struct {
		Services []string `json:"selectedServices"`
	} `json:"selection"`
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateBody {
	t.Helper()
	var s stateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s), rec.Body.String())
	return s
}

func (a *testAPI) openAtConfirm(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/sessions?service=gel", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeState(t, rec).SessionID
	base := "/api/v1/sessions/" + id

	steps := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/professional", map[string]int{"professionalId": 1}},
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/date", map[string]string{"date": "2026-10-20"}},
		{http.MethodPut, "/time", map[string]string{"time": "10:00"}},
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/client", map[string]string{"name": "Ana", "email": "ana@example.com", "phone": "9981234567"}},
		{http.MethodPost, "/next", nil},
		{http.MethodPost, "/next", nil},
	}
	for _, s := range steps {
		rec := a.do(t, s.method, base+s.path, s.body)
		require.Equal(t, http.StatusOK, rec.Code, "%s %s: %s", s.method, s.path, rec.Body.String())
	}
	return id
}

func TestListServices(t *testing.T) {
	api := newTestAPI(t, true)

	rec := api.do(t, http.MethodGet, "/api/v1/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Services []catalog.Service `json:"services"`
		Selected *catalog.Service  `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Services, len(catalog.DefaultServices))
	assert.Nil(t, body.Selected)

	rec = api.do(t, http.MethodGet, "/api/v1/services?service=nail-art", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Selected)
	assert.Equal(t, "nail-art", body.Selected.ID)

	rec = api.do(t, http.MethodGet, "/api/v1/services?service=nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/team", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Valeria")
}

func TestAvailabilitySlots(t *testing.T) {
	api := newTestAPI(t, true)

	rec := api.do(t, http.MethodGet, "/api/v1/availability?professional=1&date=2026-10-20&duration=60", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Unavailable bool     `json:"unavailable"`
		Slots       []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Unavailable)
	require.NotEmpty(t, body.Slots)
	assert.Equal(t, "10:00", body.Slots[0])
	assert.Contains(t, body.Slots, "12:00")
	assert.NotContains(t, body.Slots, "12:30")

	// Sunday is everyone's day off.
	rec = api.do(t, http.MethodGet, "/api/v1/availability?professional=1&date=2026-10-25&duration=60", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Unavailable)
	assert.Empty(t, body.Slots)

	for _, q := range []string{"professional=9&date=2026-10-20&duration=60", "professional=1&date=20-10-2026&duration=60", "professional=1&date=2026-10-20&duration=-5"} {
		rec = api.do(t, http.MethodGet, "/api/v1/availability?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestAvailabilityMonth(t *testing.T) {
	api := newTestAPI(t, true)

	rec := api.do(t, http.MethodGet, "/api/v1/availability/month?professional=2&month=2026-10&duration=60", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Label    string `json:"label"`
		Previous string `json:"previous"`
		Next     string `json:"next"`
		Weeks    [][]*struct {
			Date        string `json:"date"`
			Unavailable bool   `json:"unavailable"`
			FreeSlots   int    `json:"freeSlots"`
		} `json:"weeks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "octubre 2026", body.Label)
	assert.Equal(t, "2026-09", body.Previous)
	assert.Equal(t, "2026-11", body.Next)

	wed := body.Weeks[3][3]
	require.NotNil(t, wed)
	assert.Equal(t, "2026-10-21", wed.Date)
	assert.True(t, wed.Unavailable)
	assert.Zero(t, wed.FreeSlots)

	tue := body.Weeks[3][2]
	require.NotNil(t, tue)
	assert.False(t, tue.Unavailable)
	assert.Positive(t, tue.FreeSlots)

	rec = api.do(t, http.MethodGet, "/api/v1/availability/month?professional=2&month=oct", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlowAndCalendar(t *testing.T) {
	api := newTestAPI(t, true)
	id := api.openAtConfirm(t)
	base := "/api/v1/sessions/" + id

	rec := api.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "confirm", state.StepName)
	assert.True(t, state.SubmitEnabled)
	assert.Equal(t, 450, state.Totals.Price)

	rec = api.do(t, http.MethodGet, base+"/calendar.ics", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "no calendar before submission")

	rec = api.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "submitted", decodeState(t, rec).StepName)
	assert.Equal(t, 2, api.sender.sent)

	rec = api.do(t, http.MethodGet, base+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, calendar.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cita-pitaya-nails-2026-10-20.ics")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "BEGIN:VCALENDAR"))

	rec = api.do(t, http.MethodGet, base+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		History []struct {
			ID string `json:"id"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.History, 1)

	rec = api.do(t, http.MethodPost, base+"/rebook", map[string]string{"historyId": hist.History[0].ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "date_time", decodeState(t, rec).StepName)

	rec = api.do(t, http.MethodDelete, base+"/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodPost, base+"/rebook", map[string]string{"historyId": hist.History[0].ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionValidationErrors(t *testing.T) {
	api := newTestAPI(t, true)
	rec := api.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/sessions/" + decodeState(t, rec).SessionID

	rec = api.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, wizard.FieldServices)

	rec = api.do(t, http.MethodPut, base+"/services", map[string]any{"toggle": "nail-art"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPut, base+"/customizations/nail-art", map[string]any{"quantity": 5, "notes": "flores"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, decodeState(t, rec).Totals.Price)

	rec = api.do(t, http.MethodPut, base+"/services", map[string]any{"services": []string{"nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(t, http.MethodPut, base+"/services", map[string]any{"bogus": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, base+"/step", map[string]int{"step": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/next", nil).Code)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPut, base+"/professional", map[string]int{"professionalId": 2}).Code)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/next", nil).Code)

	rec = api.do(t, http.MethodPut, base+"/date", map[string]string{"date": "2026-10-21"})
	assert.Equal(t, http.StatusConflict, rec.Code, "Sofía is off on Wednesdays")
	rec = api.do(t, http.MethodPut, base+"/time", map[string]string{"time": "10:00"})
	assert.Equal(t, http.StatusConflict, rec.Code, "time needs a date")
	rec = api.do(t, http.MethodPut, base+"/date", map[string]string{"date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPut, base+"/date", map[string]string{"date": "2026-10-22"}).Code)
	rec = api.do(t, http.MethodPut, base+"/time", map[string]string{"time": "10:00"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/next", nil).Code)

	api.do(t, http.MethodPut, base+"/client", map[string]string{"name": "Ana", "email": "ana@example.com", "phone": "555-1234"})
	rec = api.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, wizard.FieldPhone)
	assert.NotContains(t, body.Fields, wizard.FieldEmail)

	rec = api.do(t, http.MethodGet, base, nil)
	state := decodeState(t, rec)
	assert.Equal(t, "client_details", state.StepName)
	assert.Contains(t, state.Errors, wizard.FieldPhone)
}

func TestSubmitFailureAndDisabled(t *testing.T) {
	api := newTestAPI(t, true)
	api.sender.failTo = "ana@example.com"
	id := api.openAtConfirm(t)

	rec := api.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"`+wizard.SubmitFailureMessage+`"}`, rec.Body.String())
	rec = api.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, "confirm", decodeState(t, rec).StepName)

	disabled := newTestAPI(t, false)
	id = disabled.openAtConfirm(t)
	rec = disabled.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	state := decodeState(t, rec)
	assert.False(t, state.SubmitEnabled)
	assert.Equal(t, wizard.ConfigNoticeMessage, state.ConfigNotice)

	rec = disabled.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/submit", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSessionBackExitAndUnknownID(t *testing.T) {
	api := newTestAPI(t, true)
	rec := api.do(t, http.MethodPost, "/api/v1/sessions?service=gel", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeState(t, rec).SessionID

	rec = api.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var back struct {
		Exited bool `json:"exited"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &back))
	assert.True(t, back.Exited)

	rec = api.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeState(t, rec).Selection.Services, "exit cleared the saved booking")

	rec = api.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/sessions?service=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadsDoNotOpenSessions(t *testing.T) {
	api := newTestAPI(t, true)
	base := "/api/v1/sessions/" + uuid.New().String()

	rec := api.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "preferences", decodeState(t, rec).StepName)
	rec = api.do(t, http.MethodGet, base+"/history", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, base+"/calendar.ics", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, api.manager.Len())

	rec = api.do(t, http.MethodPut, base+"/services", map[string]any{"toggle": "gel"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, api.manager.Len())
}

func TestCalendarAfterSessionEviction(t *testing.T) {
	api := newTestAPI(t, true)
	id := api.openAtConfirm(t)
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, base+"/submit", nil).Code)

	api.clk.Advance(time.Hour)
	require.Equal(t, 1, api.manager.Sweep(api.clk.Now(), 30*time.Minute))

	rec := api.do(t, http.MethodGet, base+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cita-pitaya-nails-2026-10-20.ics")

	rec = api.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "submitted", decodeState(t, rec).StepName)
}
