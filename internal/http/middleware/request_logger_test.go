package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

func TestRequestLoggerAssignsAndEchoesID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")

	var seen string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "request completed", line["msg"])
	assert.Equal(t, seen, line["request_id"])
	assert.EqualValues(t, http.StatusCreated, line["status"])
	assert.Equal(t, "/api/v1/sessions", line["path"])
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger(logging.NewWithWriter(&buf, "info"))(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
}
