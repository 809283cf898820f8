package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkedogan/tasks-api/internal/api/shared"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
)

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(&buf, "debug")

	var seenTraceID string
	handler := Trace(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, seenTraceID)
	assert.Equal(t, seenTraceID, rec.Header().Get("X-Trace-Id"))
	assert.Contains(t, buf.String(), `"trace_id":"`+seenTraceID+`"`)
	assert.Contains(t, buf.String(), "inside handler")
}

func TestTrace_UniquePerRequest(t *testing.T) {
	handler := Trace(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEqual(t, first.Header().Get("X-Trace-Id"), second.Header().Get("X-Trace-Id"))
}
