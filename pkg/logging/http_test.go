package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestHTTPLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{"success", "/api/analyze", http.StatusOK, "INFO"},
		{"server error", "/api/analyze", http.StatusInternalServerError, "ERROR"},
		{"health probe", "/health", http.StatusOK, "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := HTTPLoggingMiddleware(newJSONLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hello"))
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, tt.path, nil))

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, "http_request", record["msg"])
			assert.Equal(t, tt.wantLevel, record["level"])
			assert.Equal(t, tt.path, record["path"])
			assert.Equal(t, float64(tt.status), record["status"])
			assert.Equal(t, float64(5), record["bytes"])
			assert.Equal(t, "", record["trace_id"])
		})
	}
}

func TestHTTPErrorLogger(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/x", nil)
	HTTPErrorLogger(newJSONLogger(&buf), http.StatusNotFound, errors.New("job not found"), req)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "job not found", record["error"])
	assert.Equal(t, float64(404), record["status"])
}
