package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) last(t *testing.T) (slog.Record, map[string]slog.Value) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.records)
	rec := h.records[len(h.records)-1]
	attrs := map[string]slog.Value{}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})
	return rec, attrs
}

func TestLoggingMiddleware_StatusAndLevel(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		status    int
		body      string
		wantLevel slog.Level
	}{
		{"listing", http.MethodGet, "/events", http.StatusOK, `{"data":[]}`, slog.LevelInfo},
		{"admitted", http.MethodPost, "/events/abc/register", http.StatusCreated, "{}", slog.LevelInfo},
		{"event full", http.MethodPost, "/events/abc/register", http.StatusBadRequest, "full", slog.LevelInfo},
		{"storage down", http.MethodGet, "/registrations/my-events", http.StatusServiceUnavailable, "", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rh := &recordingHandler{}
			h := LoggingMiddleware(slog.New(rh), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			rec, attrs := rh.last(t)
			assert.Equal(t, "request", rec.Message)
			assert.Equal(t, tt.wantLevel, rec.Level)
			assert.Equal(t, tt.method, attrs["method"].String())
			assert.Equal(t, tt.path, attrs["path"].String())
			assert.Equal(t, int64(tt.status), attrs["status"].Int64())
			assert.Equal(t, int64(len(tt.body)), attrs["bytes"].Int64())
			assert.GreaterOrEqual(t, attrs["duration_ms"].Int64(), int64(0))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestLoggingMiddleware_ImplicitOK(t *testing.T) {
	rh := &recordingHandler{}
	h := LoggingMiddleware(slog.New(rh), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events", nil))

	_, attrs := rh.last(t)
	assert.Equal(t, int64(http.StatusOK), attrs["status"].Int64())
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		rh := &recordingHandler{}
		var seen string
		h := LoggingMiddleware(slog.New(rh), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
		_, attrs := rh.last(t)
		assert.Equal(t, seen, attrs["request_id"].String())
	})

	t.Run("propagated", func(t *testing.T) {
		h := LoggingMiddleware(slog.New(&recordingHandler{}), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set(RequestIDHeader, "edge-123")
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, "edge-123", rr.Header().Get(RequestIDHeader))
	})

	t.Run("oversized replaced", func(t *testing.T) {
		h := LoggingMiddleware(slog.New(&recordingHandler{}), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Len(t, rr.Header().Get(RequestIDHeader), 36)
	})

	assert.Empty(t, RequestIDFromContext(context.Background()))
}
