package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dework-labs/marketsync/internal/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	handler := LoggingMiddleware(logger.NewNopLogger())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	wrapped.WriteHeader(http.StatusNotFound)

	require.Equal(t, http.StatusNotFound, wrapped.statusCode)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := RecoveryMiddleware(logger.NewNopLogger())(panicking)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, req)
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		wantHeader     string
	}{
		{
			name:           "wildcard echoes origin",
			allowedOrigins: []string{"*"},
			origin:         "https://app.example.org",
			wantHeader:     "https://app.example.org",
		},
		{
			name:           "wildcard without origin",
			allowedOrigins: []string{"*"},
			origin:         "",
			wantHeader:     "*",
		},
		{
			name:           "exact match",
			allowedOrigins: []string{"https://app.example.org"},
			origin:         "https://app.example.org",
			wantHeader:     "https://app.example.org",
		},
		{
			name:           "origin not allowed",
			allowedOrigins: []string{"https://app.example.org"},
			origin:         "https://evil.example.org",
			wantHeader:     "",
		},
		{
			name:           "no origins configured",
			allowedOrigins: nil,
			origin:         "https://app.example.org",
			wantHeader:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORSMiddleware(tt.allowedOrigins)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantHeader, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantHeader != "" {
				require.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
				require.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	handler := CORSMiddleware([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	req.Header.Set("Origin", "https://app.example.org")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}
