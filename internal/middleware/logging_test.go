package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestID_Generated(t *testing.T) {
	t.Parallel()

	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Error("request ID not injected into context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != captured {
		t.Errorf("response header = %q, context value = %q", got, captured)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	t.Parallel()

	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "client-supplied-id")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if captured != "client-supplied-id" {
		t.Errorf("request ID = %q, want client-supplied-id", captured)
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		wantLevel  string
	}{
		{name: "success logs info", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error logs warn", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error logs error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/go/spring-launch", nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log output is not JSON: %v", err)
			}

			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["msg"] != "http request" {
				t.Errorf("msg = %v, want %q", entry["msg"], "http request")
			}
			if entry["path"] != "/go/spring-launch" {
				t.Errorf("path = %v", entry["path"])
			}
			if int(entry["status_code"].(float64)) != tt.status {
				t.Errorf("status_code = %v, want %d", entry["status_code"], tt.status)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !bytes.Contains(buf.Bytes(), []byte("panic recovered")) {
		t.Error("panic was not logged")
	}
}
