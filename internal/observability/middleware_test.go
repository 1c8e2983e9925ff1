package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddlewareSetsHeaderAndContext(t *testing.T) {
	var ctxRequestID string

	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxRequestID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil)
	w := testutil.ExecuteRequest(r, h)

	headerRequestID := w.Result().Header.Get(RequestIDHeader)
	if headerRequestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}

	if _, err := uuid.Parse(headerRequestID); err != nil {
		t.Fatalf("expected header to contain UUID, got %q: %v", headerRequestID, err)
	}

	if ctxRequestID != headerRequestID {
		t.Fatalf("expected context request_id %q to match header %q", ctxRequestID, headerRequestID)
	}
}

func TestRequestIDMiddlewarePropagatesInboundID(t *testing.T) {
	inbound := uuid.NewString()

	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/calculator/sessions/x", nil)
		r.Header.Set(RequestIDHeader, inbound)
		w := testutil.ExecuteRequest(r, h)

		if got := w.Result().Header.Get(RequestIDHeader); got != inbound {
			t.Fatalf("expected %q, got %q", inbound, got)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/calculator/sessions/x", nil)
		r.Header.Set(RequestIDHeader, "not a uuid\n")
		w := testutil.ExecuteRequest(r, h)

		got := w.Result().Header.Get(RequestIDHeader)
		if got == "not a uuid\n" || !ValidRequestID(got) {
			t.Fatalf("expected a fresh UUID, got %q", got)
		}
	})
}

func TestShouldTraceRequest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/health", want: false},
		{path: "/metrics", want: false},
		{path: "/calculator/evaluate", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.path, nil)
			got := shouldTraceRequest(r)
			if got != tc.want {
				t.Fatalf("path %q: expected %t, got %t", tc.path, tc.want, got)
			}
		})
	}
}

func TestLoggingMiddlewareWritesCompletionLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	oldLogger := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = oldLogger })

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	r := httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-123"))
	_ = testutil.ExecuteRequest(r, h)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Message != "request completed" {
		t.Fatalf("expected message %q, got %q", "request completed", entry.Message)
	}

	fields := entry.ContextMap()
	if fields["method"] != http.MethodPost {
		t.Fatalf("expected method %q, got %#v", http.MethodPost, fields["method"])
	}
	if fields["path"] != "/calculator/sessions" {
		t.Fatalf("expected path %q, got %#v", "/calculator/sessions", fields["path"])
	}
	if fields["status"] != int64(http.StatusCreated) {
		t.Fatalf("expected status %d, got %#v", http.StatusCreated, fields["status"])
	}
	if fields["request_id"] != "req-123" {
		t.Fatalf("expected request_id %q, got %#v", "req-123", fields["request_id"])
	}
}
