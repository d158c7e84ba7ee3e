package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestLoggingMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mw := LoggingMiddleware(logger)

	t.Run("successful request passes through", func(t *testing.T) {
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "ok" {
			t.Errorf("Expected body 'ok', got %q", rec.Body.String())
		}
	})

	t.Run("error status is preserved", func(t *testing.T) {
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", rec.Code)
		}
	})
}

func TestServerBuilder(t *testing.T) {
	logger := zaptest.NewLogger(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server, err := New(
		WithPort(0),
		WithLogger(logger),
		WithHandler(mux),
	)
	if err == nil {
		t.Fatal("port 0 should be rejected by the builder")
	}

	server, err = New(
		WithPort(18099),
		WithLogger(logger),
		WithHandler(mux),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if server.httpServer == nil {
		t.Error("HTTP server should not be nil")
	}
	if server.logger == nil {
		t.Error("Logger should not be nil")
	}
	if server.Addr() == nil {
		t.Error("Listener address should not be nil")
	}

	_ = server.lis.Close()
}

func TestServerRequiresHandler(t *testing.T) {
	_, err := New(WithPort(18100))
	if err == nil {
		t.Fatal("expected an error when no handler is configured")
	}
}
