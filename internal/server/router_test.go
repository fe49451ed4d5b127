package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/cpx/internal/shared"
)

type pingHandler struct{}

func (pingHandler) Routes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		RespondSuccess(w, http.StatusOK, "pong", nil)
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/v1/", "/api/v1"},
		{" /api ", "/api"},
	}

	for _, tt := range tests {
		if got := normalizePrefix(tt.in); got != tt.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRouter(t *testing.T) {
	router := NewRouter("api/v1/")
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondSuccess(w, http.StatusOK, "ok", nil)
	}))
	router.Handler(pingHandler{})

	tests := []struct {
		name    string
		method  string
		path    string
		status  int
		message string
	}{
		{"prefixed route", http.MethodGet, "/api/v1/ping", http.StatusOK, "pong"},
		{"route outside prefix", http.MethodGet, "/healthz", http.StatusOK, "ok"},
		{"unprefixed handler route", http.MethodGet, "/ping", http.StatusNotFound, "Route not found."},
		{"unknown route", http.MethodGet, "/api/v1/nope", http.StatusNotFound, "Route not found."},
		{"wrong method", http.MethodPost, "/api/v1/ping", http.StatusMethodNotAllowed, "Method not allowed."},
		{"recovered panic", http.MethodGet, "/api/v1/panic", http.StatusInternalServerError, "Internal server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if tt.message == "" {
				return
			}

			var env Failure
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("expected JSON envelope: %v", err)
			}
			if env.Message != tt.message || env.Status != tt.status {
				t.Errorf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	t.Run("omits nil data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondError(rec, http.StatusNotFound, "Playlist not found.", nil)

		if got := rec.Body.String(); got != "{\"status\":404,\"message\":\"Playlist not found.\"}\n" {
			t.Errorf("unexpected body: %q", got)
		}
	})

	t.Run("keeps data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondError(rec, http.StatusBadRequest, "bad", map[string]string{"field": "name"})

		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if _, ok := body["data"]; !ok {
			t.Error("expected data to be present")
		}
	})
}

func TestRespondSuccessKeepsNullData(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, http.StatusOK, "ok", nil)

	if got := rec.Body.String(); got != "{\"status\":200,\"message\":\"ok\",\"data\":null}\n" {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestServerRun(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("stops when context is canceled", func(t *testing.T) {
		cfg := shared.DefaultConfig().Server
		cfg.Host, cfg.Port = "127.0.0.1", 0
		srv := NewServer(cfg, NewRouter("/api/v1"), logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(shutdownTimeout + time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("reports listen failure", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer ln.Close()

		cfg := shared.DefaultConfig().Server
		cfg.Host, cfg.Port = "127.0.0.1", ln.Addr().(*net.TCPAddr).Port
		srv := NewServer(cfg, NewRouter(""), logger)

		if srv.Addr() != ln.Addr().String() {
			t.Errorf("expected addr %s, got %s", ln.Addr(), srv.Addr())
		}
		if err := srv.Run(context.Background()); err == nil {
			t.Error("expected error when the port is taken")
		}
	})
}
