package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func healthy() Pinger { return PingFunc(func(context.Context) error { return nil }) }

func failing(msg string) Pinger {
	return PingFunc(func(context.Context) error { return errors.New(msg) })
}

func TestHealthChecker_Check(t *testing.T) {
	tests := []struct {
		name     string
		register func(h *HealthChecker)
		want     string
	}{
		{
			name:     "no dependencies",
			register: func(h *HealthChecker) {},
			want:     StatusHealthy,
		},
		{
			name: "all healthy",
			register: func(h *HealthChecker) {
				h.Register("ledger", healthy(), true)
				h.Register("audit", healthy(), false)
			},
			want: StatusHealthy,
		},
		{
			name: "optional dependency down",
			register: func(h *HealthChecker) {
				h.Register("ledger", healthy(), true)
				h.Register("audit", failing("disk full"), false)
			},
			want: StatusDegraded,
		},
		{
			name: "critical dependency down",
			register: func(h *HealthChecker) {
				h.Register("ledger", failing("connection refused"), true)
				h.Register("audit", failing("disk full"), false)
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker("1")
			tt.register(h)

			status := h.Check(context.Background())
			if status.Status != tt.want {
				t.Errorf("Expected status %s, got %s", tt.want, status.Status)
			}
			if status.Version != "1" {
				t.Errorf("Expected version 1, got %s", status.Version)
			}
		})
	}
}

func TestHealthChecker_DependencyMessage(t *testing.T) {
	h := NewHealthChecker("1")
	h.Register("ledger", failing("connection refused"), true)

	status := h.Check(context.Background())
	dep, ok := status.Dependencies["ledger"]
	if !ok {
		t.Fatal("Expected ledger dependency in status")
	}
	if dep.Message != "connection refused" {
		t.Errorf("Expected message 'connection refused', got %q", dep.Message)
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	t.Run("healthy returns 200", func(t *testing.T) {
		h := NewHealthChecker("1")
		h.Register("ledger", healthy(), true)

		rr := httptest.NewRecorder()
		h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))

		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
		var status HealthStatus
		if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if status.Status != StatusHealthy {
			t.Errorf("Expected healthy, got %s", status.Status)
		}
	})

	t.Run("unhealthy returns 503", func(t *testing.T) {
		h := NewHealthChecker("1")
		h.Register("ledger", failing("down"), true)

		rr := httptest.NewRecorder()
		h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))

		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", rr.Code)
		}
	})
}

func TestRegisterHealthRoutes(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHealthRoutes(mux, NewHealthChecker("1"))

	for _, path := range []string{"/healthz/live", "/healthz/ready"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: expected application/json, got %s", path, ct)
		}
	}
}
