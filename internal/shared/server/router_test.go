package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"jobtracker-backend/internal/shared/config"
)

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":5000",
		"8080":  ":8080",
		":9000": ":9000",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	r := NewRouter(RouterDeps{Config: config.Config{CORSAllowOrigin: []string{"http://localhost:5173"}}})

	for _, path := range []string{"/api/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterRateLimitsWrites(t *testing.T) {
	r := NewRouter(RouterDeps{Config: config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1}})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected second write to be limited, got %v", codes)
	}
}
