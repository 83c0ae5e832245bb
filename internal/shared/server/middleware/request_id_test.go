package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobtracker-backend/internal/shared/server/respond"
)

func TestRequestIDKeepsWellFormedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/api/jobs", func(c *gin.Context) {
		seen = respond.RequestID(c)
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "token", header: "req-42.a_b", keep: true},
		{name: "empty", header: ""},
		{name: "newline", header: "abc\ninjected"},
		{name: "too long", header: strings.Repeat("a", 65)},
		{name: "spaces", header: "a b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			if tc.header != "" {
				req.Header[requestIDHeader] = []string{tc.header}
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			got := resp.Header().Get(requestIDHeader)
			if got != seen {
				t.Fatalf("response id %q differs from context id %q", got, seen)
			}
			if tc.keep {
				if got != tc.header {
					t.Fatalf("expected %q kept, got %q", tc.header, got)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected generated uuid, got %q", got)
			}
		})
	}
}
