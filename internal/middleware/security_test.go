package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSecurity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Security([]string{"https://vote.example.com"}))
	router.Any("/api/v1/auth/session", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{name: "same-origin GET", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "allowed cross-origin GET", method: http.MethodGet, origin: "https://vote.example.com", wantStatus: http.StatusOK, wantAllowed: "https://vote.example.com"},
		{name: "foreign cross-origin GET", method: http.MethodGet, origin: "https://evil.example.net", wantStatus: http.StatusOK},
		{name: "allowed preflight", method: http.MethodOptions, origin: "https://vote.example.com", wantStatus: http.StatusNoContent, wantAllowed: "https://vote.example.com"},
		{name: "foreign preflight", method: http.MethodOptions, origin: "https://evil.example.net", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/auth/session", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllowed)
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("nosniff header missing")
			}
		})
	}
}
