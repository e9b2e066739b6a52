package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Security sets response hardening headers and answers CORS for the
// configured origins. Credentials are allowed, so origins are echoed only
// when explicitly listed.
func Security(allowedOrigins []string) gin.HandlerFunc {
	allowed := newOriginSet(allowedOrigins)
	const (
		methods = "GET,POST,OPTIONS"
		headers = "Content-Type"
	)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")

		origin := c.GetHeader("Origin")
		if origin != "" && allowed.allows(origin) {
			h.Set("Access-Control-Allow-Origin", strings.TrimSuffix(origin, "/"))
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			if origin != "" && allowed.allows(origin) {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", "600")
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
