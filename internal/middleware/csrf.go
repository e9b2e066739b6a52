// Package middleware provides HTTP middleware for the voting portal.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// AllowedOrigins should match the CORS allowed origins plus the site URL.
	AllowedOrigins []string
	Logger         *zap.Logger
}

type originSet map[string]struct{}

func newOriginSet(origins []string) originSet {
	set := make(originSet, len(origins))
	for _, origin := range origins {
		if origin = normalizeOrigin(origin); origin != "" {
			set[origin] = struct{}{}
		}
	}
	return set
}

func (s originSet) allows(origin string) bool {
	_, ok := s[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// CSRF rejects state-changing requests whose Origin (or, failing that,
// Referer) is not an allowed origin. The session cookie is sent by browsers
// on every request, so cross-site form posts must be stopped here.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	allowed := newOriginSet(cfg.AllowedOrigins)
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reject := func(c *gin.Context, reason, source string) {
		logger.Warn("csrf check failed",
			zap.String("reason", reason),
			zap.String("source", source),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "CSRF validation failed: " + reason,
		})
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" {
			if !allowed.allows(origin) {
				reject(c, "invalid origin", origin)
				return
			}
			c.Next()
			return
		}

		if referer := c.GetHeader("Referer"); referer != "" {
			if !allowed.allows(refererOrigin(referer)) {
				reject(c, "invalid referer", referer)
				return
			}
			c.Next()
			return
		}

		reject(c, "missing origin", "")
	}
}

// refererOrigin returns scheme://host[:port] of a Referer URL.
func refererOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
