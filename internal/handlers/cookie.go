package handlers

import (
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/config"
	"github.com/gin-gonic/gin"
)

// CookieHelper manages the session cookie.
type CookieHelper struct {
	config config.CookieConfig
}

// NewCookieHelper creates a new cookie helper with the given configuration.
func NewCookieHelper(config config.CookieConfig) *CookieHelper {
	return &CookieHelper{config: config}
}

// Name returns the session cookie name.
func (h *CookieHelper) Name() string {
	return h.config.Name
}

// SetSession stores the session token for ttl.
func (h *CookieHelper) SetSession(c *gin.Context, token string, ttl time.Duration) {
	h.setCookie(c, token, int(ttl.Seconds()))
}

// ClearSession expires the session cookie.
func (h *CookieHelper) ClearSession(c *gin.Context) {
	h.setCookie(c, "", -1)
}

// SessionToken returns the session token presented by the client, or "".
func (h *CookieHelper) SessionToken(c *gin.Context) string {
	token, err := c.Cookie(h.config.Name)
	if err != nil {
		return ""
	}
	return token
}

func (h *CookieHelper) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(h.config.SameSite)
	c.SetCookie(
		h.config.Name,
		value,
		maxAge,
		h.config.Path,
		h.config.Domain,
		h.config.Secure,
		true, // httpOnly
	)
}
