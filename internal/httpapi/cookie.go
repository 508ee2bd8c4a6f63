package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/auth"
)

const (
	// Cookie names
	MailCookie    = "Mail"
	AccessCookie  = "Access"
	RefreshCookie = "Refresh"
)

// CookieHelper manages the HTTP-only credential cookies.
type CookieHelper struct {
	secure bool
}

func NewCookieHelper(secure bool) *CookieHelper {
	return &CookieHelper{secure: secure}
}

// SetMail hands out the mail token of a pending confirmation.
func (h *CookieHelper) SetMail(c *gin.Context, token string, ttl time.Duration) {
	h.setCookie(c, MailCookie, token, int(ttl.Seconds()))
}

// SetSession sets both access and refresh cookies.
func (h *CookieHelper) SetSession(c *gin.Context, access, refresh string, accessTTL, refreshTTL time.Duration) {
	h.setCookie(c, AccessCookie, access, int(accessTTL.Seconds()))
	h.setCookie(c, RefreshCookie, refresh, int(refreshTTL.Seconds()))
}

// SetAccess replaces the access cookie after a silent refresh.
func (h *CookieHelper) SetAccess(c *gin.Context, access string, ttl time.Duration) {
	h.setCookie(c, AccessCookie, access, int(ttl.Seconds()))
}

// ClearSession removes both session cookies.
func (h *CookieHelper) ClearSession(c *gin.Context) {
	h.setCookie(c, AccessCookie, "", -1)
	h.setCookie(c, RefreshCookie, "", -1)
}

func (h *CookieHelper) ClearMail(c *gin.Context) {
	h.setCookie(c, MailCookie, "", -1)
}

// Credentials reads the session cookies; missing ones are empty.
func (h *CookieHelper) Credentials(c *gin.Context) auth.Credentials {
	return auth.Credentials{Access: cookie(c, AccessCookie), Refresh: cookie(c, RefreshCookie)}
}

func (h *CookieHelper) MailToken(c *gin.Context) string {
	return cookie(c, MailCookie)
}

func cookie(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}

func (h *CookieHelper) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		name,
		value,
		maxAge,
		"/",
		"",
		h.secure,
		true, // httpOnly
	)
}
