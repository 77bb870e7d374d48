package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "storefront_session"
	// SessionIDKey is the gin context key holding the session id.
	SessionIDKey = "session_id"
)

// SessionOptions controls how the session cookie is issued.
type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

// Session ensures every request carries a storefront session id. A missing
// or malformed cookie gets a fresh id. The cookie is re-issued on each
// request so its expiry slides with activity.
func Session(opts SessionOptions) gin.HandlerFunc {
	maxAge := int(opts.TTL / time.Second)

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err == nil {
			if _, err = uuid.Parse(sessionID); err != nil {
				sessionID = ""
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sessionID, maxAge, "/", "", opts.Secure, true)
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session id set by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
