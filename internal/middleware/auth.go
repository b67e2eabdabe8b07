package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"inkwell/internal/session"
)

const (
	// SessionKey holds the request's session.Session.
	SessionKey = "session"
	// ManagerKey holds the request's *session.Manager.
	ManagerKey = "session_manager"
	// LoginPath is where anonymous writers are sent.
	LoginPath = "/api/auth/login"
)

// LoadUser restores the session from the cookie and puts it on the context.
func LoadUser(auth session.Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := session.NewManager(session.NewCookieSlot(sessions.Default(c)), auth, log)
		c.Set(ManagerKey, m)
		c.Set(SessionKey, m.Restore(c.Request.Context()))
		c.Next()
	}
}

// AuthRequired rejects anonymous requests with 401 and a pointer to login.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"type":    "AUTH_REQUIRED",
				"message": "sign in to continue",
				"login":   LoginPath,
			})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the request's session, anonymous if none was loaded.
func CurrentSession(c *gin.Context) session.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(session.Session); ok {
			return s
		}
	}
	return session.Anonymous()
}

// Manager returns the request's session manager, or nil before LoadUser.
func Manager(c *gin.Context) *session.Manager {
	if v, ok := c.Get(ManagerKey); ok {
		if m, ok := v.(*session.Manager); ok {
			return m
		}
	}
	return nil
}

// SetSession replaces the request's session after login or logout.
func SetSession(c *gin.Context, s session.Session) {
	c.Set(SessionKey, s)
}
