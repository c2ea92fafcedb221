package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/config"
	"github.com/propdesk/propdesk/internal/core/session"
)

const (
	ContextSessionID = "session_id"
	ContextSession   = "session"
)

type SessionMiddleware struct {
	sessions *session.Service
	cfg      config.SessionConfig
	logger   *slog.Logger
}

func NewSessionMiddleware(sessions *session.Service, cfg config.SessionConfig, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, cfg: cfg, logger: logger}
}

// Attach resolves the session cookie, issuing one on first contact, and
// loads the stored session values into the context.
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(m.cfg.CookieName)

		sid, value, fresh, err := m.sessions.Resolve(cookie)
		if err != nil {
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
			return
		}
		if fresh {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(m.cfg.CookieName, value, int(m.cfg.ExpirationDuration().Seconds()), "/", "", m.cfg.Secure, true)
		}

		values, err := m.sessions.Current(c.Request.Context(), sid)
		if err != nil {
			// An unreachable store reads as signed out.
			m.logger.Warn("session store unavailable", "error", err)
			values = session.Values{}
		}

		c.Set(ContextSessionID, sid)
		c.Set(ContextSession, values)
		c.Next()
	}
}

// RequireToken rejects requests whose session carries no API token.
func (m *SessionMiddleware) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).LoggedIn() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func GetSessionID(c *gin.Context) string {
	val, exists := c.Get(ContextSessionID)
	if !exists {
		return ""
	}
	if sid, ok := val.(string); ok {
		return sid
	}
	return ""
}

func GetSession(c *gin.Context) session.Values {
	val, exists := c.Get(ContextSession)
	if !exists {
		return session.Values{}
	}
	if v, ok := val.(session.Values); ok {
		return v
	}
	return session.Values{}
}

func SetSession(c *gin.Context, v session.Values) {
	c.Set(ContextSession, v)
}
