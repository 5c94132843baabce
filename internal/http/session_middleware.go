package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"login-session/internal/domain"
	"login-session/internal/service"
)

const sessionContextKey = "auth_session"

// SessionMiddleware resuelve la cookie de sesion de cada request.
type SessionMiddleware struct {
	logger   *zap.Logger
	resolver *service.SessionResolver
	guard    *service.AnonymousGuard
	home     string
}

func NewSessionMiddleware(logger *zap.Logger, resolver *service.SessionResolver, home string) *SessionMiddleware {
	if home == "" {
		home = "/"
	}
	return &SessionMiddleware{
		logger:   logger,
		resolver: resolver,
		guard:    service.NewAnonymousGuard(resolver),
		home:     home,
	}
}

// RequireAnonymous redirige a home a quien ya tiene una sesion viva.
// La redireccion va sin body.
func (m *SessionMiddleware) RequireAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := m.guard.RequireAnonymous(c.Request.Context(), c.GetHeader("Cookie"))
		if err != nil {
			m.logger.Error("anonymous guard failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if decision == service.GuardRedirect {
			c.Header("Location", m.home)
			c.AbortWithStatus(http.StatusFound)
			return
		}
		c.Next()
	}
}

// RequireSession exige una sesion viva y la guarda en el contexto.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.resolver.Current(c.Request.Context(), c.GetHeader("Cookie"))
		if err != nil {
			m.logger.Error("session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Set(sessionContextKey, *session)
		c.Next()
	}
}

// GetSession obtiene la sesion guardada por RequireSession.
func GetSession(c *gin.Context) (domain.Session, bool) {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return domain.Session{}, false
	}
	session, ok := val.(domain.Session)
	return session, ok
}
