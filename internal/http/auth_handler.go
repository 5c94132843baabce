package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"login-session/internal/domain"
	"login-session/internal/service"
)

// AuthHandler mantiene dependencias para login, logout y sesion actual.
type AuthHandler struct {
	logger   *zap.Logger
	login    *service.LoginService
	limiter  service.LoginRateLimiter
	redirect SafeRedirect
}

// NewAuthHandler crea un AuthHandler. limiter puede ser nil.
func NewAuthHandler(
	logger *zap.Logger,
	login *service.LoginService,
	limiter service.LoginRateLimiter,
	redirect SafeRedirect,
) *AuthHandler {
	if redirect == nil {
		redirect = LocalRedirect{Home: "/"}
	}
	return &AuthHandler{
		logger:   logger,
		login:    login,
		limiter:  limiter,
		redirect: redirect,
	}
}

// LoginPage maneja GET /login. Solo llega aca quien paso RequireAnonymous.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "anonymous"})
}

// Login maneja POST /login (form-encoded).
func (h *AuthHandler) Login(c *gin.Context) {
	var form domain.LoginForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cred, errs := form.Validate()
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs, "form": form.Echo()})
		return
	}

	ctx := c.Request.Context()
	key := service.LoginAttemptKey(c.ClientIP(), cred.Username)
	if h.limiter != nil && !h.limiter.Allow(ctx, key) {
		h.logger.Warn("login throttled", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	outcome, err := h.login.Login(ctx, cred)
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		return
	}

	switch res := outcome.(type) {
	case service.LoginRejected:
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []domain.FormError{res.Error},
			"form":   form.Echo(),
		})
	case service.LoginAccepted:
		if h.limiter != nil {
			h.limiter.Reset(ctx, key)
		}
		c.Writer.Header().Add("Set-Cookie", res.SetCookie)
		c.Redirect(http.StatusSeeOther, h.redirect.Target(form.RedirectTo))
	default:
		h.logger.Error("unexpected login outcome")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
	}
}

// Logout maneja POST /logout. Responde 204 aunque no hubiera sesion.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.login.Logout(c.Request.Context(), c.GetHeader("Cookie")); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log out"})
		return
	}
	c.Writer.Header().Add("Set-Cookie", h.login.ClearCookie())
	c.Status(http.StatusNoContent)
}

// Me maneja GET /me.
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":            session.UserID,
		"session_expires_at": session.ExpiresAt,
	})
}

// Health maneja GET /health.
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
