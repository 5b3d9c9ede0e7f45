package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/gin-gonic/gin"
)

type routeGuard interface {
	Check(ctx context.Context, sess *domain.Session) usecase.Decision
}

type sessionClearer interface {
	Clear(ctx context.Context, w http.ResponseWriter, sess *domain.Session) error
}

// Guard lets a request through only when the backend confirms the session's
// token is valid and paid for. Nothing is written before the check returns.
func Guard(guard routeGuard, sessions sessionClearer, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "guard_middleware")
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		d := guard.Check(c.Request.Context(), sess)
		if d.Allowed() {
			c.Next()
			return
		}

		if d.ClearSession {
			if err := sessions.Clear(c.Request.Context(), c.Writer, sess); err != nil {
				logger.ErrorContext(c.Request.Context(), "clear session", "error", err)
			}
		}
		c.Redirect(http.StatusFound, d.Redirect)
		c.Abort()
	}
}

// RequireToken sends visitors without a stored token to the login page
// without consulting the backend.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			c.Redirect(http.StatusFound, usecase.LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
