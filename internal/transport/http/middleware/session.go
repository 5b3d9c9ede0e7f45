package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	ctxlog "github.com/ErlanBelekov/quote-web/internal/log"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

type sessionLoader interface {
	Load(ctx context.Context, r *http.Request) (*domain.Session, error)
}

// Session resolves the browser's session once per request. A request
// without one gets an empty, unsaved session so handlers never see nil.
func Session(store sessionLoader, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "session_middleware")
	return func(c *gin.Context) {
		sess, err := store.Load(c.Request.Context(), c.Request)
		if err != nil {
			if !errors.Is(err, domain.ErrNoSession) {
				logger.ErrorContext(c.Request.Context(), "load session", "error", err)
			}
			sess = &domain.Session{}
		}
		if sess.ID != "" {
			c.Request = c.Request.WithContext(ctxlog.WithSessionID(c.Request.Context(), sess.ID))
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session Session stored on c.
func SessionFrom(c *gin.Context) *domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*domain.Session); ok {
			return sess
		}
	}
	return &domain.Session{}
}
