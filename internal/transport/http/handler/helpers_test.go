package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ErlanBelekov/quote-web/internal/content"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/ErlanBelekov/quote-web/internal/views"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticLoader struct {
	sess *domain.Session
}

func (l staticLoader) Load(context.Context, *http.Request) (*domain.Session, error) {
	if l.sess == nil {
		return nil, domain.ErrNoSession
	}
	return l.sess, nil
}

// fakeSessions records Start and Clear calls.
type fakeSessions struct {
	started []string
	cleared int
	err     error
}

func (f *fakeSessions) Start(_ context.Context, _ http.ResponseWriter, _ *domain.Session, token string, user *domain.User) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = append(f.started, token)
	return &domain.Session{ID: "new", Token: token, User: user}, nil
}

func (f *fakeSessions) Clear(context.Context, http.ResponseWriter, *domain.Session) error {
	f.cleared++
	return nil
}

// newTestEngine wires templates and a fixed session; register routes on
// the returned engine.
func newTestEngine(t *testing.T, sess *domain.Session) *gin.Engine {
	t.Helper()
	tmpl, err := views.Parse()
	if err != nil {
		t.Fatalf("parse views: %v", err)
	}
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.Session(staticLoader{sess: sess}, discardLogger()))
	return r
}

func testCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	c, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	return c
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}
