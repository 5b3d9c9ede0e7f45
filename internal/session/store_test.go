package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/infrastructure/memory"
	"github.com/ErlanBelekov/quote-web/internal/session"
)

const testKey = "session-test-secret-32-characters!!"

func newStore() (*session.Store, *memory.SessionRepository) {
	repo := memory.NewSessionRepository()
	return session.NewStore(repo, []byte(testKey), time.Hour, false), repo
}

// requestWithCookies replays the cookies set on w onto a new request.
func requestWithCookies(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestLoad_NoCookie_ReturnsErrNoSession(t *testing.T) {
	store, _ := newStore()

	_, err := store.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
}

func TestStartThenLoad_ReturnsTokenAndUser(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	w := httptest.NewRecorder()
	user := &domain.User{ID: "u1", Email: "a@example.com"}
	if _, err := store.Start(ctx, w, nil, "tok-1", user); err != nil {
		t.Fatalf("start: %v", err)
	}

	sess, err := store.Load(ctx, requestWithCookies(w))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.Token != "tok-1" {
		t.Errorf("token = %q, want tok-1", sess.Token)
	}
	if sess.User == nil || sess.User.Email != "a@example.com" {
		t.Errorf("user = %+v, want a@example.com", sess.User)
	}
	if sess.Version != domain.SessionSchemaVersion {
		t.Errorf("version = %d, want %d", sess.Version, domain.SessionSchemaVersion)
	}
}

func TestLoad_TamperedCookie_ReturnsErrNoSession(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	w := httptest.NewRecorder()
	if _, err := store.Start(ctx, w, nil, "tok", &domain.User{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: w.Result().Cookies()[0].Value + "x"})

	if _, err := store.Load(ctx, req); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
}

func TestLoad_OtherSchemaVersion_IsDiscarded(t *testing.T) {
	store, repo := newStore()
	ctx := context.Background()

	w := httptest.NewRecorder()
	sess, err := store.Start(ctx, w, nil, "tok", &domain.User{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	stale := *sess
	stale.Version = domain.SessionSchemaVersion + 1
	_ = repo.Save(ctx, &stale)

	if _, err := store.Load(ctx, requestWithCookies(w)); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
	if _, err := repo.Get(ctx, sess.ID); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("stale record still stored: %v", err)
	}
}

func TestClear_RemovesTokenAndUserTogether(t *testing.T) {
	store, repo := newStore()
	ctx := context.Background()

	w := httptest.NewRecorder()
	sess, err := store.Start(ctx, w, nil, "tok", &domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	cw := httptest.NewRecorder()
	if err := store.Clear(ctx, cw, sess); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if sess.Token != "" || sess.User != nil {
		t.Errorf("in-memory session not cleared: %+v", sess)
	}
	if _, err := repo.Get(ctx, sess.ID); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("record still stored: %v", err)
	}
	cookies := cw.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookie not expired: %+v", cookies)
	}
}

func TestStart_DropsPreviousSession(t *testing.T) {
	store, repo := newStore()
	ctx := context.Background()

	prev, err := store.Start(ctx, httptest.NewRecorder(), nil, "old", &domain.User{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	next, err := store.Start(ctx, httptest.NewRecorder(), prev, "new", &domain.User{})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	if next.ID == prev.ID {
		t.Fatal("expected a new session id")
	}
	if _, err := repo.Get(ctx, prev.ID); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("previous session still stored: %v", err)
	}
}
