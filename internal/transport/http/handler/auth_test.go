package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/handler"
	"github.com/gin-gonic/gin"
)

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	login         func(ctx context.Context, email, password string) (*backend.AuthResult, error)
	register      func(ctx context.Context, in backend.RegisterInput) (*backend.AuthResult, error)
	forgot        func(ctx context.Context, email string) error
	validateReset func(ctx context.Context, token string) error
	reset         func(ctx context.Context, token, password string) error
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*backend.AuthResult, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, in backend.RegisterInput) (*backend.AuthResult, error) {
	return f.register(ctx, in)
}

func (f *fakeAuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	return f.forgot(ctx, email)
}

func (f *fakeAuthUsecase) ValidateResetToken(ctx context.Context, token string) error {
	return f.validateReset(ctx, token)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, token, password string) error {
	return f.reset(ctx, token, password)
}

func newAuthEngine(t *testing.T, uc *fakeAuthUsecase, sessions *fakeSessions) *gin.Engine {
	r := newTestEngine(t, &domain.Session{ID: "s1", Token: "old"})
	h := handler.NewAuthHandler(uc, sessions, discardLogger())
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/logout", h.Logout)
	r.POST("/forgot-password", h.Forgot)
	r.GET("/reset-password/:token", h.ResetForm)
	r.POST("/reset-password/:token", h.Reset)
	return r
}

// ---- Login ----

func TestLogin_Validation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing email", url.Values{"password": {"secret123"}}, "Email is required"},
		{"bad email", url.Values{"email": {"nope"}, "password": {"secret123"}}, "Enter a valid email address"},
		{"missing password", url.Values{"email": {"a@b.co"}}, "Password is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{}
			w := postForm(newAuthEngine(t, uc, &fakeSessions{}), "/login", tc.form)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.want) {
				t.Errorf("body missing %q", tc.want)
			}
		})
	}
}

func TestLogin_Success_StartsSessionAndRedirects(t *testing.T) {
	tests := []struct {
		name  string
		isPay bool
		want  string
	}{
		{"paid", true, "/preferences"},
		{"unpaid", false, "/payment"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{login: func(_ context.Context, email, _ string) (*backend.AuthResult, error) {
				return &backend.AuthResult{Token: "tok-1", User: domain.User{ID: "u1", Email: email, IsPay: tc.isPay}}, nil
			}}
			sessions := &fakeSessions{}
			w := postForm(newAuthEngine(t, uc, sessions), "/login", url.Values{"email": {"a@b.co"}, "password": {"secret123"}})

			if w.Code != http.StatusSeeOther || w.Header().Get("Location") != tc.want {
				t.Errorf("status = %d location = %q, want 303 %s", w.Code, w.Header().Get("Location"), tc.want)
			}
			if len(sessions.started) != 1 || sessions.started[0] != "tok-1" {
				t.Errorf("started = %v", sessions.started)
			}
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	uc := &fakeAuthUsecase{login: func(context.Context, string, string) (*backend.AuthResult, error) {
		return nil, domain.ErrInvalidCredentials
	}}
	sessions := &fakeSessions{}
	w := postForm(newAuthEngine(t, uc, sessions), "/login", url.Values{"email": {"a@b.co"}, "password": {"wrong"}})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Error("missing credentials message")
	}
	if len(sessions.started) != 0 {
		t.Error("session started after failed login")
	}
}

func TestLogin_BackendDown_GenericMessage(t *testing.T) {
	uc := &fakeAuthUsecase{login: func(context.Context, string, string) (*backend.AuthResult, error) {
		return nil, errors.New("dial tcp: refused")
	}}
	w := postForm(newAuthEngine(t, uc, &fakeSessions{}), "/login", url.Values{"email": {"a@b.co"}, "password": {"secret123"}})

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "An unexpected error occurred") {
		t.Error("missing generic message")
	}
	if strings.Contains(w.Body.String(), "dial tcp") {
		t.Error("transport detail leaked to the page")
	}
}

// ---- Register ----

func TestRegister_ShortPassword(t *testing.T) {
	w := postForm(newAuthEngine(t, &fakeAuthUsecase{}, &fakeSessions{}), "/register",
		url.Values{"name": {"Ada"}, "email": {"a@b.co"}, "password": {"short"}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Password must be at least 8 characters") {
		t.Error("missing password length message")
	}
}

func TestRegister_Success_GoesToPayment(t *testing.T) {
	var got backend.RegisterInput
	uc := &fakeAuthUsecase{register: func(_ context.Context, in backend.RegisterInput) (*backend.AuthResult, error) {
		got = in
		return &backend.AuthResult{Token: "tok-2", User: domain.User{ID: "u2"}}, nil
	}}
	sessions := &fakeSessions{}
	w := postForm(newAuthEngine(t, uc, sessions), "/register",
		url.Values{"name": {"Ada"}, "email": {"a@b.co"}, "password": {"longenough"}, "timezone": {"Europe/Riga"}})

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/payment" {
		t.Errorf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	if got.Timezone != "Europe/Riga" || got.Name != "Ada" {
		t.Errorf("register input = %+v", got)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	uc := &fakeAuthUsecase{register: func(context.Context, backend.RegisterInput) (*backend.AuthResult, error) {
		return nil, domain.ErrEmailTaken
	}}
	w := postForm(newAuthEngine(t, uc, &fakeSessions{}), "/register",
		url.Values{"name": {"Ada"}, "email": {"a@b.co"}, "password": {"longenough"}})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

// ---- Logout / password reset ----

func TestLogout_ClearsSession(t *testing.T) {
	sessions := &fakeSessions{}
	w := postForm(newAuthEngine(t, &fakeAuthUsecase{}, sessions), "/logout", nil)

	if w.Code != http.StatusSeeOther || sessions.cleared != 1 {
		t.Errorf("status = %d cleared = %d", w.Code, sessions.cleared)
	}
}

func TestForgot_AlwaysConfirms(t *testing.T) {
	uc := &fakeAuthUsecase{forgot: func(context.Context, string) error { return nil }}
	w := postForm(newAuthEngine(t, uc, &fakeSessions{}), "/forgot-password", url.Values{"email": {"a@b.co"}})

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "reset link is on its way") {
		t.Errorf("status = %d", w.Code)
	}
}

func TestResetForm_InvalidToken(t *testing.T) {
	uc := &fakeAuthUsecase{validateReset: func(context.Context, string) error { return domain.ErrResetTokenInvalid }}
	w := get(newAuthEngine(t, uc, &fakeSessions{}), "/reset-password/abc")

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid or has expired") {
		t.Errorf("status = %d", w.Code)
	}
}

func TestReset_PasswordsMustMatch(t *testing.T) {
	uc := &fakeAuthUsecase{reset: func(context.Context, string, string) error {
		t.Fatal("reset should not be called")
		return nil
	}}
	w := postForm(newAuthEngine(t, uc, &fakeSessions{}), "/reset-password/abc",
		url.Values{"password": {"newpassword"}, "confirm": {"different1"}})

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Passwords do not match") {
		t.Errorf("status = %d", w.Code)
	}
}

func TestReset_Success(t *testing.T) {
	var gotToken string
	uc := &fakeAuthUsecase{reset: func(_ context.Context, token, _ string) error {
		gotToken = token
		return nil
	}}
	w := postForm(newAuthEngine(t, uc, &fakeSessions{}), "/reset-password/abc",
		url.Values{"password": {"newpassword"}, "confirm": {"newpassword"}})

	if w.Code != http.StatusOK || gotToken != "abc" {
		t.Errorf("status = %d token = %q", w.Code, gotToken)
	}
}
