package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ErlanBelekov/quote-web/internal/domain"
)

// AuthResult is what login and signup hand back.
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Timezone string `json:"timezone,omitempty"`
}

// VerifyToken asks the backend whether token is still valid and whether the
// account finished registration and payment.
func (c *Client) VerifyToken(ctx context.Context, token string) (*domain.Verification, error) {
	var v domain.Verification
	if err := c.do(ctx, http.MethodGet, "/auth/verify", "/auth/verify", token, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	in := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/quotes/signup", "/quotes/signup", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	in := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/forgot-password", "/forgot-password", "", in, nil)
}

func (c *Client) ValidateResetToken(ctx context.Context, resetToken string) error {
	path := "/reset-password/validate/" + url.PathEscape(resetToken)
	return c.do(ctx, http.MethodGet, "/reset-password/validate/:token", path, "", nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	in := map[string]string{"token": resetToken, "password": password}
	return c.do(ctx, http.MethodPost, "/reset-password", "/reset-password", "", in, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/delete-account", "/auth/delete-account", token, nil, nil)
}
