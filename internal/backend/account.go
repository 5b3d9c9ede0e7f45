package backend

import (
	"context"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/domain"
)

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (c *Client) Preferences(ctx context.Context, token string) (*domain.Preferences, error) {
	var p domain.Preferences
	if err := c.do(ctx, http.MethodGet, "/auth/preferences", "/auth/preferences", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, token string, prefs domain.Preferences) (*domain.Preferences, error) {
	var p domain.Preferences
	if err := c.do(ctx, http.MethodPut, "/auth/preferences", "/auth/preferences", token, prefs, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Contact(ctx context.Context, msg ContactMessage) error {
	return c.do(ctx, http.MethodPost, "/contact/", "/contact/", "", msg, nil)
}
