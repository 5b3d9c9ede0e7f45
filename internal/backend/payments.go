package backend

import (
	"context"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/domain"
)

// CheckoutInfo is what the payment view needs to open checkout for the
// signed-in user.
type CheckoutInfo struct {
	PriceID string `json:"priceId"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// SubscriptionCheck is the answer of both verify-subscription and status.
type SubscriptionCheck struct {
	Success            bool                      `json:"success"`
	IsPay              bool                      `json:"isPay"`
	SubscriptionStatus domain.SubscriptionStatus `json:"subscriptionStatus"`
}

// UserDataUpdate records a finished checkout against the current user.
type UserDataUpdate struct {
	SubscriptionID     string `json:"subscriptionId"`
	SubscriptionStatus string `json:"subscriptionStatus"`
	TransactionID      string `json:"transactionId"`
	CardBrand          string `json:"cardBrand,omitempty"`
	CardLast4          string `json:"cardLast4,omitempty"`
}

type userDataResponse struct {
	Success bool        `json:"success"`
	User    domain.User `json:"user"`
}

func (c *Client) CheckoutInfo(ctx context.Context, token string) (*CheckoutInfo, error) {
	var out CheckoutInfo
	if err := c.do(ctx, http.MethodGet, "/payments/checkout-info", "/payments/checkout-info", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifySubscription(ctx context.Context, token string) (*SubscriptionCheck, error) {
	var out SubscriptionCheck
	if err := c.do(ctx, http.MethodGet, "/payments/verify-subscription", "/payments/verify-subscription", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PaymentStatus(ctx context.Context, token string) (*SubscriptionCheck, error) {
	var out SubscriptionCheck
	if err := c.do(ctx, http.MethodGet, "/payments/status", "/payments/status", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserData returns the user fields the backend changed.
func (c *Client) UpdateUserData(ctx context.Context, token string, in UserDataUpdate) (*domain.User, error) {
	var out userDataResponse
	if err := c.do(ctx, http.MethodPost, "/payments/update-user-data", "/payments/update-user-data", token, in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}
