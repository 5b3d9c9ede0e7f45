package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/domain"
)

type AccountBackend interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResult, error)
	Register(ctx context.Context, in backend.RegisterInput) (*backend.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, resetToken string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
	DeleteAccount(ctx context.Context, token string) error
	Preferences(ctx context.Context, token string) (*domain.Preferences, error)
	UpdatePreferences(ctx context.Context, token string, prefs domain.Preferences) (*domain.Preferences, error)
	PaymentStatus(ctx context.Context, token string) (*backend.SubscriptionCheck, error)
	Contact(ctx context.Context, msg backend.ContactMessage) error
}

type AccountUsecase struct {
	api AccountBackend
}

func NewAccountUsecase(api AccountBackend) *AccountUsecase {
	return &AccountUsecase{api: api}
}

func statusOf(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func (u *AccountUsecase) Login(ctx context.Context, email, password string) (*backend.AuthResult, error) {
	res, err := u.api.Login(ctx, email, password)
	if err != nil {
		switch statusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	return res, nil
}

func (u *AccountUsecase) Register(ctx context.Context, in backend.RegisterInput) (*backend.AuthResult, error) {
	res, err := u.api.Register(ctx, in)
	if err != nil {
		if statusOf(err) == http.StatusConflict {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return res, nil
}

// ForgotPassword never reveals whether the address is registered.
func (u *AccountUsecase) ForgotPassword(ctx context.Context, email string) error {
	if err := u.api.ForgotPassword(ctx, email); err != nil && statusOf(err) != http.StatusNotFound {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

func (u *AccountUsecase) ValidateResetToken(ctx context.Context, resetToken string) error {
	if err := u.api.ValidateResetToken(ctx, resetToken); err != nil {
		if s := statusOf(err); s >= 400 && s < 500 {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("validate reset token: %w", err)
	}
	return nil
}

func (u *AccountUsecase) ResetPassword(ctx context.Context, resetToken, password string) error {
	if err := u.api.ResetPassword(ctx, resetToken, password); err != nil {
		if s := statusOf(err); s >= 400 && s < 500 {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// Dashboard is what the preferences view shows. The subscription status is
// fetched fresh on every call.
type Dashboard struct {
	Preferences        domain.Preferences
	SubscriptionStatus domain.SubscriptionStatus
}

func (u *AccountUsecase) Dashboard(ctx context.Context, token string) (*Dashboard, error) {
	prefs, err := u.api.Preferences(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	d := &Dashboard{Preferences: *prefs, SubscriptionStatus: domain.SubscriptionNone}

	status, err := u.api.PaymentStatus(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load subscription status: %w", err)
	}
	if status.SubscriptionStatus.Valid() {
		d.SubscriptionStatus = status.SubscriptionStatus
	}
	return d, nil
}

func (u *AccountUsecase) SavePreferences(ctx context.Context, token string, prefs domain.Preferences) (*domain.Preferences, error) {
	saved, err := u.api.UpdatePreferences(ctx, token, prefs)
	if err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return saved, nil
}

func (u *AccountUsecase) DeleteAccount(ctx context.Context, token string) error {
	if err := u.api.DeleteAccount(ctx, token); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (u *AccountUsecase) Contact(ctx context.Context, msg backend.ContactMessage) error {
	if err := u.api.Contact(ctx, msg); err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}
	return nil
}
