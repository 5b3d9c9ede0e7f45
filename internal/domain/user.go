package domain

import "errors"

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrRegistrationIncomplete = errors.New("registration incomplete")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrEmailTaken             = errors.New("email already registered")
	ErrResetTokenInvalid      = errors.New("reset link is invalid or expired")
)

type SubscriptionStatus string

const (
	SubscriptionNone          SubscriptionStatus = "none"
	SubscriptionActive        SubscriptionStatus = "active"
	SubscriptionCancelled     SubscriptionStatus = "cancelled"
	SubscriptionPaymentFailed SubscriptionStatus = "payment_failed"
	SubscriptionPaused        SubscriptionStatus = "paused"
	SubscriptionExpired       SubscriptionStatus = "expired"
)

// Valid reports whether s is one of the statuses the backend reports.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionNone, SubscriptionActive, SubscriptionCancelled,
		SubscriptionPaymentFailed, SubscriptionPaused, SubscriptionExpired:
		return true
	}
	return false
}

// User mirrors the backend's profile record.
type User struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	SubscriptionID     string             `json:"subscriptionId,omitempty"`
	IsPay              bool               `json:"isPay"`
}

// Merge overlays the non-zero fields of src onto u. IsPay only ever moves
// from false to true here; a downgrade arrives through a full refresh.
func (u *User) Merge(src User) {
	if src.ID != "" {
		u.ID = src.ID
	}
	if src.Name != "" {
		u.Name = src.Name
	}
	if src.Email != "" {
		u.Email = src.Email
	}
	if src.SubscriptionStatus != "" {
		u.SubscriptionStatus = src.SubscriptionStatus
	}
	if src.SubscriptionID != "" {
		u.SubscriptionID = src.SubscriptionID
	}
	if src.IsPay {
		u.IsPay = true
	}
}

// Verification is the backend's answer to a token check.
// Nil pointers mean the field was absent from the response.
type Verification struct {
	IsValid              bool  `json:"isValid"`
	IsPay                *bool `json:"isPay,omitempty"`
	RegistrationComplete *bool `json:"registrationComplete,omitempty"`
}

// Complete reports whether payment and registration are both done.
// Absent fields do not count against the user.
func (v Verification) Complete() bool {
	if v.IsPay != nil && !*v.IsPay {
		return false
	}
	if v.RegistrationComplete != nil && !*v.RegistrationComplete {
		return false
	}
	return true
}

// Preferences are the delivery settings edited on the preferences view.
type Preferences struct {
	DeliveryTime string   `json:"deliveryTime"`
	Timezone     string   `json:"timezone"`
	Categories   []string `json:"categories"`
	Channel      string   `json:"channel"`
}
