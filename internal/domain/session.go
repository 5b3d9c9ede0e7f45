package domain

import (
	"errors"
	"time"
)

// SessionSchemaVersion is bumped whenever the stored Session shape changes.
// Records written under another version are discarded on load.
const SessionSchemaVersion = 1

var ErrNoSession = errors.New("no session")

type CardDetails struct {
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

// Session is the single record holding a browser's auth state. Token and
// User live and die together.
type Session struct {
	ID        string       `json:"id"`
	Version   int          `json:"version"`
	Token     string       `json:"token"`
	User      *User        `json:"user,omitempty"`
	Card      *CardDetails `json:"card,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
