// Package session is the single owner of browser auth state. The browser
// only holds a signed cookie naming the session; token, user record and
// cached card details live in one server-side record that is written and
// cleared as a unit.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "qw_session"

type Store struct {
	repo   repository.SessionRepository
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewStore(repo repository.SessionRepository, key []byte, ttl time.Duration, secure bool) *Store {
	return &Store{
		repo:   repo,
		key:    key,
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Load resolves the request's cookie to a session. Every way of not having
// a usable session (no cookie, bad signature, unknown id, old schema,
// expired) is reported as domain.ErrNoSession; only storage failures are
// returned as other errors.
func (s *Store) Load(ctx context.Context, r *http.Request) (*domain.Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, domain.ErrNoSession
	}

	id, err := s.parseCookie(cookie.Value)
	if err != nil {
		return nil, domain.ErrNoSession
	}

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sess.Version != domain.SessionSchemaVersion || sess.Expired(s.now()) {
		if err := s.repo.Delete(ctx, sess.ID); err != nil {
			return nil, fmt.Errorf("discard stale session: %w", err)
		}
		return nil, domain.ErrNoSession
	}

	return sess, nil
}

// Start replaces whatever session the browser had with a fresh one for the
// given credentials.
func (s *Store) Start(ctx context.Context, w http.ResponseWriter, prev *domain.Session, token string, user *domain.User) (*domain.Session, error) {
	if prev != nil && prev.ID != "" {
		if err := s.repo.Delete(ctx, prev.ID); err != nil {
			return nil, fmt.Errorf("drop previous session: %w", err)
		}
	}

	sess := &domain.Session{Token: token, User: user}
	if err := s.Save(ctx, w, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save writes the record and (re)issues the cookie. A session without an
// ID gets one.
func (s *Store) Save(ctx context.Context, w http.ResponseWriter, sess *domain.Session) error {
	now := s.now()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
		sess.CreatedAt = now
	}
	sess.Version = domain.SessionSchemaVersion
	sess.ExpiresAt = now.Add(s.ttl)

	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	value, err := s.signCookie(sess.ID, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Update rewrites the record of an existing session without touching the
// cookie. Used by flows that have no response to write to.
func (s *Store) Update(ctx context.Context, sess *domain.Session) error {
	if sess.ID == "" {
		return domain.ErrNoSession
	}
	sess.Version = domain.SessionSchemaVersion
	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Clear removes the token, user record and card details together and
// expires the cookie.
func (s *Store) Clear(ctx context.Context, w http.ResponseWriter, sess *domain.Session) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	if sess == nil || sess.ID == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	sess.Token = ""
	sess.User = nil
	sess.Card = nil
	return nil
}

func (s *Store) signCookie(id string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Store) parseCookie(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("session cookie has no id")
	}
	return claims.ID, nil
}
