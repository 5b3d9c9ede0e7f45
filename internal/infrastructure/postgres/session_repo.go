package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, version, token, user_data, card, created_at, expires_at
		FROM sessions
		WHERE id = $1`

	var (
		s             domain.Session
		userRaw, card []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Version, &s.Token, &userRaw, &card, &s.CreatedAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if len(userRaw) > 0 {
		s.User = &domain.User{}
		if err := json.Unmarshal(userRaw, s.User); err != nil {
			return nil, fmt.Errorf("decode session user: %w", err)
		}
	}
	if len(card) > 0 {
		s.Card = &domain.CardDetails{}
		if err := json.Unmarshal(card, s.Card); err != nil {
			return nil, fmt.Errorf("decode session card: %w", err)
		}
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	userRaw, err := nullableJSON(s.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	card, err := nullableJSON(s.Card)
	if err != nil {
		return fmt.Errorf("encode session card: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (id, version, token, user_data, card, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET version    = EXCLUDED.version,
		    token      = EXCLUDED.token,
		    user_data  = EXCLUDED.user_data,
		    card       = EXCLUDED.card,
		    expires_at = EXCLUDED.expires_at`,
		s.ID, s.Version, s.Token, userRaw, card, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// nullableJSON returns nil for a nil pointer so the column stays NULL.
func nullableJSON[T any](v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
