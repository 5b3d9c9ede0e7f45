package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/infrastructure/memory"
)

func TestSessionRepository_GetUnknown_ReturnsErrNoSession(t *testing.T) {
	repo := memory.NewSessionRepository()

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
}

func TestSessionRepository_SaveIsolatesCallerMutations(t *testing.T) {
	repo := memory.NewSessionRepository()
	ctx := context.Background()

	s := &domain.Session{ID: "s1", Token: "tok", User: &domain.User{Email: "a@example.com"}}
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.User.Email = "changed@example.com"

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.User.Email != "a@example.com" {
		t.Errorf("stored email = %q, want original", got.User.Email)
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	repo := memory.NewSessionRepository()
	ctx := context.Background()
	now := time.Now()

	_ = repo.Save(ctx, &domain.Session{ID: "old", ExpiresAt: now.Add(-time.Minute)})
	_ = repo.Save(ctx, &domain.Session{ID: "fresh", ExpiresAt: now.Add(time.Hour)})

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	if _, err := repo.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session removed: %v", err)
	}
	if _, err := repo.Get(ctx, "old"); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("old session still present: %v", err)
	}
}
