package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/metrics"
	"github.com/robfig/cron/v3"
)

type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// Sweeper deletes expired sessions on a cron schedule.
type Sweeper struct {
	repo     ExpiredSessionDeleter
	schedule cron.Schedule
	expr     string
	logger   *slog.Logger
	now      func() time.Time
}

func NewSweeper(repo ExpiredSessionDeleter, expr string, logger *slog.Logger) (*Sweeper, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", expr, err)
	}
	return &Sweeper{
		repo:     repo,
		schedule: sched,
		expr:     expr,
		logger:   logger.With("component", "session_sweeper"),
		now:      time.Now,
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("session sweeper started", "schedule", s.expr)

	for {
		wait := s.schedule.Next(s.now()).Sub(s.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("session sweeper shut down")
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns how many sessions were removed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	start := time.Now()
	n, err := s.repo.DeleteExpired(ctx, s.now())
	metrics.SessionSweepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("sweep expired sessions", "error", err)
		return 0
	}
	metrics.SessionsSweptTotal.Add(float64(n))
	if n > 0 {
		s.logger.Info("swept expired sessions", "count", n)
	}
	return n
}
