package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/metrics"
)

type ConfirmState string

const (
	ConfirmChecking     ConfirmState = "checking"
	ConfirmSuccess      ConfirmState = "success"
	ConfirmAuthRequired ConfirmState = "auth_required"
	ConfirmFailed       ConfirmState = "failed"
	ConfirmError        ConfirmState = "error"
	ConfirmCancelled    ConfirmState = "cancelled"
)

const (
	MsgAuthRequired       = "Authentication required"
	MsgVerificationFailed = "Payment verification failed. Please contact support."
	MsgUnexpected         = "An unexpected error occurred. Please contact support."

	PreferencesPath = "/preferences"
)

const (
	endpointVerify = "verify-subscription"
	endpointStatus = "status"
)

type SubscriptionChecker interface {
	VerifySubscription(ctx context.Context, token string) (*backend.SubscriptionCheck, error)
	PaymentStatus(ctx context.Context, token string) (*backend.SubscriptionCheck, error)
}

// SupportNotifier is told when a payment could not be confirmed.
type SupportNotifier interface {
	PaymentVerificationFailed(ctx context.Context, report domain.VerificationReport) error
}

type ConfirmEventKind string

const (
	ConfirmEventAttempt  ConfirmEventKind = "attempt"
	ConfirmEventResult   ConfirmEventKind = "result"
	ConfirmEventRedirect ConfirmEventKind = "redirect"
)

// ConfirmEvent is one step of progress reported while Run works.
type ConfirmEvent struct {
	Kind               ConfirmEventKind          `json:"kind"`
	Attempt            int                       `json:"attempt,omitempty"`
	Endpoint           string                    `json:"endpoint,omitempty"`
	State              ConfirmState              `json:"state,omitempty"`
	Message            string                    `json:"message,omitempty"`
	SubscriptionStatus domain.SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	Redirect           string                    `json:"redirect,omitempty"`
}

type ConfirmResult struct {
	State              ConfirmState
	Message            string
	SubscriptionStatus domain.SubscriptionStatus
	Retries            int
	Redirect           string
}

type PollerConfig struct {
	MaxRetries    int
	RetryDelay    time.Duration
	RedirectDelay time.Duration
}

// ConfirmationPoller checks with the backend that a just-finished checkout
// turned into a paid subscription. Calls are serial; there is never more
// than one in flight.
type ConfirmationPoller struct {
	checker  SubscriptionChecker
	notifier SupportNotifier
	cfg      PollerConfig
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewConfirmationPoller(checker SubscriptionChecker, notifier SupportNotifier, cfg PollerConfig, logger *slog.Logger) *ConfirmationPoller {
	return &ConfirmationPoller{
		checker:  checker,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("component", "confirmation_poller"),
		sleep:    sleepCtx,
	}
}

// Run drives one confirmation to a terminal state. observe may be nil.
func (p *ConfirmationPoller) Run(ctx context.Context, token string, observe func(ConfirmEvent)) (res ConfirmResult) {
	if observe == nil {
		observe = func(ConfirmEvent) {}
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "confirmation panicked", "panic", r)
			res = p.finish(ctx, observe, ConfirmResult{State: ConfirmError, Message: MsgUnexpected, Retries: res.Retries})
		}
	}()

	if token == "" {
		return p.finish(ctx, observe, ConfirmResult{State: ConfirmAuthRequired, Message: MsgAuthRequired})
	}

	for attempt := 1; ; attempt++ {
		observe(ConfirmEvent{Kind: ConfirmEventAttempt, Attempt: attempt, Endpoint: endpointVerify})
		check, err := p.checker.VerifySubscription(ctx, token)
		if err == nil && check.Success && check.IsPay {
			metrics.ConfirmationAttemptsTotal.WithLabelValues(endpointVerify, "paid").Inc()
			return p.succeed(ctx, observe, check.SubscriptionStatus, res.Retries)
		}
		if err != nil {
			metrics.ConfirmationAttemptsTotal.WithLabelValues(endpointVerify, "error").Inc()
			p.logger.WarnContext(ctx, "verify subscription failed", "attempt", attempt, "error", err)
		} else {
			metrics.ConfirmationAttemptsTotal.WithLabelValues(endpointVerify, "unpaid").Inc()
		}

		if res.Retries >= p.cfg.MaxRetries {
			break
		}
		res.Retries++
		if err := p.sleep(ctx, p.cfg.RetryDelay); err != nil {
			return p.cancelled(ctx, res.Retries)
		}
	}

	observe(ConfirmEvent{Kind: ConfirmEventAttempt, Attempt: res.Retries + 2, Endpoint: endpointStatus})
	status, err := p.checker.PaymentStatus(ctx, token)
	if err != nil {
		metrics.ConfirmationAttemptsTotal.WithLabelValues(endpointStatus, "error").Inc()
		if ctx.Err() != nil {
			return p.cancelled(ctx, res.Retries)
		}
		p.logger.ErrorContext(ctx, "payment status failed", "error", err)
		return p.finish(ctx, observe, ConfirmResult{State: ConfirmError, Message: MsgUnexpected, Retries: res.Retries})
	}
	if status.IsPay {
		metrics.ConfirmationAttemptsTotal.WithLabelValues(endpointStatus, "paid").Inc()
		return p.succeed(ctx, observe, status.SubscriptionStatus, res.Retries)
	}
	metrics.ConfirmationAttemptsTotal.WithLabelValues(endpointStatus, "unpaid").Inc()

	failed := p.finish(ctx, observe, ConfirmResult{
		State:              ConfirmFailed,
		Message:            MsgVerificationFailed,
		SubscriptionStatus: status.SubscriptionStatus,
		Retries:            res.Retries,
	})
	p.notifySupport(ctx, failed)
	return failed
}

func (p *ConfirmationPoller) succeed(ctx context.Context, observe func(ConfirmEvent), status domain.SubscriptionStatus, retries int) ConfirmResult {
	res := p.finish(ctx, observe, ConfirmResult{State: ConfirmSuccess, SubscriptionStatus: status, Retries: retries})
	if err := p.sleep(ctx, p.cfg.RedirectDelay); err != nil {
		p.logger.InfoContext(ctx, "confirmation abandoned before redirect")
		return res
	}
	res.Redirect = PreferencesPath
	observe(ConfirmEvent{Kind: ConfirmEventRedirect, Redirect: res.Redirect})
	return res
}

func (p *ConfirmationPoller) cancelled(ctx context.Context, retries int) ConfirmResult {
	p.logger.InfoContext(ctx, "confirmation cancelled", "retries", retries)
	metrics.ConfirmationOutcomesTotal.WithLabelValues(string(ConfirmCancelled)).Inc()
	return ConfirmResult{State: ConfirmCancelled, Retries: retries}
}

func (p *ConfirmationPoller) finish(ctx context.Context, observe func(ConfirmEvent), res ConfirmResult) ConfirmResult {
	metrics.ConfirmationOutcomesTotal.WithLabelValues(string(res.State)).Inc()
	metrics.ConfirmationRetries.Observe(float64(res.Retries))
	p.logger.InfoContext(ctx, "confirmation finished", "state", res.State, "retries", res.Retries)
	observe(ConfirmEvent{
		Kind:               ConfirmEventResult,
		State:              res.State,
		Message:            res.Message,
		SubscriptionStatus: res.SubscriptionStatus,
	})
	return res
}

func (p *ConfirmationPoller) notifySupport(ctx context.Context, res ConfirmResult) {
	if p.notifier == nil {
		return
	}
	report := domain.VerificationReport{
		Retries:            res.Retries,
		SubscriptionStatus: res.SubscriptionStatus,
		At:                 time.Now().UTC(),
	}
	if err := p.notifier.PaymentVerificationFailed(ctx, report); err != nil {
		p.logger.ErrorContext(ctx, "notify support failed", "error", fmt.Errorf("payment verification: %w", err))
	}
}
