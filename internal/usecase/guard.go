package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/metrics"
)

type GuardState string

const (
	GuardChecking        GuardState = "checking"
	GuardAuthenticated   GuardState = "authenticated"
	GuardPaymentRequired GuardState = "payment-required"
	GuardUnauthenticated GuardState = "unauthenticated"
)

const (
	LoginPath   = "/login"
	PaymentPath = "/payment"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Verification, error)
}

// Decision is the guard's verdict for one request. ClearSession asks the
// caller to drop the stored token and user before redirecting.
type Decision struct {
	State        GuardState
	Redirect     string
	ClearSession bool
}

func (d Decision) Allowed() bool {
	return d.State == GuardAuthenticated
}

type RouteGuard struct {
	verifier TokenVerifier
	logger   *slog.Logger
}

func NewRouteGuard(verifier TokenVerifier, logger *slog.Logger) *RouteGuard {
	return &RouteGuard{verifier: verifier, logger: logger.With("component", "route_guard")}
}

// Check verifies the session's token against the backend. Without a token
// no call is made. The request sits in GuardChecking until Check returns;
// the returned decision is always one of the three terminal states.
func (g *RouteGuard) Check(ctx context.Context, sess *domain.Session) Decision {
	metrics.GuardChecksInFlight.Inc()
	d := g.decide(ctx, sess)
	metrics.GuardChecksInFlight.Dec()

	metrics.GuardDecisionsTotal.WithLabelValues(string(d.State)).Inc()
	g.logger.DebugContext(ctx, "route guard settled", "from", GuardChecking, "to", d.State)
	return d
}

func (g *RouteGuard) decide(ctx context.Context, sess *domain.Session) Decision {
	if !sess.Authenticated() {
		return Decision{State: GuardUnauthenticated, Redirect: LoginPath}
	}

	v, err := g.verifier.VerifyToken(ctx, sess.Token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationIncomplete):
			return Decision{State: GuardPaymentRequired, Redirect: PaymentPath}
		case errors.Is(err, domain.ErrUnauthorized):
			g.logger.InfoContext(ctx, "token rejected")
		default:
			g.logger.WarnContext(ctx, "token verification failed", "error", err)
		}
		return Decision{State: GuardUnauthenticated, Redirect: LoginPath, ClearSession: true}
	}

	switch {
	case !v.IsValid:
		return Decision{State: GuardUnauthenticated, Redirect: LoginPath, ClearSession: true}
	case !v.Complete():
		return Decision{State: GuardPaymentRequired, Redirect: PaymentPath}
	default:
		return Decision{State: GuardAuthenticated}
	}
}
