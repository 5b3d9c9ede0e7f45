package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/metrics"
)

const PaymentSuccessPath = "/payment-success"

// Widget is the provider's checkout overlay.
type Widget interface {
	Load(ctx context.Context) error
	Initialize(ctx context.Context, clientToken string) error
	Open(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutLaunch, error)
}

type TransactionLookup interface {
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

type UserDataUpdater interface {
	UpdateUserData(ctx context.Context, token string, in backend.UserDataUpdate) (*domain.User, error)
}

type SessionUpdater interface {
	Update(ctx context.Context, sess *domain.Session) error
}

type PlanCatalog interface {
	PlanByPriceID(priceID string) (domain.Plan, bool)
}

type BridgeConfig struct {
	ClientToken   string
	PublicBaseURL string
	Theme         string
	Locale        string
	RedirectDelay time.Duration
}

// CheckoutBridge connects the payment view to the provider widget and
// reacts to the widget's completion event.
type CheckoutBridge struct {
	widget       Widget
	transactions TransactionLookup
	users        UserDataUpdater
	sessions     SessionUpdater
	plans        PlanCatalog
	cfg          BridgeConfig
	logger       *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	mu      sync.Mutex
	started bool
	ready   bool
	initErr error
}

func NewCheckoutBridge(
	widget Widget,
	transactions TransactionLookup,
	users UserDataUpdater,
	sessions SessionUpdater,
	plans PlanCatalog,
	cfg BridgeConfig,
	logger *slog.Logger,
) *CheckoutBridge {
	return &CheckoutBridge{
		widget:       widget,
		transactions: transactions,
		users:        users,
		sessions:     sessions,
		plans:        plans,
		cfg:          cfg,
		logger:       logger.With("component", "checkout_bridge"),
		sleep:        sleepCtx,
		now:          time.Now,
	}
}

// Init loads and initializes the widget. It runs at most once per process;
// a failure is kept and reported by every later call.
func (b *CheckoutBridge) Init(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return b.initErr
	}
	b.started = true

	if b.widget == nil {
		b.initErr = domain.ErrWidgetUnavailable
		return b.initErr
	}
	if err := b.widget.Load(ctx); err != nil {
		b.initErr = fmt.Errorf("load checkout widget: %w", err)
		b.logger.ErrorContext(ctx, "checkout widget failed to load", "error", err)
		return b.initErr
	}
	if err := b.widget.Initialize(ctx, b.cfg.ClientToken); err != nil {
		b.initErr = fmt.Errorf("initialize checkout widget: %w", err)
		b.logger.ErrorContext(ctx, "checkout widget failed to initialize", "error", err)
		return b.initErr
	}

	b.ready = true
	metrics.CheckoutBridgeReady.Set(1)
	b.logger.InfoContext(ctx, "checkout widget ready")
	return nil
}

// Status reports readiness and, once Init has failed, the terminal error.
func (b *CheckoutBridge) Status() (ready bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready, b.initErr
}

// OpenCheckout asks the widget to present its overlay for priceID. A bridge
// is only ready once its widget loaded, so a missing widget surfaces as
// ErrBridgeNotReady joined with the Init failure.
func (b *CheckoutBridge) OpenCheckout(ctx context.Context, priceID string, user *domain.User) (*domain.CheckoutLaunch, error) {
	ready, initErr := b.Status()
	if !ready {
		metrics.CheckoutOpensTotal.WithLabelValues("not_ready").Inc()
		if initErr != nil {
			return nil, errors.Join(domain.ErrBridgeNotReady, initErr)
		}
		return nil, domain.ErrBridgeNotReady
	}
	if _, ok := b.plans.PlanByPriceID(priceID); !ok {
		metrics.CheckoutOpensTotal.WithLabelValues("unknown_price").Inc()
		return nil, domain.ErrUnknownPrice
	}

	req := domain.CheckoutRequest{
		PriceID:     priceID,
		Quantity:    1,
		SuccessURL:  b.successURL(),
		DisplayMode: "overlay",
		Theme:       b.cfg.Theme,
		Locale:      b.cfg.Locale,
	}
	if user != nil {
		req.CustomerEmail = user.Email
		req.CustomData = map[string]string{"userId": user.ID, "name": user.Name}
	}

	launch, err := b.widget.Open(ctx, req)
	if err != nil {
		metrics.CheckoutOpensTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("open checkout: %w", err)
	}
	metrics.CheckoutOpensTotal.WithLabelValues("opened").Inc()
	return launch, nil
}

func (b *CheckoutBridge) successURL() string {
	return b.cfg.PublicBaseURL + PaymentSuccessPath + "?t=" + strconv.FormatInt(b.now().UnixMilli(), 10)
}

// HandleEvent reacts to one widget event. It returns the path the browser
// should be sent to, or "" when the event needs no navigation. A cancelled
// ctx suppresses the redirect.
func (b *CheckoutBridge) HandleEvent(ctx context.Context, sess *domain.Session, evt domain.CheckoutEvent) (string, error) {
	if evt.Name != domain.EventCheckoutCompleted {
		metrics.CheckoutEventsTotal.WithLabelValues("ignored").Inc()
		return "", nil
	}

	txID := evt.Data.TransactionID
	card := evt.Card()
	if txID == "" {
		metrics.CheckoutEventsTotal.WithLabelValues("missing_transaction").Inc()
		b.logger.WarnContext(ctx, "checkout completed without a transaction id")
		return "", nil
	}
	log := b.logger.With("transaction_id", txID)

	tx, err := b.transactions.GetTransaction(ctx, txID)
	switch {
	case err != nil:
		metrics.CheckoutEventsTotal.WithLabelValues("lookup_failed").Inc()
		log.WarnContext(ctx, "transaction lookup failed", "error", err)
	case tx.Status != domain.TransactionCompleted:
		metrics.CheckoutEventsTotal.WithLabelValues("not_completed").Inc()
		log.InfoContext(ctx, "transaction not completed yet", "status", tx.Status)
	case tx.SubscriptionID == "":
		metrics.CheckoutEventsTotal.WithLabelValues("no_subscription").Inc()
		log.InfoContext(ctx, "completed transaction carries no subscription")
	default:
		b.recordSubscription(ctx, log, sess, tx, card)
		metrics.CheckoutEventsTotal.WithLabelValues("recorded").Inc()
	}

	if err := b.sleep(ctx, b.cfg.RedirectDelay); err != nil {
		return "", err
	}
	return successRedirect(txID, card), nil
}

// recordSubscription tells the backend about the new subscription and
// caches the result in the session. Failures are logged only.
func (b *CheckoutBridge) recordSubscription(ctx context.Context, log *slog.Logger, sess *domain.Session, tx *domain.Transaction, card domain.CardDetails) {
	if !sess.Authenticated() {
		log.WarnContext(ctx, "no session token to record subscription with")
		return
	}

	updated, err := b.users.UpdateUserData(ctx, sess.Token, backend.UserDataUpdate{
		SubscriptionID:     tx.SubscriptionID,
		SubscriptionStatus: string(domain.SubscriptionActive),
		TransactionID:      tx.ID,
		CardBrand:          card.Brand,
		CardLast4:          card.Last4,
	})
	if err != nil {
		log.ErrorContext(ctx, "update user data failed", "error", err)
		return
	}

	if sess.User == nil {
		sess.User = &domain.User{}
	}
	sess.User.Merge(*updated)
	if card != (domain.CardDetails{}) {
		c := card
		sess.Card = &c
	}
	if err := b.sessions.Update(ctx, sess); err != nil {
		log.ErrorContext(ctx, "persist session after checkout failed", "error", err)
	}
}

func successRedirect(txID string, card domain.CardDetails) string {
	q := url.Values{}
	q.Set("transaction_id", txID)
	if card.Brand != "" {
		q.Set("card_brand", card.Brand)
	}
	if card.Last4 != "" {
		q.Set("card_last4", card.Last4)
	}
	return PaymentSuccessPath + "?" + q.Encode()
}
