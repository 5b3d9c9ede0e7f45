package paddle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
)

var (
	ErrScriptUnavailable = errors.New("paddle.js could not be loaded")
	ErrTokenEnvironment  = errors.New("client token does not match the paddle environment")
	ErrNotInitialized    = errors.New("paddle overlay is not initialized")
)

// Overlay is the server side of the Paddle.js overlay. It confirms the
// script is reachable, checks the client token, and turns a checkout
// request into the options the browser passes to Paddle.Checkout.open.
type Overlay struct {
	scriptURL   string
	environment string
	http        *http.Client

	mu          sync.RWMutex
	loaded      bool
	clientToken string
}

func NewOverlay(scriptURL, environment string) *Overlay {
	return &Overlay{
		scriptURL:   scriptURL,
		environment: environment,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Load fetches the script once to make sure the CDN serves it.
func (o *Overlay) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.scriptURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScriptUnavailable, err)
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScriptUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrScriptUnavailable, resp.StatusCode)
	}

	o.mu.Lock()
	o.loaded = true
	o.mu.Unlock()
	return nil
}

// Initialize accepts the client-side token. Sandbox tokens start with
// "test_", production tokens with "live_".
func (o *Overlay) Initialize(_ context.Context, clientToken string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.loaded {
		return ErrScriptUnavailable
	}
	want := "test_"
	if o.environment == "production" {
		want = "live_"
	}
	if !strings.HasPrefix(clientToken, want) {
		return ErrTokenEnvironment
	}
	o.clientToken = clientToken
	return nil
}

type checkoutItem struct {
	PriceID  string `json:"priceId"`
	Quantity int    `json:"quantity"`
}

type checkoutSettings struct {
	DisplayMode string `json:"displayMode"`
	Theme       string `json:"theme,omitempty"`
	Locale      string `json:"locale,omitempty"`
	SuccessURL  string `json:"successUrl"`
}

type checkoutOptions struct {
	Items      []checkoutItem    `json:"items"`
	Customer   map[string]string `json:"customer,omitempty"`
	CustomData map[string]string `json:"customData,omitempty"`
	Settings   checkoutSettings  `json:"settings"`
}

// Open builds the launch payload for one overlay presentation.
func (o *Overlay) Open(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutLaunch, error) {
	o.mu.RLock()
	token := o.clientToken
	o.mu.RUnlock()
	if token == "" {
		return nil, ErrNotInitialized
	}

	opts := checkoutOptions{
		Items:      []checkoutItem{{PriceID: req.PriceID, Quantity: req.Quantity}},
		CustomData: req.CustomData,
		Settings: checkoutSettings{
			DisplayMode: req.DisplayMode,
			Theme:       req.Theme,
			Locale:      req.Locale,
			SuccessURL:  req.SuccessURL,
		},
	}
	if req.CustomerEmail != "" {
		opts.Customer = map[string]string{"email": req.CustomerEmail}
	}

	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode checkout options: %w", err)
	}

	return &domain.CheckoutLaunch{
		ScriptURL:   o.scriptURL,
		ClientToken: token,
		Environment: o.environment,
		Options:     raw,
	}, nil
}
