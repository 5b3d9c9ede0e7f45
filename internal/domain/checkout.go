package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrBridgeNotReady      = errors.New("checkout is not ready yet")
	ErrWidgetUnavailable   = errors.New("checkout widget is unavailable")
	ErrUnknownPrice        = errors.New("unknown price")
	ErrTransactionNotFound = errors.New("transaction not found")
)

const (
	EventCheckoutCompleted = "checkout.completed"

	TransactionCompleted = "completed"
)

// Transaction is the billing provider's view of one checkout attempt.
type Transaction struct {
	ID             string
	Status         string
	SubscriptionID string
	CustomerID     string
}

// CheckoutEvent is what the widget's event callback delivers.
type CheckoutEvent struct {
	Name string            `json:"name"`
	Data CheckoutEventData `json:"data"`
}

type CheckoutEventData struct {
	TransactionID string          `json:"transaction_id"`
	Payment       CheckoutPayment `json:"payment"`
}

type CheckoutPayment struct {
	MethodDetails struct {
		Type string `json:"type"`
		Card *struct {
			Type  string `json:"type"`
			Last4 string `json:"last4"`
		} `json:"card"`
	} `json:"method_details"`
}

// Card extracts brand and last four digits, if the payment was by card.
func (e CheckoutEvent) Card() CardDetails {
	c := e.Data.Payment.MethodDetails.Card
	if c == nil {
		return CardDetails{}
	}
	return CardDetails{Brand: c.Type, Last4: c.Last4}
}

// Plan is a purchasable subscription price.
type Plan struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	PriceID  string `yaml:"price_id"`
	Interval string `yaml:"interval"`
	Amount   string `yaml:"amount"`
	Featured bool   `yaml:"featured"`
}

// CheckoutRequest asks the widget to present its overlay.
type CheckoutRequest struct {
	PriceID       string
	Quantity      int
	SuccessURL    string
	CustomerEmail string
	CustomData    map[string]string
	DisplayMode   string
	Theme         string
	Locale        string
}

// CheckoutLaunch is everything the payment view needs to open the overlay
// in the browser: the widget script, its client token and the options
// passed to the open call.
type CheckoutLaunch struct {
	ScriptURL   string          `json:"scriptUrl"`
	ClientToken string          `json:"clientToken"`
	Environment string          `json:"environment"`
	Options     json.RawMessage `json:"options"`
}

// VerificationReport describes a checkout that could not be confirmed.
type VerificationReport struct {
	Retries            int
	SubscriptionStatus SubscriptionStatus
	At                 time.Time
}
