// Package paddle talks to the Paddle Billing platform: the REST API for
// transaction lookups and the Paddle.js overlay used at checkout.
package paddle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/metrics"
)

type Client struct {
	apiBase string
	apiKey  string
	http    *http.Client
}

func NewClient(apiBase, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type transactionEnvelope struct {
	Data struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		SubscriptionID string `json:"subscription_id"`
		CustomerID     string `json:"customer_id"`
	} `json:"data"`
}

// GetTransaction fetches the provider's current view of a transaction.
func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/transactions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestDuration.WithLabelValues("/transactions/:id", "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ProviderRequestDuration.WithLabelValues("/transactions/:id", strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrTransactionNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("get transaction: %s (%d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}

	var env transactionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	return &domain.Transaction{
		ID:             env.Data.ID,
		Status:         env.Data.Status,
		SubscriptionID: env.Data.SubscriptionID,
		CustomerID:     env.Data.CustomerID,
	}, nil
}
