// Package backend is the gateway to the quotes backend REST API. It owns
// the wire format and bearer-token handling; callers deal in domain types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/metrics"
	"github.com/ErlanBelekov/quote-web/internal/requestid"
)

// CodeRegistrationIncomplete is the error code the backend puts in a 403
// body when the account exists but signup (payment) was never finished.
const CodeRegistrationIncomplete = "REGISTRATION_INCOMPLETE"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode           int
	Code                 string
	Message              string
	RegistrationComplete *bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend: %d", e.StatusCode)
}

// RegistrationIncomplete reports whether e is the structured 403 meaning
// "signed up but not paid", as opposed to a plain authorization failure.
func (e *APIError) RegistrationIncomplete() bool {
	if e.StatusCode != http.StatusForbidden {
		return false
	}
	if e.Code == CodeRegistrationIncomplete {
		return true
	}
	return e.RegistrationComplete != nil && !*e.RegistrationComplete
}

// Is lets callers test for domain.ErrUnauthorized (401) and
// domain.ErrRegistrationIncomplete without unwrapping the APIError.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case domain.ErrRegistrationIncomplete:
		return e.RegistrationIncomplete()
	}
	return false
}

type errorBody struct {
	Code                 string `json:"code"`
	Message              string `json:"message"`
	Error                string `json:"error"`
	RegistrationComplete *bool  `json:"registrationComplete"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "backend_client"),
	}
}

// do sends one request. endpoint is the route template used as the metric
// label; path is the concrete path. A non-empty token is sent as a bearer
// credential. out may be nil.
func (c *Client) do(ctx context.Context, method, endpoint, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.BackendRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
			apiErr.RegistrationComplete = eb.RegistrationComplete
		}
		c.logger.DebugContext(ctx, "backend error response",
			"endpoint", endpoint, "status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// Ping checks that the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "/health", "", nil, nil)
}
