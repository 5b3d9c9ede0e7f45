package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/handler"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/gin-gonic/gin"
)

type fakePoller struct {
	run func(ctx context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult
}

func (p *fakePoller) Run(ctx context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult {
	return p.run(ctx, token, observe)
}

func newConfirmationEngine(t *testing.T, sess *domain.Session, p *fakePoller) *gin.Engine {
	r := newTestEngine(t, sess)
	h := handler.NewConfirmationHandler(p, discardLogger())
	r.GET("/payment-success", h.Success)
	r.GET("/payment-success/status", h.Status)
	return r
}

func TestSuccess_ShowsCardFromQuery(t *testing.T) {
	w := get(newConfirmationEngine(t, &domain.Session{Token: "tok"}, &fakePoller{}),
		"/payment-success?transaction_id=txn_1&card_brand=visa&card_last4=4242")

	body := w.Body.String()
	for _, want := range []string{"txn_1", "Visa ending in 4242"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestSuccess_FallsBackToSessionCard(t *testing.T) {
	sess := &domain.Session{Token: "tok", Card: &domain.CardDetails{Brand: "mastercard", Last4: "5555"}}
	w := get(newConfirmationEngine(t, sess, &fakePoller{}), "/payment-success?t=1700000000000")

	if !strings.Contains(w.Body.String(), "Mastercard ending in 5555") {
		t.Error("session card not shown")
	}
}

func TestStatus_StreamsEvents(t *testing.T) {
	p := &fakePoller{run: func(_ context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult {
		if token != "tok" {
			t.Errorf("token = %q", token)
		}
		observe(usecase.ConfirmEvent{Kind: usecase.ConfirmEventAttempt, Attempt: 1, Endpoint: "verify-subscription"})
		observe(usecase.ConfirmEvent{Kind: usecase.ConfirmEventResult, State: usecase.ConfirmSuccess})
		observe(usecase.ConfirmEvent{Kind: usecase.ConfirmEventRedirect, Redirect: "/preferences"})
		return usecase.ConfirmResult{State: usecase.ConfirmSuccess, Redirect: "/preferences"}
	}}
	w := get(newConfirmationEngine(t, &domain.Session{Token: "tok"}, p), "/payment-success/status")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{"event:attempt", "event:result", `"state":"success"`, "event:redirect", `"redirect":"/preferences"`} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %q:\n%s", want, body)
		}
	}
}

func TestStatus_NoTokenPassesEmpty(t *testing.T) {
	var got = "unset"
	p := &fakePoller{run: func(_ context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult {
		got = token
		observe(usecase.ConfirmEvent{Kind: usecase.ConfirmEventResult, State: usecase.ConfirmAuthRequired, Message: usecase.MsgAuthRequired})
		return usecase.ConfirmResult{State: usecase.ConfirmAuthRequired}
	}}
	w := get(newConfirmationEngine(t, nil, p), "/payment-success/status")

	if got != "" {
		t.Errorf("token = %q, want empty", got)
	}
	if !strings.Contains(w.Body.String(), "Authentication required") {
		t.Error("auth message not streamed")
	}
}
