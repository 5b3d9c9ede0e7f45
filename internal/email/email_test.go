package email_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/email"
	"github.com/ErlanBelekov/quote-web/internal/requestid"
)

type fakeSender struct {
	to, subject, body string
}

func (s *fakeSender) Send(_ context.Context, to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	return nil
}

func TestSupportNotifier_PaymentVerificationFailed(t *testing.T) {
	s := &fakeSender{}
	n := email.NewSupportNotifier(s, "support@example.com")

	ctx := requestid.WithRequestID(context.Background(), "req-42")
	err := n.PaymentVerificationFailed(ctx, domain.VerificationReport{
		Retries: 5,
		At:      time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if s.to != "support@example.com" || s.subject != "Payment verification failed" {
		t.Errorf("to=%q subject=%q", s.to, s.subject)
	}
	for _, want := range []string{"req-42", "Retries: 5", "unknown", "2024-05-01 09:30:00"} {
		if !strings.Contains(s.body, want) {
			t.Errorf("body missing %q:\n%s", want, s.body)
		}
	}
}
