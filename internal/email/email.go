package email

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/requestid"
	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them, used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendSender sends emails via the Resend API, used in staging and production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

var verificationFailedTmpl = template.Must(template.New("verification_failed").Parse(
	`<p>A checkout could not be confirmed.</p>
<ul>
<li>Request: {{.RequestID}}</li>
<li>Retries: {{.Retries}}</li>
<li>Last subscription status: {{.Status}}</li>
<li>At: {{.At}}</li>
</ul>`))

// SupportNotifier mails the support inbox about payments that need a human.
type SupportNotifier struct {
	sender Sender
	to     string
}

func NewSupportNotifier(sender Sender, to string) *SupportNotifier {
	return &SupportNotifier{sender: sender, to: to}
}

func (n *SupportNotifier) PaymentVerificationFailed(ctx context.Context, r domain.VerificationReport) error {
	status := string(r.SubscriptionStatus)
	if status == "" {
		status = "unknown"
	}
	var body strings.Builder
	err := verificationFailedTmpl.Execute(&body, map[string]any{
		"RequestID": requestid.FromContext(ctx),
		"Retries":   r.Retries,
		"Status":    status,
		"At":        r.At.Format("2006-01-02 15:04:05 MST"),
	})
	if err != nil {
		return fmt.Errorf("render support email: %w", err)
	}
	return n.sender.Send(ctx, n.to, "Payment verification failed", body.String())
}
