package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ErlanBelekov/quote-web/internal/cli"
	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

type fakeLookup struct {
	get func(ctx context.Context, id string) (*domain.Transaction, error)
}

func (f *fakeLookup) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return f.get(ctx, id)
}

type fakeRunner struct {
	run func(ctx context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult
}

func (f *fakeRunner) Run(ctx context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult {
	return f.run(ctx, token, observe)
}

func execute(t *testing.T, lookup *fakeLookup, runner *fakeRunner, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCommand(lookup, runner)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTransaction_Prints(t *testing.T) {
	lookup := &fakeLookup{get: func(_ context.Context, id string) (*domain.Transaction, error) {
		return &domain.Transaction{ID: id, Status: "completed", SubscriptionID: "sub_1"}, nil
	}}
	out, err := execute(t, lookup, &fakeRunner{}, "transaction", "txn_1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"txn_1", "completed", "sub_1", "customer:     -"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTransaction_NotFound(t *testing.T) {
	lookup := &fakeLookup{get: func(context.Context, string) (*domain.Transaction, error) {
		return nil, domain.ErrTransactionNotFound
	}}
	_, err := execute(t, lookup, &fakeRunner{}, "transaction", "txn_x")
	if err == nil || !strings.Contains(err.Error(), "txn_x not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestTransaction_RequiresID(t *testing.T) {
	if _, err := execute(t, &fakeLookup{}, &fakeRunner{}, "transaction"); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestConfirm_Success(t *testing.T) {
	runner := &fakeRunner{run: func(_ context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult {
		if token != "tok" {
			t.Errorf("token = %q", token)
		}
		observe(usecase.ConfirmEvent{Kind: usecase.ConfirmEventAttempt, Attempt: 1, Endpoint: "verify-subscription"})
		observe(usecase.ConfirmEvent{Kind: usecase.ConfirmEventResult, State: usecase.ConfirmSuccess, SubscriptionStatus: domain.SubscriptionActive})
		return usecase.ConfirmResult{State: usecase.ConfirmSuccess}
	}}
	out, err := execute(t, &fakeLookup{}, runner, "confirm", "--token", "tok")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "attempt 1: verify-subscription") || !strings.Contains(out, "success (subscription active)") {
		t.Errorf("output:\n%s", out)
	}
}

func TestConfirm_FailureExitsNonZero(t *testing.T) {
	runner := &fakeRunner{run: func(_ context.Context, _ string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult {
		observe(usecase.ConfirmEvent{Kind: usecase.ConfirmEventResult, State: usecase.ConfirmFailed, Message: usecase.MsgVerificationFailed})
		return usecase.ConfirmResult{State: usecase.ConfirmFailed}
	}}
	out, err := execute(t, &fakeLookup{}, runner, "confirm", "--token", "tok")
	if !errors.Is(err, cli.ErrNotConfirmed) {
		t.Fatalf("err = %v, want ErrNotConfirmed", err)
	}
	if !strings.Contains(out, "Payment verification failed") {
		t.Errorf("output:\n%s", out)
	}
}

func TestConfirm_TokenRequired(t *testing.T) {
	if _, err := execute(t, &fakeLookup{}, &fakeRunner{}, "confirm"); err == nil {
		t.Fatal("expected missing flag error")
	}
}
