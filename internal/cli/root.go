// Package cli implements paymentctl, the support tool for looking into
// checkouts that did not confirm.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type TransactionLookup interface {
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

type ConfirmRunner interface {
	Run(ctx context.Context, token string, observe func(usecase.ConfirmEvent)) usecase.ConfirmResult
}

// ErrNotConfirmed is returned by confirm when the payment did not go
// through, so the process exits non-zero.
var ErrNotConfirmed = errors.New("payment not confirmed")

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

func NewRootCommand(transactions TransactionLookup, poller ConfirmRunner) *cobra.Command {
	root := &cobra.Command{
		Use:           "paymentctl",
		Short:         "Inspect and confirm Daily Quote checkouts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTransactionCmd(transactions), newConfirmCmd(poller))
	return root
}

func newTransactionCmd(transactions TransactionLookup) *cobra.Command {
	return &cobra.Command{
		Use:   "transaction <id>",
		Short: "Show a transaction as the billing provider sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := transactions.GetTransaction(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, domain.ErrTransactionNotFound) {
					return fmt.Errorf("transaction %s not found", args[0])
				}
				return err
			}
			printTransaction(cmd.OutOrStdout(), tx)
			return nil
		},
	}
}

func printTransaction(out io.Writer, tx *domain.Transaction) {
	fmt.Fprintf(out, "transaction:  %s\n", tx.ID)
	status := yellow
	if tx.Status == domain.TransactionCompleted {
		status = green
	}
	fmt.Fprint(out, "status:       ")
	status.Fprintln(out, tx.Status)
	fmt.Fprintf(out, "subscription: %s\n", orDash(tx.SubscriptionID))
	fmt.Fprintf(out, "customer:     %s\n", orDash(tx.CustomerID))
}

func newConfirmCmd(poller ConfirmRunner) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Run the payment confirmation for a user's session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			res := poller.Run(cmd.Context(), token, func(e usecase.ConfirmEvent) {
				printEvent(out, e)
			})
			if res.State != usecase.ConfirmSuccess {
				return fmt.Errorf("%w: %s", ErrNotConfirmed, res.State)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "backend session token of the user")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func printEvent(out io.Writer, e usecase.ConfirmEvent) {
	switch e.Kind {
	case usecase.ConfirmEventAttempt:
		faint.Fprintf(out, "attempt %d: %s\n", e.Attempt, e.Endpoint)
	case usecase.ConfirmEventResult:
		c := red
		if e.State == usecase.ConfirmSuccess {
			c = green
		}
		c.Fprintf(out, "%s", e.State)
		if e.SubscriptionStatus != "" {
			fmt.Fprintf(out, " (subscription %s)", e.SubscriptionStatus)
		}
		if e.Message != "" {
			fmt.Fprintf(out, ": %s", e.Message)
		}
		fmt.Fprintln(out)
	case usecase.ConfirmEventRedirect:
		faint.Fprintf(out, "would redirect to %s\n", e.Redirect)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
