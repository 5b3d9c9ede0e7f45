package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ErlanBelekov/quote-web/config"
	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/cli"
	"github.com/ErlanBelekov/quote-web/internal/paddle"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout(), logger)
	transactions := paddle.NewClient(cfg.PaddleAPIBase, cfg.PaddleAPIKey, cfg.BackendTimeout())
	poller := usecase.NewConfirmationPoller(api, nil, usecase.PollerConfig{
		MaxRetries:    cfg.ConfirmMaxRetries,
		RetryDelay:    cfg.ConfirmRetryDelay(),
		RedirectDelay: 0,
	}, logger)

	if err := cli.NewRootCommand(transactions, poller).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
