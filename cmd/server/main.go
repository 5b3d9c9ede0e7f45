package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/quote-web/config"
	"github.com/ErlanBelekov/quote-web/internal/backend"
	"github.com/ErlanBelekov/quote-web/internal/content"
	"github.com/ErlanBelekov/quote-web/internal/email"
	"github.com/ErlanBelekov/quote-web/internal/health"
	"github.com/ErlanBelekov/quote-web/internal/infrastructure/memory"
	"github.com/ErlanBelekov/quote-web/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/quote-web/internal/log"
	"github.com/ErlanBelekov/quote-web/internal/metrics"
	"github.com/ErlanBelekov/quote-web/internal/paddle"
	"github.com/ErlanBelekov/quote-web/internal/repository"
	"github.com/ErlanBelekov/quote-web/internal/scheduler"
	"github.com/ErlanBelekov/quote-web/internal/session"
	httptransport "github.com/ErlanBelekov/quote-web/internal/transport/http"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/handler"
	"github.com/ErlanBelekov/quote-web/internal/transport/http/middleware"
	"github.com/ErlanBelekov/quote-web/internal/usecase"
	"github.com/ErlanBelekov/quote-web/internal/views"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Sessions
	var sessionRepo repository.SessionRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			stop()
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
		sessionRepo = postgres.NewSessionRepository(pool)
		logger.Info("sessions stored in postgres")
	} else {
		sessionRepo = memory.NewSessionRepository()
		logger.Warn("DATABASE_URL not set, sessions kept in memory")
	}
	sessions := session.NewStore(sessionRepo, []byte(cfg.SessionSecret), cfg.SessionTTL(), cfg.SessionCookieSecure)

	sweeper, err := scheduler.NewSweeper(sessionRepo, cfg.SessionSweepCron, logger)
	if err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	go sweeper.Start(ctx)

	// Content
	catalog, err := content.Load()
	if err != nil {
		stop()
		log.Fatalf("content: %v", err)
	}
	tmpl, err := views.Parse()
	if err != nil {
		stop()
		log.Fatalf("views: %v", err)
	}

	metrics.Register()

	// Backend and billing provider
	api := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout(), logger)
	transactions := paddle.NewClient(cfg.PaddleAPIBase, cfg.PaddleAPIKey, cfg.BackendTimeout())
	overlay := paddle.NewOverlay(cfg.PaddleScriptURL, cfg.PaddleEnv)

	bridge := usecase.NewCheckoutBridge(overlay, transactions, api, sessions, catalog, usecase.BridgeConfig{
		ClientToken:   cfg.PaddleClientToken,
		PublicBaseURL: cfg.PublicBaseURL,
		Theme:         "light",
		Locale:        "en",
		RedirectDelay: cfg.CheckoutRedirectDelay(),
	}, logger)
	// A failure is kept by the bridge and shown on the payment view.
	if err := bridge.Init(ctx); err != nil {
		logger.Error("checkout bridge unavailable", "error", err)
	}

	notifier := email.NewSupportNotifier(email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger), cfg.SupportEmail)
	poller := usecase.NewConfirmationPoller(api, notifier, usecase.PollerConfig{
		MaxRetries:    cfg.ConfirmMaxRetries,
		RetryDelay:    cfg.ConfirmRetryDelay(),
		RedirectDelay: cfg.ConfirmRedirectDelay(),
	}, logger)
	guard := usecase.NewRouteGuard(api, logger)
	account := usecase.NewAccountUsecase(api)

	widget := handler.CheckoutWidget{
		ScriptURL:   cfg.PaddleScriptURL,
		ClientToken: cfg.PaddleClientToken,
		Environment: cfg.PaddleEnv,
	}
	handlers := httptransport.Handlers{
		Pages:        handler.NewPageHandler(catalog),
		Auth:         handler.NewAuthHandler(account, sessions, logger),
		Account:      handler.NewAccountHandler(account, sessions, logger),
		Checkout:     handler.NewCheckoutHandler(bridge, api, catalog, widget, logger),
		Confirmation: handler.NewConfirmationHandler(poller, logger),
	}
	mw := httptransport.Middleware{
		Session:        middleware.Session(sessions, logger),
		Guard:          middleware.Guard(guard, sessions, logger),
		CheckoutOrigin: middleware.CheckoutOrigin(cfg.PaddleScriptURL),
	}

	checker := health.NewChecker(map[string]health.Pinger{
		"sessions": sessionRepo,
		"backend":  api,
	}, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, tmpl, handlers, mw),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
