package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assistant-platform/internal/audit"
	"assistant-platform/internal/auth"
	"assistant-platform/internal/billing"
	"assistant-platform/internal/config"
	"assistant-platform/internal/httpapi"
	"assistant-platform/internal/metering"
	"assistant-platform/internal/plans"
	"assistant-platform/internal/pricing"
	"assistant-platform/internal/usage"
	"assistant-platform/pkg/logger"
	"assistant-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	table := pricing.Default().Apply(pricing.Overrides{
		ExchangeRate:       cfg.Pricing.ExchangeRate,
		DisplayCurrency:    cfg.Pricing.DisplayCurrency,
		TTSIncludedMinutes: cfg.Pricing.TTSIncludedMinutes,
		TTSOveragePerMin:   cfg.Pricing.TTSOveragePerMin,
		PhoneNumberMonthly: cfg.Pricing.PhoneNumberMonthly,
		HostingMonthly:     cfg.Pricing.HostingMonthly,
	})
	if err := table.Validate(); err != nil {
		log.Error("pricing table invalid", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	aggregator := usage.NewAggregator(usage.NewPostgresRepo(db), log)
	planSvc := plans.NewService(plans.NewPostgresRepo(db))
	billingSvc := billing.NewService(aggregator, planSvc, table)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	ttsProvider, err := metering.NewHTTPProvider(metering.HTTPProviderConfig{
		Name:    cfg.Metering.ProviderName,
		BaseURL: cfg.Metering.BaseURL,
		APIKey:  cfg.Metering.APIKey,
	})
	if err != nil {
		log.Error("metering init failed", "err", err)
		os.Exit(1)
	}
	meteringReader := metering.NewCachedReader(ttsProvider, rdb, cfg.Metering.CacheTTL, log)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Auth:     authManager,
		Billing:  billingSvc,
		Usage:    aggregator,
		Plans:    planSvc,
		Audit:    auditSvc,
		Metering: meteringReader,
	}
	registerRoutes(r, auth.RequireAccessToken(authManager), h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
