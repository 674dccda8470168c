package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hemanthreddykoduru/StudentNotes/internal/config"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	payAdapters "github.com/hemanthreddykoduru/StudentNotes/internal/infra/adapters/payment"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/adapters/storage"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/api"
	pg "github.com/hemanthreddykoduru/StudentNotes/internal/infra/db/postgres"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
	red "github.com/hemanthreddykoduru/StudentNotes/internal/infra/redis"
	"github.com/hemanthreddykoduru/StudentNotes/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		boot := logging.New(config.LogConfig{Level: "error"}, false)
		boot.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Repositories ----
	noteRepo := pg.NewNoteRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	var appConfig repository.AppConfigRepository = pg.NewAppConfigRepo(pool)

	// ---- Redis (optional) ----
	var limiter adapter.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; running without cache and order rate limit")
		} else {
			defer redisClient.Close()
			limiter = red.NewRateLimiter(redisClient)
			appConfig = pg.NewAppConfigCacheDecorator(appConfig, redisClient, cfg.Redis.TTL, logger)
		}
	}

	// ---- Payment gateway ----
	rz := cfg.Payment.Razorpay
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && (rz.KeyID == "" || rz.KeySecret == "") {
		logger.Warn().Msg("razorpay credentials missing; using noop gateway")
		gateway = payAdapters.NewNoopPaymentGateway()
	} else {
		gateway = payAdapters.NewRazorpayGateway(rz.KeyID, rz.KeySecret, rz.BaseURL, rz.Timeout)
	}
	if rz.WebhookSecret == "" {
		logger.Warn().Msg("razorpay webhook secret missing; webhooks will be rejected with 500")
	}

	// ---- Storage ----
	signer, err := storage.NewS3Signer(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage signer")
	}
	issuer := usecase.NewAssetIssuer(signer, cfg.Storage.Bucket, cfg.Storage.SignedURLTTL, logger)

	// ---- Use cases ----
	settleUC := usecase.NewSettlementUseCase(purchaseRepo, subRepo, tm, cfg.Subscription.DurationYears, logger)
	orderUC := usecase.NewOrderUseCase(noteRepo, purchaseRepo, subRepo, appConfig, gateway, limiter,
		usecase.OrderLimit{PerMinute: cfg.Payment.OrdersPerMinute}, rz.KeyID, logger)
	confirmUC := usecase.NewConfirmUseCase(rz.KeySecret, settleUC, gateway, subRepo, cfg.Runtime.Dev, logger)
	webhookUC := usecase.NewWebhookUseCase(rz.WebhookSecret, settleUC, logger)
	entUC := usecase.NewEntitlementUseCase(noteRepo, purchaseRepo, subRepo, profileRepo, issuer, time.Now, logger)
	configUC := usecase.NewConfigUseCase(appConfig, profileRepo, logger)

	// ---- HTTP ----
	if cfg.Auth.JWTSecret == "" {
		logger.Warn().Msg("auth.jwt_secret missing; authenticated routes will return 401")
	}
	srv := api.NewServer(api.Deps{
		Orders:       orderUC,
		Confirm:      confirmUC,
		Webhooks:     webhookUC,
		Entitlements: entUC,
		Config:       configUC,
		Auth:         api.NewAuthenticator(cfg.Auth.JWTSecret, logger),
		BeforeScrape: func() {
			st := pool.Stat()
			metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		},
	}, cfg.Server.RequestTimeout, logger)

	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
