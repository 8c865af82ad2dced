package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/agriconnect/internal/config"
	"github.com/Skotchmaster/agriconnect/internal/httpserver"
	"github.com/Skotchmaster/agriconnect/internal/mercadopago"
	"github.com/Skotchmaster/agriconnect/internal/metrics"
	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/internal/mykafka"
	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/internal/search"
	"github.com/Skotchmaster/agriconnect/internal/service"
	pkgdb "github.com/Skotchmaster/agriconnect/pkg/db"
	"github.com/Skotchmaster/agriconnect/pkg/hash"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
	authmw "github.com/Skotchmaster/agriconnect/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/agriconnect/pkg/middleware/logging"
	"github.com/Skotchmaster/agriconnect/pkg/registry"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = pkgdb.Close(db) }()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	r := repo.New(db)
	checks := map[string]httpserver.Pinger{"db": r}

	var store registry.Store = registry.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs, err := registry.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		store = rs
		checks["redis"] = rs
	} else {
		logger.Warn("REDIS_ADDR not set, refresh tokens kept in memory")
	}
	defer func() { _ = store.Close() }()

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka close", "error", err)
			}
		}()
		events = prod
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("elasticsearch unavailable, search falls back to the database", "error", err)
		} else {
			index = search.NewIndex(es, cfg.ESIndex)
		}
	}

	if cfg.WebhookSecret == "" {
		logger.Warn("MERCADO_PAGO_WEBHOOK_SECRET not set, every webhook will be rejected")
	}
	var payments service.PaymentLookup
	if cfg.MercadoPagoAccessToken != "" {
		mp, err := mercadopago.New(cfg.MercadoPagoAccessToken)
		if err != nil {
			log.Fatalf("mercadopago: %v", err)
		}
		payments = mp
	} else {
		logger.Warn("MERCADO_PAGO_ACCESS_TOKEN not set, payment notifications are acknowledged without effect")
	}

	issuer := tokens.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL, cfg.JWTAccessExpiresIn)
	hasher := hash.NewHasher(cfg.BcryptCost)

	auth := &service.AuthService{Principals: r, Issuer: issuer, Hasher: hasher, Registry: store, Events: events}
	orders := &service.OrderService{Repo: r, Events: events}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.HTTPErrorHandler(cfg.Development())
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())

	httpserver.Register(e, &httpserver.Deps{
		Auth:       &httpserver.AuthHTTP{Svc: auth},
		Orders:     &httpserver.OrderHTTP{Svc: orders},
		Principals: &httpserver.PrincipalHTTP{Svc: &service.PrincipalService{Repo: r, Hasher: hasher, Events: events}},
		Catalog:    &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Index: index, Events: events}},
		Webhook:    &httpserver.WebhookHTTP{Svc: &service.PaymentService{Secret: []byte(cfg.WebhookSecret), Orders: orders, Lookup: payments, Events: events}},
		Health:     &httpserver.HealthHTTP{Checks: checks},
		Guard:      authmw.NewGuard(issuer),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sw := &registry.Sweeper{Store: store, Valid: auth.ValidRefresh, Interval: cfg.SweepInterval, Log: logger}
		return sw.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
