package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-console/api/swagger"
	"github.com/noah-isme/academic-console/internal/console"
	"github.com/noah-isme/academic-console/internal/gateway"
	"github.com/noah-isme/academic-console/internal/handler"
	"github.com/noah-isme/academic-console/internal/service"
	"github.com/noah-isme/academic-console/internal/session"
	"github.com/noah-isme/academic-console/pkg/config"
	"github.com/noah-isme/academic-console/pkg/database"
	"github.com/noah-isme/academic-console/pkg/jobs"
	"github.com/noah-isme/academic-console/pkg/logger"
)

// @title Academic Records Console
// @version 1.0.0
// @description Server-rendered admin console for courses and specialisations
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, checks, closeStorage, err := openStorage(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open session storage", "store", cfg.Session.Store, "error", err)
	}
	defer closeStorage()

	metrics := service.NewMetricsService()
	backend := gateway.New(cfg.Backend, metrics, logr.Named("gateway"))
	registry := console.NewRegistry(storage, console.ShellDeps{
		Backend:  backend,
		Validate: validator.New(),
		Logger:   logr,
		Loads:    metrics,
	}, metrics)

	sweeper := jobs.NewPeriodic("workspace_sweep", func(context.Context) error {
		registry.Sweep(cfg.Session.IdleTTL)
		return nil
	}, jobs.PeriodicConfig{Interval: cfg.Session.SweepInterval, Logger: logr})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	r, err := handler.NewRouter(handler.RouterDeps{
		Config:     cfg,
		Logger:     logr,
		Metrics:    metrics,
		Workspaces: registry,
		Signer:     session.NewCookieSigner(cfg.Session.CookieSecret, cfg.Session.CookieTTL),
		Exports:    service.NewExportService(logr, nil, nil),
		Checks:     checks,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to build router", "error", err)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Session.Store, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logr *zap.Logger) (session.Storage, map[string]handler.ReadinessCheck, func(), error) {
	noop := func() {}
	switch cfg.Session.Store {
	case config.StoreMemory:
		logr.Warn("session storage is in memory; sessions are lost on restart")
		return session.NewMemoryStorage(), nil, noop, nil

	case config.StoreRedis:
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		checks := map[string]handler.ReadinessCheck{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}
		return session.NewRedisStorage(client, cfg.Session.KeyPrefix), checks, func() { _ = client.Close() }, nil

	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, noop, err
		}
		storage := session.NewPostgresStorage(db)
		if err := storage.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		checks := map[string]handler.ReadinessCheck{
			"postgres": func(ctx context.Context) error { return db.PingContext(ctx) },
		}
		return storage, checks, func() { _ = db.Close() }, nil

	default:
		db, err := database.NewBolt(cfg.Bolt)
		if err != nil {
			return nil, nil, noop, err
		}
		checks := map[string]handler.ReadinessCheck{
			"bolt": func(context.Context) error {
				return db.View(func(*bolt.Tx) error { return nil })
			},
		}
		return session.NewBoltStorage(db, ""), checks, func() { _ = db.Close() }, nil
	}
}
