package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/docbook/booking-service/internal/api"
	"github.com/docbook/booking-service/internal/auth"
	"github.com/docbook/booking-service/internal/availability"
	"github.com/docbook/booking-service/internal/booking"
	"github.com/docbook/booking-service/internal/config"
	"github.com/docbook/booking-service/internal/db"
	"github.com/docbook/booking-service/internal/directory"
	"github.com/docbook/booking-service/internal/logger"
	redisclient "github.com/docbook/booking-service/internal/redis"
	"github.com/docbook/booking-service/internal/schedule"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		zl.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	zl.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		zl.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			zl.Error("error closing redis", zap.Error(err))
		}
	}()
	zl.Info("connected to Redis")

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	locker := redisclient.NewRedisBookingLocker(rdb, cfg.LockTTL)
	statusPub := redisclient.NewRedisStatusPublisher(rdb)

	bookingRepo := booking.NewPgRepository(pgPool)
	scheduleRepo := schedule.NewPgRepository(pgPool)
	directoryRepo := directory.NewPgRepository(pgPool)

	bookingSvc := booking.NewService(bookingRepo, locker, zl)
	scheduleSvc := schedule.NewService(scheduleRepo, zl)
	directorySvc := directory.NewService(directoryRepo, tokens, statusPub, cfg.BcryptCost, zl)
	resolver := availability.NewResolver(scheduleSvc, bookingRepo)

	handlers := api.NewHandlers(bookingSvc, resolver, scheduleSvc, directorySvc, zl)

	router := api.NewRouter(api.RouterConfig{
		Handlers:      handlers,
		Tokens:        tokens,
		PgPool:        pgPool,
		Redis:         rdb,
		Log:           zl,
		Env:           cfg.Env,
		Version:       version,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server error", zap.Error(err))
		}
	case <-rootCtx.Done():
	}

	zl.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
