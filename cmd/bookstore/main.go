package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/pkg/api"
	"bookstore/pkg/circuitbreaker"
	"bookstore/pkg/config"
	"bookstore/pkg/database"
	"bookstore/pkg/logger"
	"bookstore/pkg/metrics"
	"bookstore/pkg/service"
	"bookstore/pkg/store"
	"bookstore/pkg/store/gormstore"
	"bookstore/pkg/store/guarded"
	"bookstore/pkg/store/mongostore"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Bookstore service stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	log.Info("Starting bookstore service...", zap.String("backend", cfg.StoreBackend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()

	if cfg.Breaker.MaxFailures > 0 {
		st = guarded.New(st, circuitbreaker.NewCircuitBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.OpenFor), log)
	}

	if cfg.SeedData {
		if err := seedTestData(ctx, st, log); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}

	if cfg.LogLevel != config.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	h := api.NewHandler(
		service.NewReviewService(st, st, st, log),
		service.NewUserService(st, log),
		service.NewBookService(st, log),
		metrics.New(prometheus.NewRegistry()),
		log,
	)
	router := api.NewRouter(h, st.Ping, api.Options{
		FaultInjection: cfg.FaultInjection,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Bookstore service listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.InitPostgres(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, err
		}
		return gormstore.New(db), nil
	case config.BackendSQLite:
		db, err := database.InitSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("SQLite database ready", zap.String("path", cfg.SQLitePath))
		return gormstore.New(db), nil
	default:
		client, err := database.InitMongo(ctx, cfg.Mongo.URI, log)
		if err != nil {
			return nil, err
		}
		st := mongostore.New(client.Database(cfg.Mongo.Database))
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return st, nil
	}
}
