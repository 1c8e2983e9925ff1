package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
)

func main() {

	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	logShutdown, err := initLogging(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer logShutdown(ctx)

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx)
	if err != nil {
		panic(err)
	}
	defer traceShutdown(ctx)

	// Metrics
	metricShutdown, err := initMetrics(ctx)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	// Sessions
	store, err := calculator.NewStore(calculator.StoreConfig{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
	}, prometheus.DefaultRegisterer)
	if err != nil {
		panic(err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go store.Run(sweepCtx, cfg.SweepInterval)

	// Router
	router := server.NewRouter(calculator.NewAPI(store), nil)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started", zap.String("addr", cfg.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("shutdown failed", zap.Error(err))
	}
}
