package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/adapters/events/natsbus"
	"github.com/nafia007/afd-submissions-sub001/internal/app"
	"github.com/nafia007/afd-submissions-sub001/internal/config"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/database"
	"github.com/nafia007/afd-submissions-sub001/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := database.Open(ctx, cfg, true, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open storage")
	}
	defer repos.Close()

	var publisher ports.EventPublisher
	if cfg.NATSURL != "" {
		nats, err := natsbus.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to NATS")
		}
		defer nats.Close()
		publisher = nats
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ledger := app.New(repos, app.Options{
		EligibleRoles:  cfg.EligibleRoles,
		OpenProposals:  cfg.OpenProposals,
		TallyCacheTTL:  cfg.TallyCacheTTL,
		TallyCacheSize: cfg.TallyCacheSize,
		Events:         publisher,
		Registry:       registry,
		Logger:         logger,
	})

	sweeper := startSweeper(ctx, ledger.Sweeper, cfg.SweepInterval)

	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: ledger.Handler([]byte(cfg.JWTSecret))}
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.WithError(err).Error("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	// storage is closed by the deferred calls; the sweep must be done first
	sweeper.Wait()
	if err != nil {
		logger.WithError(err).Error("shutdown failed")
		os.Exit(1)
	}
}

// startSweeper runs the sweeper in the background when interval is positive.
// The returned group is done once the sweeper has returned after ctx ends.
func startSweeper(ctx context.Context, sweeper ports.SweepService, interval time.Duration) *sync.WaitGroup {
	var wg sync.WaitGroup
	if interval <= 0 {
		return &wg
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx, interval)
	}()
	return &wg
}
