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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"courtflow/api"
	"courtflow/auth"
	"courtflow/config"
	"courtflow/court"
	"courtflow/db"
	"courtflow/dispute"
	"courtflow/ingest"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	courtService := court.NewService(court.NewRepository(pool))
	disputeRepo := dispute.NewRepository(pool)
	disputeService := dispute.NewService(disputeRepo, courtService)
	authService := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret)

	poller := ingest.NewPoller(
		ingest.NewClient(cfg.SubgraphURL),
		courtService,
		disputeRepo,
		cfg.CourtIDs,
		cfg.ChainID,
		cfg.PollInterval,
		logger,
	)

	server := api.NewServer(authService, courtService, disputeService, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("poller started", "interval", cfg.PollInterval.String(), "courts", len(cfg.CourtIDs))
		return poller.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
