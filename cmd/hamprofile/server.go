package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hamprofile/internal/api"
	"hamprofile/pkg/config"
	"hamprofile/pkg/logging"
	"hamprofile/pkg/store"
	"hamprofile/pkg/terrain"
	"hamprofile/pkg/tracker"
)

func runServer(ctx context.Context, cfg *config.Config, sampler *terrain.Sampler, st store.Store, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	metrics, err := api.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	sessions := api.NewSessions(cfg.Server.SessionTTL.Std(), cfg.Server.MaxSessions, st, api.ChartOptions{
		Width:        cfg.Chart.Width,
		Height:       cfg.Chart.Height,
		EarthRadius:  cfg.Chart.EarthRadius.Meters(),
		SeaLevel:     cfg.Chart.SeaLevel,
		MinClearance: cfg.Terrain.Clearance.Meters(),
		Logger:       slog.With("component", "chart"),
		Observer:     metrics.Observer(),
	}, metrics)
	go sessions.Run(ctx)

	profiles := api.NewProfileHandler(sessions, sampler, st, api.ProfileDefaults{
		Samples:       cfg.Chart.Samples,
		EarthArc:      cfg.Chart.EarthArc,
		FullElevation: cfg.Chart.FullElevation,
	}, metrics)

	source := "none"
	if sampler != nil {
		source = sampler.Source().Name()
	}

	srv := api.NewServer(cfg.Server.Address,
		profiles,
		api.NewConfigHandler(profiles, cfg.Chart, source),
		api.NewStatsHandler(tr, sessions, st),
		metrics,
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
