package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hamprofile/pkg/version"
)

// NewServer creates and configures the HTTP server.
// metrics may be nil, in which case /metrics is not served.
func NewServer(addr string, profiles *ProfileHandler, cfg *ConfigHandler, stats *StatsHandler, metrics *Metrics, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health and version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Config and diagnostics
	mux.HandleFunc("/api/config", cfg.HandleConfig)
	mux.Handle("GET /api/stats", stats)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	// 3. Profiles
	mux.HandleFunc("POST /api/profile", profiles.HandleCreate)
	mux.HandleFunc("GET /api/profiles", profiles.HandleList)
	mux.HandleFunc("GET /api/profile/{id}", profiles.HandleGet)
	mux.HandleFunc("DELETE /api/profile/{id}", profiles.HandleDelete)
	mux.HandleFunc("GET /api/profile/{id}/chart.png", profiles.HandleChart)
	mux.HandleFunc("GET /api/profile/{id}/hit", profiles.HandleHit)
	mux.HandleFunc("POST /api/profile/{id}/marker", profiles.HandleMarker)
	mux.HandleFunc("POST /api/profile/{id}/options", profiles.HandleOptions)
	mux.HandleFunc("GET /api/profile/{id}/path.geojson", profiles.HandlePath)
	mux.HandleFunc("GET /api/profile/{id}/hover", profiles.HandleHover)

	// 4. Shutdown
	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// Let the response flush first
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
