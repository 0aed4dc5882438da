package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"hamprofile/pkg/store"
	"hamprofile/pkg/tracker"
)

type StatsHandler struct {
	tracker  *tracker.Tracker
	sessions *Sessions
	store    store.ProfileStore
	started  time.Time
}

func NewStatsHandler(t *tracker.Tracker, sessions *Sessions, st store.ProfileStore) *StatsHandler {
	return &StatsHandler{
		tracker:  t,
		sessions: sessions,
		store:    st,
		started:  time.Now(),
	}
}

type ProviderStatsDTO struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	APISuccess    int64 `json:"api_success"`
	APIZeroResult int64 `json:"api_zero"`
	APIFailures   int64 `json:"api_errors"`
	HitRate       int64 `json:"hit_rate"`
}

type DiagnosticsStats struct {
	MemoryMB   uint64 `json:"memory_mb"`
	Goroutines int    `json:"goroutines"`
	UptimeSec  int64  `json:"uptime_sec"`
}

type SessionStats struct {
	Live   int `json:"live"`
	Stored int `json:"stored"`
}

type StatsResponse struct {
	Diagnostics DiagnosticsStats            `json:"diagnostics"`
	Sessions    SessionStats                `json:"sessions"`
	Providers   map[string]ProviderStatsDTO `json:"providers"`
	LastLog     string                      `json:"last_log"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Diagnostics: h.gatherDiagnostics(),
		Providers:   make(map[string]ProviderStatsDTO),
		LastLog:     latestLogLine(),
	}

	if h.sessions != nil {
		resp.Sessions.Live = h.sessions.Len()
	}
	if h.store != nil {
		n, err := h.store.CountProfiles(r.Context())
		if err != nil {
			slog.Warn("Failed to count profiles", "error", err)
		}
		resp.Sessions.Stored = n
	}

	if h.tracker != nil {
		for provider, stats := range h.tracker.Snapshot() {
			resp.Providers[provider] = ProviderStatsDTO{
				CacheHits:     stats.CacheHits,
				CacheMisses:   stats.CacheMisses,
				APISuccess:    stats.APISuccess,
				APIZeroResult: stats.APIZeroResult,
				APIFailures:   stats.APIFailures,
				HitRate:       stats.HitRate(),
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *StatsHandler) gatherDiagnostics() DiagnosticsStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return DiagnosticsStats{
		MemoryMB:   bToMb(m.Sys),
		Goroutines: runtime.NumGoroutine(),
		UptimeSec:  int64(time.Since(h.started).Seconds()),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
