package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"hamprofile/pkg/config"
)

// ConfigHandler exposes the chart settings. Only the per-request defaults can
// be changed at runtime; surface size and sea level apply to every session.
type ConfigHandler struct {
	profiles *ProfileHandler
	chart    config.ChartConfig
	source   string
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(profiles *ProfileHandler, chart config.ChartConfig, source string) *ConfigHandler {
	return &ConfigHandler{profiles: profiles, chart: chart, source: source}
}

// ConfigResponse represents the config API response.
type ConfigResponse struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	SeaLevel      bool    `json:"sea_level"`
	EarthRadius   float64 `json:"earth_radius_m"`
	Source        string  `json:"source"`
	Samples       int     `json:"samples"`
	EarthArc      bool    `json:"earth_arc"`
	FullElevation bool    `json:"full_elevation"`
}

// ConfigRequest represents the config API request for updates.
type ConfigRequest struct {
	Samples       *int  `json:"samples,omitempty"`
	EarthArc      *bool `json:"earth_arc,omitempty"` // Pointer to detect false vs missing
	FullElevation *bool `json:"full_elevation,omitempty"`
}

// HandleConfig is a unified handler for all config-related methods, facilitating CORS/OPTIONS.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		h.HandleGetConfig(w, r)
	case http.MethodPut, http.MethodPost:
		h.HandleSetConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleGetConfig returns the current configuration.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	d := h.profiles.Defaults()
	resp := ConfigResponse{
		Width:         h.chart.Width,
		Height:        h.chart.Height,
		SeaLevel:      h.chart.SeaLevel,
		EarthRadius:   h.chart.EarthRadius.Meters(),
		Source:        h.source,
		Samples:       d.Samples,
		EarthArc:      d.EarthArc,
		FullElevation: d.FullElevation,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode config response", "error", err)
	}
}

// HandleSetConfig updates the request defaults.
func (h *ConfigHandler) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	d := h.profiles.Defaults()
	if req.Samples != nil {
		if *req.Samples < 2 || *req.Samples > maxSamples {
			http.Error(w, fmt.Sprintf("samples must be between 2 and %d", maxSamples), http.StatusBadRequest)
			return
		}
		d.Samples = *req.Samples
	}
	if req.EarthArc != nil {
		d.EarthArc = *req.EarthArc
	}
	if req.FullElevation != nil {
		d.FullElevation = *req.FullElevation
	}
	h.profiles.SetDefaults(d)
	slog.Info("Chart defaults updated", "samples", d.Samples, "earth_arc", d.EarthArc, "full_elevation", d.FullElevation)

	// Return updated config
	h.HandleGetConfig(w, r)
}
