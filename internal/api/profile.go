package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"hamprofile/pkg/geo"
	"hamprofile/pkg/model"
	"hamprofile/pkg/profile"
	"hamprofile/pkg/store"
	"hamprofile/pkg/terrain"
)

const (
	maxSamples     = 4096
	maxRequestBody = 1 << 20
)

// ErrTooFewSamples is returned when a profile would have fewer than two samples.
var ErrTooFewSamples = errors.New("at least two samples are required")

// ProfileDefaults fills in request fields the client left out.
type ProfileDefaults struct {
	Samples       int
	EarthArc      bool
	FullElevation bool
}

// ProfileHandler serves chart sessions.
type ProfileHandler struct {
	sessions *Sessions
	sampler  *terrain.Sampler
	store    store.ProfileStore
	metrics  *Metrics

	mu       sync.RWMutex
	defaults ProfileDefaults
}

// NewProfileHandler creates a profile handler. sampler and st may be nil; without a
// sampler clients must send samples and endpoint elevations themselves.
func NewProfileHandler(sessions *Sessions, sampler *terrain.Sampler, st store.ProfileStore, defaults ProfileDefaults, m *Metrics) *ProfileHandler {
	return &ProfileHandler{
		sessions: sessions,
		sampler:  sampler,
		store:    st,
		defaults: defaults,
		metrics:  m,
	}
}

type endpointRequest struct {
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	Elevation     *float64 `json:"elevation"` // null: look it up
	AntennaHeight float64  `json:"antenna_height"`
}

func (e endpointRequest) endpoint() (geo.Endpoint, error) {
	if e.Lat < -90 || e.Lat > 90 || e.Lon < -180 || e.Lon > 180 {
		return geo.Endpoint{}, fmt.Errorf("coordinates out of range: %v,%v", e.Lat, e.Lon)
	}
	if e.AntennaHeight < 0 {
		return geo.Endpoint{}, fmt.Errorf("negative antenna height: %v", e.AntennaHeight)
	}
	ep := geo.Endpoint{
		Point:         geo.Point{Lat: e.Lat, Lon: e.Lon},
		Elevation:     math.NaN(),
		AntennaHeight: e.AntennaHeight,
	}
	if e.Elevation != nil {
		ep.Elevation = *e.Elevation
	}
	return ep, nil
}

// CreateRequest is the body of POST /api/profile. Samples, when given, are
// used as-is; otherwise Count samples are looked up along the path.
type CreateRequest struct {
	From          endpointRequest `json:"from"`
	To            endpointRequest `json:"to"`
	Samples       []float64       `json:"samples,omitempty"`
	Count         int             `json:"count,omitempty"`
	EarthArc      *bool           `json:"earth_arc,omitempty"`
	FullElevation *bool           `json:"full_elevation,omitempty"`
}

// HandleCreate handles POST /api/profile.
func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	from, err := req.From.endpoint()
	if err != nil {
		http.Error(w, "from: "+err.Error(), http.StatusBadRequest)
		return
	}
	to, err := req.To.endpoint()
	if err != nil {
		http.Error(w, "to: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	defaults := h.Defaults()
	source := "request"
	samples := req.Samples

	if samples == nil {
		if h.sampler == nil {
			http.Error(w, "samples required: no elevation source configured", http.StatusBadRequest)
			return
		}
		count := req.Count
		if count == 0 {
			count = defaults.Samples
		}
		if count < 2 || count > maxSamples {
			http.Error(w, fmt.Sprintf("count must be between 2 and %d", maxSamples), http.StatusBadRequest)
			return
		}
		_, smp, err := h.sampler.Sample(ctx, from.Point, to.Point, count)
		if err != nil {
			slog.Warn("Elevation lookup failed", "error", err)
			http.Error(w, "Elevation lookup failed", http.StatusBadGateway)
			return
		}
		samples = make([]float64, len(smp))
		for i, s := range smp {
			samples[i] = s.Elevation
		}
		source = h.sampler.Source().Name()
	}

	if len(samples) < 2 {
		http.Error(w, ErrTooFewSamples.Error(), http.StatusBadRequest)
		return
	}
	if len(samples) > maxSamples {
		http.Error(w, fmt.Sprintf("at most %d samples are allowed", maxSamples), http.StatusBadRequest)
		return
	}

	if math.IsNaN(from.Elevation) || math.IsNaN(to.Elevation) {
		if h.sampler == nil {
			http.Error(w, "endpoint elevation required: no elevation source configured", http.StatusBadRequest)
			return
		}
		if err := h.sampler.FillEndpoints(ctx, &from, &to); err != nil {
			slog.Warn("Endpoint elevation lookup failed", "error", err)
			http.Error(w, "Elevation lookup failed", http.StatusBadGateway)
			return
		}
	}

	p := &model.Profile{
		ID:            uuid.NewString(),
		From:          from,
		To:            to,
		Samples:       samples,
		EarthArc:      boolOr(req.EarthArc, defaults.EarthArc),
		FullElevation: boolOr(req.FullElevation, defaults.FullElevation),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	h.persist(r, p)

	s := h.sessions.Create(p)
	h.metrics.ProfileCreated(source)
	slog.Info("Profile created", "id", p.ID, "samples", len(samples), "source", source)

	writeJSON(w, http.StatusCreated, s.Summary())
}

func (h *ProfileHandler) persist(r *http.Request, p *model.Profile) {
	if h.store == nil {
		return
	}
	if err := h.store.SaveProfile(r.Context(), p); err != nil {
		slog.Error("Failed to save profile", "id", p.ID, "error", err)
	}
}

// Defaults returns the current request defaults.
func (h *ProfileHandler) Defaults() ProfileDefaults {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaults
}

// SetDefaults replaces the request defaults for new profiles.
func (h *ProfileHandler) SetDefaults(d ProfileDefaults) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaults = d
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// session resolves the {id} path value, writing the error response itself.
func (h *ProfileHandler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
		} else {
			slog.Error("Failed to load profile", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return s, true
}

// HandleGet handles GET /api/profile/{id}.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Summary())
}

// HandleList handles GET /api/profiles. Stored profiles are listed when a
// store is configured, live sessions otherwise.
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string][]string{"live": h.sessions.IDs()})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.store.ListProfiles(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list profiles", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []model.ProfileSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleDelete handles DELETE /api/profile/{id}.
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	found := h.sessions.Remove(id)
	if h.store != nil {
		ok, err := h.store.DeleteProfile(r.Context(), id)
		if err != nil {
			slog.Error("Failed to delete profile", "id", id, "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		found = found || ok
	}
	if !found {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChart handles GET /api/profile/{id}/chart.png.
func (h *ProfileHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	data, err := s.PNG()
	if err != nil {
		slog.Error("Failed to encode chart", "id", s.ID, "error", err)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write chart response", "error", err)
	}
}

// HitResponse is the result of a hit test.
type HitResponse struct {
	Hit       bool    `json:"hit"`
	Index     int     `json:"index"`
	Elevation float64 `json:"elevation"`
}

// HandleHit handles GET /api/profile/{id}/hit?x=&y=.
func (h *ProfileHandler) HandleHit(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y are required", http.StatusBadRequest)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, hitResponse(s.Hit(x, y)))
}

func hitResponse(hit profile.Hit, ok bool) HitResponse {
	if !ok {
		return HitResponse{Index: -1}
	}
	return HitResponse{Hit: true, Index: hit.Index, Elevation: hit.Elevation}
}

// MarkerRequest is the body of POST /api/profile/{id}/marker.
type MarkerRequest struct {
	Kind  MarkerKind `json:"kind"`
	Index *int       `json:"index"` // null clears the marker
}

// HandleMarker handles POST /api/profile/{id}/marker.
func (h *ProfileHandler) HandleMarker(w http.ResponseWriter, r *http.Request) {
	var req MarkerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Kind != MarkerStatic && req.Kind != MarkerDynamic {
		http.Error(w, `kind must be "static" or "dynamic"`, http.StatusBadRequest)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.SetMarker(req.Kind, req.Index)
	writeJSON(w, http.StatusOK, s.Summary())
}

// OptionsRequest is the body of POST /api/profile/{id}/options.
type OptionsRequest struct {
	EarthArc      *bool `json:"earth_arc"`
	FullElevation *bool `json:"full_elevation"`
}

// HandleOptions handles POST /api/profile/{id}/options. The chart is laid
// out again and the new variant is persisted.
func (h *ProfileHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	var req OptionsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	cur := s.Summary()
	p := s.SetOptions(boolOr(req.EarthArc, cur.EarthArc), boolOr(req.FullElevation, cur.FullElevation))
	h.persist(r, p)
	writeJSON(w, http.StatusOK, s.Summary())
}

// HandlePath handles GET /api/profile/{id}/path.geojson.
func (h *ProfileHandler) HandlePath(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	data, err := s.GeoJSON()
	if err != nil {
		slog.Error("Failed to encode path", "id", s.ID, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write path response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
