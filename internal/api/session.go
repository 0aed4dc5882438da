package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"hamprofile/pkg/canvas"
	"hamprofile/pkg/chart"
	"hamprofile/pkg/geo"
	"hamprofile/pkg/model"
	"hamprofile/pkg/profile"
	"hamprofile/pkg/store"
	"hamprofile/pkg/terrain"
)

// ErrSessionNotFound is returned when no live or stored profile has the id.
var ErrSessionNotFound = errors.New("session not found")

// ChartOptions configures the renderer of every new session.
type ChartOptions struct {
	Width        int
	Height       int
	EarthRadius  float64
	SeaLevel     bool
	MinClearance float64
	Logger       *slog.Logger
	Observer     chart.Observer
}

// earthRadius is the configured radius, or the chart default when unset.
func (o ChartOptions) earthRadius() float64 {
	if o.EarthRadius > 0 {
		return o.EarthRadius
	}
	return geo.EarthRadius
}

// Session owns one chart. The renderer is single-threaded, so every access
// goes through mu.
type Session struct {
	ID string

	mu        sync.Mutex
	profile   *model.Profile
	points    []geo.Point
	canvas    *canvas.Canvas
	renderer  *chart.Renderer
	clearance terrain.Report
	opts      ChartOptions

	lastUsed time.Time // guarded by Sessions.mu
}

func newSession(p *model.Profile, opts ChartOptions) *Session {
	c := canvas.New(opts.Width, opts.Height)
	chartOpts := []chart.Option{
		chart.WithEarthRadius(opts.EarthRadius),
		chart.WithSeaLevel(opts.SeaLevel),
	}
	if opts.Logger != nil {
		chartOpts = append(chartOpts, chart.WithLogger(opts.Logger.With("profile", p.ID)))
	}
	if opts.Observer != nil {
		chartOpts = append(chartOpts, chart.WithObserver(opts.Observer))
	}

	s := &Session{
		ID:       p.ID,
		profile:  p,
		points:   geo.Interpolate(p.From.Point, p.To.Point, len(p.Samples)),
		canvas:   c,
		renderer: chart.New(c, chartOpts...),
		opts:     opts,
	}
	s.render()
	return s
}

// render lays the chart out again. Callers hold mu (or own s exclusively).
func (s *Session) render() {
	p := s.profile
	s.renderer.Render(p.From, p.To, p.ProfileSamples(), p.EarthArc, p.FullElevation)
	s.clearance = terrain.Clearance(p.From, p.To, p.Samples, s.opts.EarthRadius, s.opts.MinClearance)
}

// ProfileResponse describes a session to API clients.
type ProfileResponse struct {
	ID            string         `json:"id"`
	From          geo.Endpoint   `json:"from"`
	To            geo.Endpoint   `json:"to"`
	SampleCount   int            `json:"sample_count"`
	DistanceM     float64        `json:"distance_m"`
	BearingDeg    float64        `json:"bearing_deg"`
	EarthArc      bool           `json:"earth_arc"`
	FullElevation bool           `json:"full_elevation"`
	Stats         *profile.Stats `json:"stats,omitempty"`
	Clearance     terrain.Report `json:"clearance"`
	StaticMarker  *int           `json:"static_marker"`
	DynamicMarker *int           `json:"dynamic_marker"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Summary returns the current session description.
func (s *Session) Summary() ProfileResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile
	resp := ProfileResponse{
		ID:            p.ID,
		From:          p.From,
		To:            p.To,
		SampleCount:   len(p.Samples),
		DistanceM:     geo.PathDistance(geo.AngularSeparation(p.From.Point, p.To.Point), s.opts.earthRadius()),
		BearingDeg:    geo.Bearing(p.From.Point, p.To.Point),
		EarthArc:      p.EarthArc,
		FullElevation: p.FullElevation,
		Clearance:     s.clearance,
		StaticMarker:  markerIndex(s.renderer.StaticMarker()),
		DynamicMarker: markerIndex(s.renderer.DynamicMarker()),
		CreatedAt:     p.CreatedAt,
	}
	if st := s.renderer.State(); st != nil {
		stats := st.Stats()
		resp.DistanceM = st.Distance()
		resp.Stats = &stats
	}
	return resp
}

func markerIndex(m chart.Marker) *int {
	if i, ok := m.Index(); ok {
		return &i
	}
	return nil
}

// PNG encodes the current rendering.
func (s *Session) PNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := s.canvas.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Hit resolves a pointer position on the chart image.
func (s *Session) Hit(x, y float64) (profile.Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.HitTest(x, y)
}

// Hover hit-tests the position and moves the dynamic marker there, or clears
// it when nothing is under the pointer.
func (s *Session) Hover(x, y float64) (profile.Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hit, ok := s.renderer.HitTest(x, y)
	if ok {
		s.renderer.SetDynamicMarker(chart.MarkerAt(hit.Index))
	} else {
		s.renderer.SetDynamicMarker(chart.NoMarker())
	}
	return hit, ok
}

// SetMarker sets the static or dynamic marker. A nil index clears it.
func (s *Session) SetMarker(kind MarkerKind, index *int) {
	m := chart.NoMarker()
	if index != nil {
		m = chart.MarkerAt(*index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case MarkerStatic:
		s.renderer.SetStaticMarker(m)
	case MarkerDynamic:
		s.renderer.SetDynamicMarker(m)
	}
}

// SetOptions re-renders with a different chart variant and returns the
// updated profile for persisting. Markers are cleared by the new layout.
func (s *Session) SetOptions(earthArc, fullElevation bool) *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *s.profile
	p.EarthArc, p.FullElevation = earthArc, fullElevation
	s.profile = &p
	s.render()
	return &p
}

// GeoJSON returns the sampled path as a FeatureCollection document.
func (s *Session) GeoJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := geo.PathGeoJSON(s.profile.From, s.profile.To, s.points, s.profile.Samples)
	return fc.MarshalJSON()
}

// Close releases the drawing surface.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.canvas.Close()
}

// MarkerKind selects which chart marker a request targets.
type MarkerKind string

const (
	MarkerStatic  MarkerKind = "static"
	MarkerDynamic MarkerKind = "dynamic"
)

// Sessions holds live chart sessions. Sessions idle longer than the TTL are
// swept; when full, the least recently used one is evicted. Profiles found
// in the store are restored on demand.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	store    store.ProfileStore
	opts     ChartOptions
	metrics  *Metrics
	now      func() time.Time
}

// NewSessions creates a session registry. st may be nil.
func NewSessions(ttl time.Duration, maxSessions int, st store.ProfileStore, opts ChartOptions, m *Metrics) *Sessions {
	if maxSessions <= 0 {
		maxSessions = 1
	}
	return &Sessions{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      maxSessions,
		store:    st,
		opts:     opts,
		metrics:  m,
		now:      time.Now,
	}
}

// Create renders p in a new session and registers it.
func (m *Sessions) Create(p *model.Profile) *Session {
	s := newSession(p, m.opts)
	m.add(s)
	return s
}

func (m *Sessions) add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(s)
}

// addLocked registers s. The caller holds m.mu.
func (m *Sessions) addLocked(s *Session) {
	m.sweepLocked()
	for len(m.sessions) >= m.max {
		m.evictOldestLocked()
	}
	s.lastUsed = m.now()
	m.sessions[s.ID] = s
	m.metrics.SetSessions(len(m.sessions))
}

// Get returns the live session, restoring it from the store when needed.
func (m *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		s.lastUsed = m.now()
	}
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	if m.store == nil {
		return nil, ErrSessionNotFound
	}
	p, err := m.store.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	if p == nil {
		return nil, ErrSessionNotFound
	}

	s = newSession(p, m.opts)
	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		// Lost a restore race; keep the first one.
		existing.lastUsed = m.now()
		m.mu.Unlock()
		s.Close()
		return existing, nil
	}
	m.addLocked(s)
	m.mu.Unlock()
	slog.Debug("Session restored", "id", id)
	return s, nil
}

// Remove drops a live session. It reports whether one existed.
func (m *Sessions) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	delete(m.sessions, id)
	s.Close()
	m.metrics.SetSessions(len(m.sessions))
	return true
}

// Len returns the number of live sessions.
func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// IDs returns the live session ids, most recently used first.
func (m *Sessions) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].lastUsed.After(list[j].lastUsed) })
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *Sessions) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.sweepLocked()
	m.metrics.SetSessions(len(m.sessions))
	return n
}

// Run sweeps expired sessions until ctx is done.
func (m *Sessions) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(m.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("Expired sessions removed", "count", n)
			}
		}
	}
}

func (m *Sessions) sweepLocked() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)
	n := 0
	for id, s := range m.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			s.Close()
			n++
		}
	}
	return n
}

func (m *Sessions) evictOldestLocked() {
	var oldest *Session
	for _, s := range m.sessions {
		if oldest == nil || s.lastUsed.Before(oldest.lastUsed) {
			oldest = s
		}
	}
	if oldest == nil {
		return
	}
	delete(m.sessions, oldest.ID)
	oldest.Close()
}
