// Package chart draws terrain-profile charts for radio paths onto a Surface
// and keeps the state needed for cheap marker redraws and pointer picking.
package chart

import (
	"log/slog"
	"time"

	"hamprofile/pkg/geo"
	"hamprofile/pkg/profile"
)

// Pass identifies which kind of draw completed.
type Pass int

const (
	// PassEmpty drew only the frame because there were too few samples.
	PassEmpty Pass = iota
	// PassFull recomputed the layout and drew the chart.
	PassFull
	// PassCached redrew from the stored layout.
	PassCached
)

func (p Pass) String() string {
	switch p {
	case PassEmpty:
		return "empty"
	case PassFull:
		return "full"
	case PassCached:
		return "cached"
	}
	return "unknown"
}

// Observer is notified after every completed draw.
type Observer func(pass Pass, elapsed time.Duration)

// Option configures a Renderer.
type Option func(*Renderer)

// WithOrigin sets the surface position in pointer coordinates; HitTest
// subtracts it before looking up samples.
func WithOrigin(x, y float64) Option {
	return func(r *Renderer) { r.originX, r.originY = x, y }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithEarthRadius overrides the Earth radius in meters.
func WithEarthRadius(radius float64) Option {
	return func(r *Renderer) { r.earthRadius = radius }
}

// WithSeaLevel also draws the curved sea-level line under the terrain.
func WithSeaLevel(enabled bool) Option {
	return func(r *Renderer) { r.seaLevel = enabled }
}

// WithObserver registers a callback invoked after each draw.
func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observer = o }
}

// Renderer owns one chart on one Surface. It is not safe for concurrent use.
type Renderer struct {
	surface Surface
	logger  *slog.Logger

	originX, originY float64
	earthRadius      float64
	seaLevel         bool
	observer         Observer

	// Replaced together by Render.
	state  *profile.State
	points []profile.ScreenPoint
	hits   *profile.HitIndex

	static  Marker
	dynamic Marker
}

// New creates a Renderer drawing onto s. A nil surface makes every draw a no-op.
func New(s Surface, opts ...Option) *Renderer {
	r := &Renderer{
		surface: s,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out and draws the chart for a new path. Markers are cleared.
// With fewer than two samples only the empty frame is drawn.
func (r *Renderer) Render(from, to geo.Endpoint, samples []profile.Sample, useEarthArc, useFullElevation bool) {
	if r.surface == nil {
		return
	}
	start := time.Now()

	w, h := r.surface.Size()
	state, ok := profile.Layout(profile.Frame{Width: w, Height: h}, from, to, samples, profile.Options{
		UseEarthArc:      useEarthArc,
		UseFullElevation: useFullElevation,
		EarthRadius:      r.earthRadius,
	})

	r.static, r.dynamic = NoMarker(), NoMarker()

	if !ok {
		r.state, r.points, r.hits = nil, nil, nil
		r.drawBackground(w, h)
		r.logger.Debug("Chart cleared", "samples", len(samples))
		r.notify(PassEmpty, start)
		return
	}

	points, hits := state.Trace()
	r.state, r.points, r.hits = state, points, hits

	r.logger.Debug("Chart laid out",
		"samples", state.Len(),
		"distance_km", state.Distance()/1000,
		"scale_h", state.ScaleH(),
		"down_shift", state.DownShift(),
		"earth_arc", useEarthArc)

	r.draw()
	r.notify(PassFull, start)
}

// Redraw repaints the chart from the stored layout without recomputing it.
func (r *Renderer) Redraw() {
	if r.surface == nil {
		return
	}
	start := time.Now()

	if r.state == nil {
		w, h := r.surface.Size()
		r.drawBackground(w, h)
		r.notify(PassCached, start)
		return
	}

	r.draw()
	r.notify(PassCached, start)
}

// SetStaticMarker sets the persistent marker and redraws if it changed.
func (r *Renderer) SetStaticMarker(m Marker) {
	if m == r.static {
		return
	}
	r.static = m
	r.Redraw()
}

// SetDynamicMarker sets the hover marker and redraws if it changed.
func (r *Renderer) SetDynamicMarker(m Marker) {
	if m == r.dynamic {
		return
	}
	r.dynamic = m
	r.Redraw()
}

// StaticMarker returns the persistent marker.
func (r *Renderer) StaticMarker() Marker { return r.static }

// DynamicMarker returns the hover marker.
func (r *Renderer) DynamicMarker() Marker { return r.dynamic }

// HitTest returns the sample under the pointer position (x, y), given in the
// coordinate space of WithOrigin.
func (r *Renderer) HitTest(x, y float64) (profile.Hit, bool) {
	return r.hits.Hit(x-r.originX, y-r.originY)
}

// State returns the current layout, or nil when the chart is empty.
func (r *Renderer) State() *profile.State { return r.state }

// HitIndex returns the current hit index, or nil when the chart is empty.
func (r *Renderer) HitIndex() *profile.HitIndex { return r.hits }

func (r *Renderer) notify(p Pass, start time.Time) {
	if r.observer != nil {
		r.observer(p, time.Since(start))
	}
}
