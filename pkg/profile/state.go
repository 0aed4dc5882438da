// Package profile computes the screen geometry of a terrain-profile chart for
// a point-to-point radio path.
//
// Layout produces an immutable State from two endpoints and a sequence of
// elevation samples spaced evenly in angle between them. The State maps sample
// indices to pixels (Project), and Trace derives every screen point together
// with the hit regions used for pointer picking, so both always agree.
package profile

import (
	"math"

	"hamprofile/pkg/geo"
)

// Plot margins in pixels around the chart body.
const (
	MarginLeft   = 60.0
	MarginTop    = 15.0
	MarginRight  = 15.0
	MarginBottom = 20.0
)

const (
	antennaPadding   = 20.0
	fullElevationFit = 0.8
	terrainFit       = 0.95
	roundTo          = 100.0
)

// Sample is one terrain elevation along the path, in meters.
type Sample struct {
	Elevation float64
}

// Options selects the chart variant.
type Options struct {
	UseEarthArc      bool    // add the Earth's bulge to every sample
	UseFullElevation bool    // start the vertical axis at sea level
	EarthRadius      float64 // meters; zero means geo.EarthRadius
}

// Frame is the size of the drawing surface in pixels.
type Frame struct {
	Width  float64
	Height float64
}

// Rect is the plot area. Y is the bottom edge (the ground baseline); the area
// extends upwards by H pixels.
type Rect struct {
	X, Y, W, H float64
}

// Top returns the y coordinate of the upper edge.
func (r Rect) Top() float64 { return r.Y - r.H }

// Plot returns the plot area inside the frame margins.
func (f Frame) Plot() Rect {
	return Rect{
		X: MarginLeft,
		Y: f.Height - MarginBottom,
		W: f.Width - MarginLeft - MarginRight,
		H: f.Height - MarginBottom - MarginTop,
	}
}

// Side selects one endpoint of the path.
type Side int

const (
	Left Side = iota
	Right
)

// State is the derived chart geometry of one full layout pass.
// It is never modified after Layout returns.
type State struct {
	frame    Frame
	plot     Rect
	from, to geo.Endpoint
	samples  []Sample
	opts     Options
	stats    Stats

	earthRadius float64
	angle       float64
	halfAngle   float64
	effAngle    float64
	sagitta     float64
	chord       float64
	distance    float64

	scaleH    float64
	downShift float64

	centerX     float64
	centerY     float64
	halfway     float64
	stepX       float64
	angularStep float64

	slopeLeft  float64
	slopeRight float64
}

// Layout computes the chart geometry. It reports false when fewer than two
// samples are given; such a chart has no body.
func Layout(frame Frame, from, to geo.Endpoint, samples []Sample, opts Options) (*State, bool) {
	if len(samples) < 2 {
		return nil, false
	}

	r := opts.EarthRadius
	if r <= 0 {
		r = geo.EarthRadius
	}
	opts.EarthRadius = r

	s := &State{
		frame:   frame,
		plot:    frame.Plot(),
		from:    from,
		to:      to,
		samples: append([]Sample(nil), samples...),
		opts:    opts,

		earthRadius: r,
	}

	s.angle = geo.AngularSeparation(from.Point, to.Point)
	s.halfAngle = s.angle / 2
	s.effAngle = geo.EffectiveAngle(s.angle)
	s.sagitta = geo.SagittaHeight(s.angle, r)
	s.chord = geo.ChordLength(s.angle, r)
	s.distance = geo.PathDistance(s.angle, r)
	s.angularStep = s.angle / float64(len(samples))

	s.stats = Statistics(s.samples, s.angle, r)

	posMin := math.Min(math.Min(from.Elevation, to.Elevation), s.stats.MinRaw)
	posMax := math.Max(math.Max(from.Top(), to.Top()), s.stats.MaxEarth)

	fit := terrainFit
	if opts.UseFullElevation {
		fit = fullElevationFit
	} else {
		s.downShift = math.Floor(posMin/roundTo) * roundTo
	}

	span := posMax - s.downShift
	if !(span > 0) {
		span = 1
	}
	s.scaleH = fit * s.plot.H / span

	antennaShift := math.Max(from.Top(), to.Top()) * math.Sin(s.effAngle/2)
	s.halfway = s.plot.W/2 - (antennaPadding + antennaShift*s.scaleH)
	s.centerX = s.plot.X + s.plot.W/2
	s.centerY = s.plot.Y
	s.stepX = s.halfway * 2 / float64(len(samples))

	s.slopeLeft = from.Elevation * s.scaleH
	s.slopeRight = to.Elevation * s.scaleH

	return s, true
}

// Frame returns the surface size the layout was computed for.
func (s *State) Frame() Frame { return s.frame }

// Plot returns the plot area.
func (s *State) Plot() Rect { return s.plot }

// Endpoints returns the two path endpoints.
func (s *State) Endpoints() (from, to geo.Endpoint) { return s.from, s.to }

// Options returns the options the layout was computed with.
func (s *State) Options() Options { return s.opts }

// Len returns the number of samples.
func (s *State) Len() int { return len(s.samples) }

// Sample returns sample i.
func (s *State) Sample(i int) Sample { return s.samples[i] }

// Samples returns a copy of the sample buffer.
func (s *State) Samples() []Sample { return append([]Sample(nil), s.samples...) }

// Stats returns elevation statistics over the samples.
func (s *State) Stats() Stats { return s.stats }

// EarthRadius returns the radius used for curvature, in meters.
func (s *State) EarthRadius() float64 { return s.earthRadius }

// Angle returns the great-circle angle between the endpoints in radians.
func (s *State) Angle() float64 { return s.angle }

// HalfAngle returns Angle()/2.
func (s *State) HalfAngle() float64 { return s.halfAngle }

// EffectiveAngle returns the angle used to tilt the antenna masts; zero for short paths.
func (s *State) EffectiveAngle() float64 { return s.effAngle }

// Sagitta returns the Earth's bulge over the path in meters.
func (s *State) Sagitta() float64 { return s.sagitta }

// Chord returns the straight-line distance between the endpoints in meters.
func (s *State) Chord() float64 { return s.chord }

// Distance returns the path length along the surface in meters.
func (s *State) Distance() float64 { return s.distance }

// ScaleH returns vertical pixels per meter.
func (s *State) ScaleH() float64 { return s.scaleH }

// DownShift returns the elevation plotted at the baseline.
func (s *State) DownShift() float64 { return s.downShift }

// Center returns the screen point halfway between the mast bases.
func (s *State) Center() (x, y float64) { return s.centerX, s.centerY }

// Halfway returns the horizontal distance from the center to each mast base.
func (s *State) Halfway() float64 { return s.halfway }

// StepX returns the horizontal pixel step between samples.
func (s *State) StepX() float64 { return s.stepX }

// AngularStep returns the angle between consecutive samples.
func (s *State) AngularStep() float64 { return s.angularStep }

// SlopeCoefficients returns the slope correction factors of the two halves.
func (s *State) SlopeCoefficients() (left, right float64) { return s.slopeLeft, s.slopeRight }
