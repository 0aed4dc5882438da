package terrain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"hamprofile/pkg/geo"
	"hamprofile/pkg/logging"
	"hamprofile/pkg/profile"
)

// Sampler acquires the elevation samples for a chart.
type Sampler struct {
	source ElevationSource
	logger *slog.Logger
}

// NewSampler creates a Sampler reading from src.
func NewSampler(src ElevationSource, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{source: src, logger: logger}
}

// Source returns the underlying elevation source.
func (s *Sampler) Source() ElevationSource { return s.source }

// Sample returns n elevation samples spaced evenly in angle from `from`
// towards `to`, together with their locations.
func (s *Sampler) Sample(ctx context.Context, from, to geo.Point, n int) ([]geo.Point, []profile.Sample, error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("need at least 2 samples, got %d", n)
	}
	start := time.Now()

	pts := geo.Interpolate(from, to, n)
	elev, err := s.source.Elevations(ctx, pts)
	if err != nil {
		return nil, nil, fmt.Errorf("sample %s: %w", s.source.Name(), err)
	}
	if len(elev) != len(pts) {
		return nil, nil, fmt.Errorf("sample %s: got %d elevations for %d points", s.source.Name(), len(elev), len(pts))
	}

	samples := make([]profile.Sample, n)
	for i, v := range elev {
		samples[i].Elevation = v
		logging.Trace(s.logger, "Sample", "i", i, "lat", pts[i].Lat, "lon", pts[i].Lon, "elevation", v)
	}

	s.logger.Debug("Profile sampled",
		"source", s.source.Name(),
		"samples", n,
		"duration", time.Since(start))
	return pts, samples, nil
}

// FillEndpoints replaces NaN endpoint ground elevations with values from the
// source. Endpoints that already carry an elevation are left alone.
func (s *Sampler) FillEndpoints(ctx context.Context, from, to *geo.Endpoint) error {
	var pts []geo.Point
	var targets []*geo.Endpoint
	for _, ep := range []*geo.Endpoint{from, to} {
		if math.IsNaN(ep.Elevation) {
			pts = append(pts, ep.Point)
			targets = append(targets, ep)
		}
	}
	if len(pts) == 0 {
		return nil
	}

	elev, err := s.source.Elevations(ctx, pts)
	if err != nil {
		return fmt.Errorf("endpoint elevation: %w", err)
	}
	if len(elev) != len(pts) {
		return fmt.Errorf("endpoint elevation: got %d values for %d points", len(elev), len(pts))
	}
	for i, ep := range targets {
		ep.Elevation = elev[i]
	}
	return nil
}
