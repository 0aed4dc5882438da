package terrain

import (
	"context"
	"fmt"

	"hamprofile/pkg/geo"
)

// ElevationSource looks up ground elevations in meters for a batch of points.
type ElevationSource interface {
	Elevations(ctx context.Context, pts []geo.Point) ([]float64, error)
	Name() string
}

// GridSource serves elevations from a local grid such as ETOPO1.
type GridSource struct {
	getter ElevationGetter
}

// NewGridSource creates a source over the given getter.
func NewGridSource(g ElevationGetter) *GridSource {
	return &GridSource{getter: g}
}

// Name implements ElevationSource.
func (g *GridSource) Name() string { return "grid" }

// Elevations implements ElevationSource.
func (g *GridSource) Elevations(ctx context.Context, pts []geo.Point) ([]float64, error) {
	out := make([]float64, len(pts))
	for i, p := range pts {
		if i%256 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		v, err := g.getter.GetElevation(p.Lat, p.Lon)
		if err != nil {
			return nil, fmt.Errorf("elevation at %.5f,%.5f: %w", p.Lat, p.Lon, err)
		}
		out[i] = float64(v)
	}
	return out, nil
}
