package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	p1 := Point{Lat: 0, Lon: 0}
	p2 := Point{Lat: 0, Lon: 10}

	pts := Interpolate(p1, p2, 10)
	require.Len(t, pts, 10)

	for i, p := range pts {
		assert.InDelta(t, 0, p.Lat, 1e-9, "point %d", i)
		assert.InDelta(t, float64(i), p.Lon, 1e-9, "point %d", i)
	}

	// Evenly spaced in angle along the arc.
	step := AngularSeparation(p1, p2) / 10
	for i := 1; i < len(pts); i++ {
		assert.InDelta(t, step, AngularSeparation(pts[i-1], pts[i]), 1e-9)
	}
}

func TestInterpolate_Degenerate(t *testing.T) {
	assert.Nil(t, Interpolate(Point{}, Point{Lat: 1}, 0))

	same := Point{Lat: 45, Lon: 7}
	for _, p := range Interpolate(same, same, 4) {
		assert.InDelta(t, same.Lat, p.Lat, 1e-9)
		assert.InDelta(t, same.Lon, p.Lon, 1e-9)
	}
}

func TestPathGeoJSON(t *testing.T) {
	p1 := Endpoint{Point: Point{Lat: 56.8, Lon: 60.6}, Elevation: 270, AntennaHeight: 20}
	p2 := Endpoint{Point: Point{Lat: 57.0, Lon: 61.0}, Elevation: 310, AntennaHeight: 15}
	samples := Interpolate(p1.Point, p2.Point, 5)

	fc := PathGeoJSON(p1, p2, samples, []float64{1, 2, 3, 4, 5})
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "from", fc.Features[0].Properties["role"])
	assert.Equal(t, "to", fc.Features[1].Properties["role"])
	assert.Equal(t, "path", fc.Features[2].Properties["role"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"LineString"`)
	assert.Contains(t, string(data), `"elevations_m"`)
}
