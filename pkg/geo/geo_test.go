package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngularSeparation(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{
			name: "Same Point",
			p1:   Point{Lat: 56.85, Lon: 60.6},
			p2:   Point{Lat: 56.85, Lon: 60.6},
			want: 0,
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: math.Pi / 180,
		},
		{
			name: "Pole to Pole",
			p1:   Point{Lat: 90, Lon: 0},
			p2:   Point{Lat: -90, Lon: 0},
			want: math.Pi,
		},
		{
			name: "Quarter meridian",
			p1:   Point{Lat: 0, Lon: 10},
			p2:   Point{Lat: 90, Lon: 10},
			want: math.Pi / 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngularSeparation(tt.p1, tt.p2)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAngularSeparation_Properties(t *testing.T) {
	points := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 51.5074, Lon: -0.1278},
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: -33.86, Lon: 151.21},
		{Lat: 89.9, Lon: -179.9},
		{Lat: -45, Lon: 179.9},
	}

	for _, a := range points {
		assert.Zero(t, AngularSeparation(a, a), "self separation of %v", a)
		for _, b := range points {
			ab := AngularSeparation(a, b)
			ba := AngularSeparation(b, a)
			assert.InDelta(t, ab, ba, 1e-12, "symmetry %v <-> %v", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, math.Pi)
		}
	}
}

func TestPathDistance_Monotonic(t *testing.T) {
	origin := Point{Lat: 10, Lon: 20}
	prev := -1.0
	for lon := 20.0; lon <= 170; lon += 5 {
		d := PathDistance(AngularSeparation(origin, Point{Lat: 10, Lon: lon}), EarthRadius)
		assert.Greater(t, d, prev, "lon %v", lon)
		prev = d
	}
}

func TestSagittaAndChord(t *testing.T) {
	assert.Zero(t, SagittaHeight(0, EarthRadius))
	assert.Zero(t, ChordLength(0, EarthRadius))

	// 100 km path: bulge is roughly d^2 / 8R.
	ang := 100000.0 / EarthRadius
	assert.InDelta(t, 100000.0*100000.0/(8*EarthRadius), SagittaHeight(ang, EarthRadius), 0.01)
	// The chord falls short of the arc by about d^3 / 24R^2, ~1.03 m here.
	assert.InDelta(t, 2*EarthRadius*math.Sin(ang/2), ChordLength(ang, EarthRadius), 1e-9)
	assert.InDelta(t, 100000.0-1e15/(24*EarthRadius*EarthRadius), ChordLength(ang, EarthRadius), 0.01)

	// Half the globe: bulge equals the radius.
	assert.InDelta(t, EarthRadius, SagittaHeight(math.Pi, EarthRadius), 1e-6)
}

func TestEffectiveAngle(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  float64
	}{
		{"Zero", 0, 0},
		{"BelowThreshold", 0.0499, 0},
		{"AtThreshold", SmallAngleThreshold, SmallAngleThreshold},
		{"Large", 0.3, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveAngle(tt.angle))
		})
	}
}

func TestPathDistance_KnownRoutes(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{
			name: "London to Paris",
			p1:   Point{Lat: 51.5074, Lon: -0.1278},
			p2:   Point{Lat: 48.8566, Lon: 2.3522},
			want: 344000,
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: 111319,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PathDistance(AngularSeparation(tt.p1, tt.p2), 6371000)
			margin := tt.want * 0.01
			if math.Abs(got-tt.want) > margin {
				t.Errorf("PathDistance() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{"North", Point{Lat: 0, Lon: 0}, Point{Lat: 1, Lon: 0}, 0},
		{"East", Point{Lat: 0, Lon: 0}, Point{Lat: 0, Lon: 1}, 90},
		{"South", Point{Lat: 1, Lon: 0}, Point{Lat: 0, Lon: 0}, 180},
		{"West", Point{Lat: 0, Lon: 1}, Point{Lat: 0, Lon: 0}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(tt.p1, tt.p2), 1e-9)
		})
	}
}
