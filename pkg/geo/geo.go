package geo

import (
	"math"
)

const (
	// EarthRadius is the spherical Earth radius in meters used for path geometry.
	EarthRadius = 6372795.0

	// SmallAngleThreshold is the angular separation (radians, ~300 km) below which
	// curvature-dependent visual corrections are suppressed.
	SmallAngleThreshold = 0.05

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Endpoint is one end of a radio path: a location with ground elevation and
// antenna height above ground, both in meters.
type Endpoint struct {
	Point
	Elevation     float64 `json:"elevation"`
	AntennaHeight float64 `json:"antenna_height"`
}

// Top returns the elevation of the antenna tip above sea level.
func (e Endpoint) Top() float64 {
	return e.Elevation + e.AntennaHeight
}

// AngularSeparation returns the great-circle angle between two points in radians.
// The atan2 form stays accurate for both tiny and near-antipodal separations.
func AngularSeparation(p1, p2 Point) float64 {
	lat1 := p1.Lat * degToRad
	lat2 := p2.Lat * degToRad
	delta := (p2.Lon - p1.Lon) * degToRad

	cl1, sl1 := math.Cos(lat1), math.Sin(lat1)
	cl2, sl2 := math.Cos(lat2), math.Sin(lat2)
	cd, sd := math.Cos(delta), math.Sin(delta)

	y := math.Hypot(cl2*sd, cl1*sl2-sl1*cl2*cd)
	x := sl1*sl2 + cl1*cl2*cd

	return math.Atan2(y, x)
}

// PathDistance converts a great-circle angle into a surface distance.
func PathDistance(angle, earthRadius float64) float64 {
	return angle * earthRadius
}

// SagittaHeight returns the bulge of the Earth's surface above the chord
// spanning the given angle.
func SagittaHeight(angle, earthRadius float64) float64 {
	return earthRadius * (1 - math.Cos(angle/2))
}

// ChordLength returns the straight-line distance through the Earth between the
// ends of an arc of the given angle.
func ChordLength(angle, earthRadius float64) float64 {
	return 2 * earthRadius * math.Sin(angle/2)
}

// EffectiveAngle returns the angle used for visual curvature effects.
// Short paths are treated as flat.
func EffectiveAngle(angle float64) float64 {
	if angle < SmallAngleThreshold {
		return 0
	}
	return angle
}

// Bearing calculates the initial bearing (antenna azimuth) from p1 to p2 in degrees.
func Bearing(p1, p2 Point) float64 {
	lat1 := p1.Lat * degToRad
	lat2 := p2.Lat * degToRad
	dLon := (p2.Lon - p1.Lon) * degToRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(math.Atan2(y, x)*radToDeg+360.0, 360.0)
}
