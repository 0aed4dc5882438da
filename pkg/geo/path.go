package geo

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Interpolate returns n points spaced evenly in angle along the great circle
// from p1 to p2. Point i sits at fraction i/n of the arc, so the last point
// stops one step short of p2, matching the sample layout of the profile chart.
func Interpolate(p1, p2 Point, n int) []Point {
	if n <= 0 {
		return nil
	}

	a := s2.PointFromLatLng(s2.LatLngFromDegrees(p1.Lat, p1.Lon))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(p2.Lat, p2.Lon))

	out := make([]Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		ll := s2.LatLngFromPoint(s2.Interpolate(t, a, b))
		out[i] = Point{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
	}
	return out
}

// PathGeoJSON builds a FeatureCollection describing a radio path: the two
// endpoints and a line through the elevation sample locations.
// elevations may be nil; when given it must match samples in length.
func PathGeoJSON(p1, p2 Endpoint, samples []Point, elevations []float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, ep := range []Endpoint{p1, p2} {
		f := geojson.NewFeature(orb.Point{ep.Lon, ep.Lat})
		f.Properties["role"] = []string{"from", "to"}[i]
		f.Properties["elevation_m"] = ep.Elevation
		f.Properties["antenna_m"] = ep.AntennaHeight
		fc.Append(f)
	}

	line := make(orb.LineString, 0, len(samples)+1)
	for _, s := range samples {
		line = append(line, orb.Point{s.Lon, s.Lat})
	}
	line = append(line, orb.Point{p2.Lon, p2.Lat})

	path := geojson.NewFeature(line)
	path.Properties["role"] = "path"
	path.Properties["distance_m"] = PathDistance(AngularSeparation(p1.Point, p2.Point), EarthRadius)
	path.Properties["bearing_deg"] = Bearing(p1.Point, p2.Point)
	if len(elevations) == len(samples) && len(elevations) > 0 {
		path.Properties["elevations_m"] = elevations
	}
	fc.Append(path)

	return fc
}
