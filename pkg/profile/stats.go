package profile

import "math"

// Stats summarizes the sample elevations, raw and with the Earth's bulge added.
type Stats struct {
	MinRaw   float64 `json:"min_raw"`
	MaxRaw   float64 `json:"max_raw"`
	MinEarth float64 `json:"min_earth"`
	MaxEarth float64 `json:"max_earth"`
	Average  float64 `json:"average"`
}

// Statistics scans samples spread over a path of the given angle.
func Statistics(samples []Sample, angle, earthRadius float64) Stats {
	var st Stats
	if len(samples) == 0 {
		return st
	}

	n := len(samples)
	step := angle / float64(n)
	base := earthRadius * math.Cos(angle/2)

	var sum float64
	for i, smp := range samples {
		raw := smp.Elevation
		earth := raw + earthRadius*math.Cos(offsetAngle(i, n, step)) - base
		sum += raw

		if i == 0 {
			st.MinRaw, st.MaxRaw = raw, raw
			st.MinEarth, st.MaxEarth = earth, earth
			continue
		}
		st.MinRaw = math.Min(st.MinRaw, raw)
		st.MaxRaw = math.Max(st.MaxRaw, raw)
		st.MinEarth = math.Min(st.MinEarth, earth)
		st.MaxEarth = math.Max(st.MaxEarth, earth)
	}
	st.Average = sum / float64(n)
	return st
}

// offsetAngle is the angle of sample i measured from the middle of the path.
func offsetAngle(i, n int, step float64) float64 {
	return (float64(i) - float64(n)/2) * step
}
