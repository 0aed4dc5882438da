package terrain

import (
	"math"

	"hamprofile/pkg/geo"
)

// Report summarises how far the straight link between the antenna tips
// passes above the terrain.
type Report struct {
	Clear       bool      `json:"clear"`
	WorstIndex  int       `json:"worst_index"`
	WorstMargin float64   `json:"worst_margin_m"`
	Margins     []float64 `json:"-"`
}

// Clearance checks the link between the antenna tips of from and to against
// terrain elevations sampled evenly in angle along the path. The Earth's
// bulge is added to each sample the same way the chart draws it, so a
// negative margin is exactly where the profile crosses the link line.
// The link is clear when every margin is at least minClearance meters.
func Clearance(from, to geo.Endpoint, elevations []float64, earthRadius, minClearance float64) Report {
	n := len(elevations)
	if n == 0 {
		return Report{Clear: true, WorstIndex: -1}
	}
	if earthRadius <= 0 {
		earthRadius = geo.EarthRadius
	}

	angle := geo.AngularSeparation(from.Point, to.Point)
	half := angle / 2
	step := angle / float64(n)
	h1, h2 := from.Top(), to.Top()

	rep := Report{
		Clear:       true,
		WorstIndex:  -1,
		WorstMargin: math.Inf(1),
		Margins:     make([]float64, n),
	}
	for i, elev := range elevations {
		a := (float64(i) - float64(n)/2) * step
		bulge := earthRadius*math.Cos(a) - earthRadius*math.Cos(half)

		t := float64(i) / float64(n)
		link := h1 + (h2-h1)*t

		m := link - (elev + bulge)
		rep.Margins[i] = m
		if m < rep.WorstMargin {
			rep.WorstMargin = m
			rep.WorstIndex = i
		}
	}
	rep.Clear = rep.WorstMargin >= minClearance
	return rep
}
