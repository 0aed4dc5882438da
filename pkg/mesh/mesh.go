// Package mesh picks readable gridline spacing for chart axes.
package mesh

import (
	"math"
	"strconv"
)

// Spec describes the gridlines chosen for one axis.
type Spec struct {
	RealStep         float64 // step in real-world units
	ScreenStep       float64 // step in pixels
	NumLines         int
	DigitsAfterPoint int
}

// Plan chooses a gridline step for an axis spanning screenExtent pixels that
// represents realExtent real-world units, aiming for about targetLines lines.
//
// Steps larger than 10 are truncated to a single significant digit (for
// example 347 becomes 300). If that yields far too many lines the step is
// inflated once by 1.5. Steps of 10 or less are used as-is with one decimal.
func Plan(screenExtent, realExtent float64, targetLines int) Spec {
	if targetLines <= 0 || !(screenExtent > 0) || !(realExtent > 0) ||
		math.IsInf(screenExtent, 0) || math.IsInf(realExtent, 0) {
		return Spec{}
	}

	scale := screenExtent / realExtent
	naive := realExtent / float64(targetLines)

	norm := naive
	pow := 1.0
	divisions := 0
	for norm > 10 {
		norm /= 10
		pow *= 10
		divisions++
	}

	if divisions == 0 {
		return Spec{
			RealStep:         naive,
			ScreenStep:       screenExtent / float64(targetLines),
			NumLines:         targetLines,
			DigitsAfterPoint: 1,
		}
	}

	s := Spec{RealStep: math.Floor(norm) * pow}
	s.ScreenStep = s.RealStep * scale
	s.NumLines = int(math.Ceil(screenExtent / s.ScreenStep))

	if float64(s.NumLines) > float64(targetLines)*1.5 {
		s.RealStep *= 1.5
		s.ScreenStep = s.RealStep * scale
		s.NumLines = int(math.Ceil(screenExtent / s.ScreenStep))
	}
	return s
}

// DistanceDigits returns the number of decimals used for kilometer labels on
// the distance axis of a path pathDistance meters long.
func DistanceDigits(pathDistance float64) int {
	switch {
	case pathDistance >= 12000:
		return 0
	case pathDistance >= 3000:
		return 1
	default:
		return 2
	}
}

// FormatElevation renders an elevation label.
func FormatElevation(v float64, digits int) string {
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// FormatKilometers renders a distance given in meters as a kilometer label.
func FormatKilometers(meters float64, digits int) string {
	return strconv.FormatFloat(meters/1000, 'f', digits, 64) + " km"
}
