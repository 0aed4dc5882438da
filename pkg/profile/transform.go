package profile

import "math"

// ScreenPoint is a position on the drawing surface in pixels.
type ScreenPoint struct {
	X, Y float64
}

// CurvatureCorrection returns the Earth's bulge at sample i in meters, or zero
// when the chart is drawn without the Earth arc.
func (s *State) CurvatureCorrection(i int) float64 {
	if !s.opts.UseEarthArc {
		return 0
	}
	return s.bulge(i)
}

func (s *State) bulge(i int) float64 {
	a := offsetAngle(i, len(s.samples), s.angularStep)
	return s.earthRadius*math.Cos(a) - s.earthRadius*math.Cos(s.halfAngle)
}

// SlopeCorrection returns the horizontal pixel shift of sample i. Each half of
// the profile leans with its endpoint so the terrain meets the mast bases,
// which are drawn tilted along the Earth's radius.
func (s *State) SlopeCorrection(i int) float64 {
	n := len(s.samples)
	a := offsetAngle(i, n, s.angularStep)
	if float64(i) < float64(n)/2 {
		return s.slopeLeft * math.Sin(a)
	}
	return s.slopeRight * math.Sin(a)
}

// Project maps sample i to whole-pixel screen coordinates.
func (s *State) Project(i int) ScreenPoint {
	value := (s.samples[i].Elevation - s.downShift + s.CurvatureCorrection(i)) * s.scaleH
	x := s.centerX - s.halfway + float64(i)*s.stepX + s.SlopeCorrection(i)
	return ScreenPoint{
		X: math.Floor(x),
		Y: math.Floor(s.centerY - value),
	}
}

// Trace projects every sample and builds the matching hit index in one pass.
func (s *State) Trace() ([]ScreenPoint, *HitIndex) {
	pts := make([]ScreenPoint, len(s.samples))
	idx := &HitIndex{regions: make([]Region, len(s.samples))}
	for i := range s.samples {
		p := s.Project(i)
		pts[i] = p
		idx.regions[i] = regionAt(p, i, s.samples[i].Elevation)
	}
	return pts, idx
}

// EarthSurface returns the sea-level arc under the path, one point per sample.
func (s *State) EarthSurface() []ScreenPoint {
	pts := make([]ScreenPoint, len(s.samples))
	for i := range s.samples {
		pts[i] = ScreenPoint{
			X: s.centerX - s.halfway + float64(i)*s.stepX,
			Y: s.centerY - s.bulge(i)*s.scaleH,
		}
	}
	return pts
}

// MastBase returns the foot of the mast on the given side.
func (s *State) MastBase(side Side) ScreenPoint {
	if side == Left {
		return ScreenPoint{X: s.centerX - s.halfway, Y: s.centerY}
	}
	return ScreenPoint{X: s.centerX + s.halfway, Y: s.centerY}
}

// MastTilt returns the rotation of the mast on the given side in radians.
func (s *State) MastTilt(side Side) float64 {
	if side == Left {
		return -s.effAngle / 2
	}
	return s.effAngle / 2
}

// MastHeights returns the pixel heights of the ground and antenna tip above
// the baseline for the given side.
func (s *State) MastHeights(side Side) (ground, tip float64) {
	ep := s.from
	if side == Right {
		ep = s.to
	}
	return (ep.Elevation - s.downShift) * s.scaleH, (ep.Top() - s.downShift) * s.scaleH
}

// AntennaTip returns the screen position of the antenna tip on the given side.
func (s *State) AntennaTip(side Side) ScreenPoint {
	_, h := s.MastHeights(side)
	tilt := s.effAngle / 2
	if side == Left {
		return ScreenPoint{
			X: s.centerX - s.halfway - h*math.Sin(tilt),
			Y: s.centerY - h*math.Cos(tilt),
		}
	}
	return ScreenPoint{
		X: s.centerX + s.halfway + h*math.Sin(tilt),
		Y: s.centerY - h*math.Cos(tilt),
	}
}
