package profile

const (
	hitHalfWidth  = 1.0
	hitHalfHeight = 50.0
)

// Box is a screen-space rectangle with inclusive bounds.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Contains reports whether the point lies inside or on the edge of the box.
func (b Box) Contains(x, y float64) bool {
	return x >= b.X1 && x <= b.X2 && y >= b.Y1 && y <= b.Y2
}

// Hit identifies the sample under the pointer.
type Hit struct {
	Index     int     `json:"index"`
	Elevation float64 `json:"elevation"`
}

// Region is the clickable area around one plotted sample.
type Region struct {
	Box
	Hit
}

func regionAt(p ScreenPoint, i int, elevation float64) Region {
	return Region{
		Box: Box{
			X1: p.X - hitHalfWidth,
			Y1: p.Y - hitHalfHeight,
			X2: p.X + hitHalfWidth,
			Y2: p.Y + hitHalfHeight,
		},
		Hit: Hit{Index: i, Elevation: elevation},
	}
}

// HitIndex maps screen points back to samples. It is built by State.Trace and
// is read-only afterwards.
type HitIndex struct {
	regions []Region
}

// Hit returns the lowest-index region containing the point.
// A linear scan is fine for the few hundred samples a chart holds.
func (h *HitIndex) Hit(x, y float64) (Hit, bool) {
	if h == nil {
		return Hit{}, false
	}
	for _, r := range h.regions {
		if r.Contains(x, y) {
			return r.Hit, true
		}
	}
	return Hit{}, false
}

// Len returns the number of regions.
func (h *HitIndex) Len() int {
	if h == nil {
		return 0
	}
	return len(h.regions)
}

// Regions returns a copy of the regions in sample order.
func (h *HitIndex) Regions() []Region {
	if h == nil {
		return nil
	}
	return append([]Region(nil), h.regions...)
}
