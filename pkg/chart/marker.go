package chart

import "strconv"

// Marker is an optional highlighted sample index.
// The zero value is NoMarker.
type Marker struct {
	index int
	set   bool
}

// NoMarker returns the absent marker.
func NoMarker() Marker { return Marker{} }

// MarkerAt returns a marker on sample i.
func MarkerAt(i int) Marker { return Marker{index: i, set: true} }

// Index returns the marked sample and whether a marker is present.
func (m Marker) Index() (int, bool) { return m.index, m.set }

func (m Marker) String() string {
	if !m.set {
		return "none"
	}
	return strconv.Itoa(m.index)
}
