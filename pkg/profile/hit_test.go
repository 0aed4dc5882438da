package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitIndex(t *testing.T) {
	a := ep(45, 7, 100, 50)
	samples := flatSamples(4, 100)
	samples[1].Elevation = 150

	s, ok := Layout(testFrame, a, a, samples, Options{})
	require.True(t, ok)

	pts, idx := s.Trace()
	require.Equal(t, 4, idx.Len())

	tests := []struct {
		name    string
		x, y    float64
		wantOK  bool
		wantIdx int
	}{
		{"OnPoint", pts[1].X, pts[1].Y, true, 1},
		{"InsideBox", pts[2].X + 0.5, pts[2].Y - 20, true, 2},
		{"RightEdgeInclusive", pts[0].X + 1, pts[0].Y, true, 0},
		{"LeftEdgeInclusive", pts[3].X - 1, pts[3].Y, true, 3},
		{"TopEdgeInclusive", pts[1].X, pts[1].Y - 50, true, 1},
		{"BottomEdgeInclusive", pts[1].X, pts[1].Y + 50, true, 1},
		{"JustOutsideX", pts[0].X + 1.01, pts[0].Y, false, 0},
		{"JustOutsideY", pts[1].X, pts[1].Y - 50.01, false, 0},
		{"FarAway", -500, -500, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := idx.Hit(tt.x, tt.y)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, hit.Index)
				assert.Equal(t, samples[tt.wantIdx].Elevation, hit.Elevation)
			}
		})
	}
}

func TestHitIndex_FirstMatchWins(t *testing.T) {
	a := ep(45, 7, 100, 50)
	samples := flatSamples(2000, 100) // sub-pixel spacing, boxes overlap

	s, ok := Layout(testFrame, a, a, samples, Options{})
	require.True(t, ok)

	pts, idx := s.Trace()
	target := pts[1000]

	hit, ok := idx.Hit(target.X, target.Y)
	require.True(t, ok)

	first := -1
	for i, r := range idx.Regions() {
		if r.Contains(target.X, target.Y) {
			first = i
			break
		}
	}
	assert.Equal(t, first, hit.Index)
	assert.Less(t, hit.Index, 1000)
}

func TestHitIndex_Nil(t *testing.T) {
	var idx *HitIndex
	_, ok := idx.Hit(0, 0)
	assert.False(t, ok)
	assert.Zero(t, idx.Len())
	assert.Nil(t, idx.Regions())
}
