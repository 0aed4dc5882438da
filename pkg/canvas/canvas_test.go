package canvas

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamprofile/pkg/chart"
	"hamprofile/pkg/geo"
	"hamprofile/pkg/profile"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

func assertPixel(t *testing.T, c *Canvas, x, y int, want color.RGBA) {
	t.Helper()
	r, g, b, a := c.Image().At(x, y).RGBA()
	got := []float64{float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8)}
	exp := []float64{float64(want.R), float64(want.G), float64(want.B), float64(want.A)}
	assert.InDeltaSlice(t, exp, got, 2, "pixel %d,%d", x, y)
}

func TestCanvas_Size(t *testing.T) {
	c := New(40, 30)
	defer c.Close()
	w, h := c.Size()
	assert.Equal(t, 40.0, w)
	assert.Equal(t, 30.0, h)
}

func TestCanvas_FillRect(t *testing.T) {
	c := New(40, 30)
	defer c.Close()

	c.SetFillColor(red)
	c.FillRect(0, 0, 40, 30)
	assertPixel(t, c, 20, 15, red)

	// Negative sizes extend up and left
	c.SetFillColor(blue)
	c.FillRect(40, 30, -10, -10)
	assertPixel(t, c, 35, 25, blue)
	assertPixel(t, c, 5, 5, red)
	assert.NoError(t, c.Err())
}

func TestCanvas_SaveRestore(t *testing.T) {
	c := New(40, 30)
	defer c.Close()

	c.SetFillColor(red)
	c.Save()
	c.SetFillColor(blue)
	c.Translate(100, 100)
	c.Restore()

	// Both the colour and the transform are back
	c.FillRect(0, 0, 10, 10)
	assertPixel(t, c, 5, 5, red)

	// Unbalanced Restore is ignored
	assert.NotPanics(t, c.Restore)
}

func TestCanvas_PathFillPreserved(t *testing.T) {
	c := New(40, 30)
	defer c.Close()

	c.BeginPath()
	c.Rect(0, 0, 20, 30)
	c.SetFillColor(red)
	c.Fill()
	// Path survives Fill
	c.SetFillColor(blue)
	c.Fill()
	assertPixel(t, c, 10, 15, blue)

	// BeginPath discards it
	c.BeginPath()
	c.SetFillColor(red)
	c.Fill()
	assertPixel(t, c, 10, 15, blue)
}

func TestCanvas_Clip(t *testing.T) {
	c := New(40, 30)
	defer c.Close()

	c.Save()
	c.BeginPath()
	c.Rect(0, 0, 20, 30)
	c.Clip()
	c.SetFillColor(red)
	c.FillRect(0, 0, 40, 30)
	c.Restore()

	assertPixel(t, c, 10, 15, red)
	assert.NoError(t, c.Err())
	assert.Empty(t, c.stack)
}

func TestCanvas_SetFont(t *testing.T) {
	c := New(10, 10)
	defer c.Close()

	c.SetFont("18px serif")
	assert.Equal(t, 18.0, c.cur.fontSize)
	c.SetFont("bold 10.5px sans-serif")
	assert.Equal(t, 10.5, c.cur.fontSize)
	c.SetFont("serif")
	assert.Equal(t, 10.5, c.cur.fontSize)

	c.FillText("123", 5, 5)
	assert.NoError(t, c.Err())
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		align    chart.TextAlign
		baseline chart.TextBaseline
		ax, ay   float64
	}{
		{chart.AlignStart, chart.BaselineAlphabetic, 0, 0},
		{chart.AlignCenter, chart.BaselineBottom, 0.5, -0.2},
		{chart.AlignEnd, chart.BaselineMiddle, 1, 0.3},
		{chart.AlignEnd, chart.BaselineTop, 1, 0.8},
	}
	for _, tt := range tests {
		ax, ay := anchor(tt.align, tt.baseline)
		assert.Equal(t, tt.ax, ax)
		assert.Equal(t, tt.ay, ay)
	}
}

func TestCanvas_RenderChart(t *testing.T) {
	c := New(640, 320)
	defer c.Close()

	from := geo.Endpoint{Point: geo.Point{Lat: 56.8, Lon: 60.6}, Elevation: 270, AntennaHeight: 25}
	to := geo.Endpoint{Point: geo.Point{Lat: 57.1, Lon: 61.2}, Elevation: 240, AntennaHeight: 40}
	samples := make([]profile.Sample, 200)
	for i := range samples {
		samples[i].Elevation = 240 + float64((i*37)%90)
	}

	r := chart.New(c)
	r.Render(from, to, samples, true, false)
	r.SetStaticMarker(chart.MarkerAt(50))
	require.NoError(t, c.Err())

	// Frame background outside the plot area
	assertPixel(t, c, 3, 3, color.RGBA{0xf0, 0xf0, 0xf0, 0xff})

	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())

	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, c.SavePNG(path))
}
