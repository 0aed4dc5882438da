package chart

import (
	"fmt"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamprofile/pkg/geo"
	"hamprofile/pkg/profile"
)

// recorder is a Surface that logs every call.
type recorder struct {
	w, h  float64
	calls []string
	texts []string
	fills []color.Color
	depth int
}

func newRecorder() *recorder { return &recorder{w: 575, h: 335} }

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Size() (float64, float64)   { return r.w, r.h }
func (r *recorder) BeginPath()                  { r.log("BeginPath") }
func (r *recorder) MoveTo(x, y float64)         { r.log("MoveTo %g %g", x, y) }
func (r *recorder) LineTo(x, y float64)         { r.log("LineTo %g %g", x, y) }
func (r *recorder) ClosePath()                  { r.log("ClosePath") }
func (r *recorder) Rect(x, y, w, h float64)     { r.log("Rect %g %g %g %g", x, y, w, h) }
func (r *recorder) Fill()                       { r.log("Fill") }
func (r *recorder) Stroke()                     { r.log("Stroke") }
func (r *recorder) Clip()                       { r.log("Clip") }
func (r *recorder) FillRect(x, y, w, h float64) { r.log("FillRect %g %g %g %g", x, y, w, h) }
func (r *recorder) SetFillColor(c color.Color) {
	r.fills = append(r.fills, c)
	r.log("SetFillColor")
}
func (r *recorder) SetStrokeColor(color.Color) { r.log("SetStrokeColor") }
func (r *recorder) SetLineWidth(w float64)     { r.log("SetLineWidth %g", w) }
func (r *recorder) Save() {
	r.depth++
	r.log("Save")
}
func (r *recorder) Restore() {
	r.depth--
	r.log("Restore")
}
func (r *recorder) Translate(x, y float64)         { r.log("Translate %g %g", x, y) }
func (r *recorder) Rotate(a float64)               { r.log("Rotate %g", a) }
func (r *recorder) Scale(x, y float64)             { r.log("Scale %g %g", x, y) }
func (r *recorder) SetFont(string)                 { r.log("SetFont") }
func (r *recorder) SetTextAlign(TextAlign)         { r.log("SetTextAlign") }
func (r *recorder) SetTextBaseline(TextBaseline)   { r.log("SetTextBaseline") }
func (r *recorder) FillText(s string, x, y float64) { r.texts = append(r.texts, s) }
func (r *recorder) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	r.log("BezierCurveTo %g %g", x, y)
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.calls, r.texts, r.fills = nil, nil, nil
}

func endpoints() (geo.Endpoint, geo.Endpoint) {
	a := geo.Endpoint{Point: geo.Point{Lat: 56.0, Lon: 60.0}, Elevation: 250, AntennaHeight: 30}
	b := geo.Endpoint{Point: geo.Point{Lat: 56.2, Lon: 60.5}, Elevation: 310, AntennaHeight: 20}
	return a, b
}

func hills(n int) []profile.Sample {
	out := make([]profile.Sample, n)
	for i := range out {
		out[i].Elevation = 250 + float64(i%7)*15
	}
	return out
}

type passLog struct {
	passes []Pass
}

func (p *passLog) observe(pass Pass, _ time.Duration) { p.passes = append(p.passes, pass) }

func TestRender_NilSurface(t *testing.T) {
	a, b := endpoints()
	r := New(nil)
	assert.NotPanics(t, func() {
		r.Render(a, b, hills(50), true, false)
		r.Redraw()
		r.SetStaticMarker(MarkerAt(3))
	})
	assert.Nil(t, r.State())
}

func TestRender_TooFewSamples(t *testing.T) {
	a, b := endpoints()
	rec := newRecorder()
	var log passLog
	r := New(rec, WithObserver(log.observe))

	r.Render(a, b, hills(1), true, false)

	assert.Equal(t, []Pass{PassEmpty}, log.passes)
	assert.Nil(t, r.State())
	assert.Nil(t, r.HitIndex())
	assert.Contains(t, rec.calls, "Rect 0 0 575 335")
	assert.Contains(t, rec.calls, "Rect 60 15 500 300")
	assert.Empty(t, rec.texts)

	_, ok := r.HitTest(100, 100)
	assert.False(t, ok)
}

func TestRender_Full(t *testing.T) {
	a, b := endpoints()
	rec := newRecorder()
	var log passLog
	r := New(rec, WithObserver(log.observe))

	samples := hills(120)
	r.Render(a, b, samples, true, false)

	require.NotNil(t, r.State())
	assert.Equal(t, []Pass{PassFull}, log.passes)
	assert.Equal(t, len(samples), r.HitIndex().Len())
	assert.Zero(t, rec.depth, "unbalanced Save/Restore")
	assert.Equal(t, 2, rec.count("BezierCurveTo"), "earth arc")
	assert.Equal(t, len(samples)-1, rec.count("FillRect"))
	assert.Contains(t, rec.calls, "Clip")
	assert.Contains(t, rec.texts, "0 km")
	assert.NotEmpty(t, rec.texts)
}

func TestRender_WithoutEarthArc(t *testing.T) {
	a, b := endpoints()
	rec := newRecorder()
	r := New(rec)

	r.Render(a, b, hills(40), false, true)

	require.NotNil(t, r.State())
	assert.Zero(t, rec.count("BezierCurveTo"))
	// Full-elevation axis starts at sea level.
	assert.Contains(t, rec.texts, "0")
}

func TestRender_ClearsMarkers(t *testing.T) {
	a, b := endpoints()
	r := New(newRecorder())
	r.Render(a, b, hills(30), true, false)
	r.SetStaticMarker(MarkerAt(4))
	r.SetDynamicMarker(MarkerAt(9))

	r.Render(a, b, hills(30), true, false)

	assert.Equal(t, NoMarker(), r.StaticMarker())
	assert.Equal(t, NoMarker(), r.DynamicMarker())
}

func TestSetMarker_RedrawsOnlyOnChange(t *testing.T) {
	a, b := endpoints()
	var log passLog
	r := New(newRecorder(), WithObserver(log.observe))
	r.Render(a, b, hills(30), true, false)

	r.SetStaticMarker(MarkerAt(5))
	r.SetStaticMarker(MarkerAt(5))
	r.SetDynamicMarker(NoMarker())
	r.SetDynamicMarker(MarkerAt(7))
	r.SetDynamicMarker(MarkerAt(7))

	assert.Equal(t, []Pass{PassFull, PassCached, PassCached}, log.passes)
	idx, ok := r.StaticMarker().Index()
	assert.True(t, ok)
	assert.Equal(t, 5, idx)
}

func TestRedraw_KeepsLayout(t *testing.T) {
	a, b := endpoints()
	rec := newRecorder()
	r := New(rec)
	r.Render(a, b, hills(60), true, false)

	state, hits := r.State(), r.HitIndex()
	r.Redraw()

	assert.Same(t, state, r.State())
	assert.Same(t, hits, r.HitIndex())
}

func TestMarkers_Drawn(t *testing.T) {
	a, b := endpoints()
	rec := newRecorder()
	r := New(rec)
	samples := hills(30)
	r.Render(a, b, samples, true, false)

	rec.reset()
	r.SetStaticMarker(MarkerAt(3))
	assert.Contains(t, rec.texts, "295 m")
	assert.Contains(t, rec.fills, color.Color(colorStaticMarker))

	rec.reset()
	r.SetDynamicMarker(MarkerAt(3))
	assert.Contains(t, rec.fills, color.Color(colorDynamicMarker))
}

func TestMarkers_OutOfRangeSkipped(t *testing.T) {
	a, b := endpoints()
	rec := newRecorder()
	r := New(rec)
	r.Render(a, b, hills(10), true, false)

	rec.reset()
	r.SetStaticMarker(MarkerAt(10))
	assert.NotContains(t, rec.fills, color.Color(colorStaticMarker))

	rec.reset()
	r.SetDynamicMarker(MarkerAt(-1))
	assert.NotContains(t, rec.fills, color.Color(colorDynamicMarker))
}

func TestHitTest_Origin(t *testing.T) {
	a, b := endpoints()
	r := New(newRecorder(), WithOrigin(100, 40))
	r.Render(a, b, hills(50), true, false)

	regions := r.HitIndex().Regions()
	require.NotEmpty(t, regions)
	reg := regions[10]
	x := (reg.X1+reg.X2)/2 + 100
	y := (reg.Y1+reg.Y2)/2 + 40

	hit, ok := r.HitTest(x, y)
	require.True(t, ok)
	want, _ := r.HitIndex().Hit((reg.X1+reg.X2)/2, (reg.Y1+reg.Y2)/2)
	assert.Equal(t, want, hit)

	_, ok = r.HitTest(-500, -500)
	assert.False(t, ok)
}

func TestPass_String(t *testing.T) {
	assert.Equal(t, "empty", PassEmpty.String())
	assert.Equal(t, "full", PassFull.String())
	assert.Equal(t, "cached", PassCached.String())
	assert.Equal(t, "unknown", Pass(9).String())
}

func TestMarker(t *testing.T) {
	_, ok := NoMarker().Index()
	assert.False(t, ok)
	assert.Equal(t, Marker{}, NoMarker())
	assert.Equal(t, "none", NoMarker().String())

	i, ok := MarkerAt(0).Index()
	assert.True(t, ok)
	assert.Equal(t, 0, i)
}
