package chart

import (
	"image/color"
	"math"

	"hamprofile/pkg/mesh"
	"hamprofile/pkg/profile"
)

func (r *Renderer) drawBackground(w, h float64) {
	s := r.surface

	s.BeginPath()
	s.Rect(0, 0, w, h)
	s.SetFillColor(colorBackground)
	s.Fill()
	s.SetLineWidth(1)
	s.SetStrokeColor(colorBorder)
	s.Stroke()

	plot := profile.Frame{Width: w, Height: h}.Plot()
	s.BeginPath()
	s.Rect(plot.X, plot.Top(), plot.W, plot.H)
	s.SetFillColor(colorField)
	s.Fill()
}

func (r *Renderer) draw() {
	st := r.state
	s := r.surface
	frame := st.Frame()
	plot := st.Plot()

	r.drawBackground(frame.Width, frame.Height)
	r.drawMesh()

	s.Save()
	s.BeginPath()
	s.Rect(plot.X, plot.Top(), plot.W, plot.H)
	s.Clip()

	r.drawMast(profile.Left)
	r.drawMast(profile.Right)
	r.drawLink()
	if st.Options().UseEarthArc {
		r.drawEarthArc()
	}
	if r.seaLevel {
		r.drawSeaLevel()
	}
	r.drawProfile()
	r.drawMarker(r.static, colorStaticMarker)
	r.drawMarker(r.dynamic, colorDynamicMarker)

	s.Restore()
}

func (r *Renderer) drawMesh() {
	st := r.state
	s := r.surface
	plot := st.Plot()

	s.SetFont(labelFont)
	s.SetFillColor(colorLabel)
	s.SetLineWidth(1)
	s.SetStrokeColor(colorMesh)

	// Elevation axis.
	v := mesh.Plan(plot.H, plot.H/st.ScaleH(), targetLines)
	s.BeginPath()
	s.SetTextAlign(AlignEnd)
	s.SetTextBaseline(BaselineBottom)
	for i := 0; i < v.NumLines; i++ {
		y := math.Floor(plot.Y-float64(i)*v.ScreenStep) + 0.5
		s.MoveTo(plot.X-3, y)
		s.LineTo(plot.X+plot.W, y)
		label := mesh.FormatElevation(float64(i)*v.RealStep+st.DownShift(), v.DigitsAfterPoint)
		s.FillText(label, plot.X-3, y+5)
	}
	s.Stroke()

	// Distance axis, spanning the mast bases.
	hw := st.Halfway()
	cx, _ := st.Center()
	d := mesh.Plan(hw*2, st.Distance(), targetLines)
	digits := mesh.DistanceDigits(st.Distance())
	s.BeginPath()
	s.SetTextAlign(AlignCenter)
	s.SetTextBaseline(BaselineBottom)
	for i := 0; i < d.NumLines; i++ {
		x := math.Floor(cx-hw+float64(i)*d.ScreenStep) + 0.5
		s.MoveTo(x, plot.Y+2)
		s.LineTo(x, plot.Top())
		s.FillText(mesh.FormatKilometers(float64(i)*d.RealStep, digits), x, plot.Y+15)
	}
	s.Stroke()
}

// drawMast draws the ground post and antenna triangle of one endpoint,
// tilted along the Earth's radius at that end of the path.
func (r *Renderer) drawMast(side profile.Side) {
	st := r.state
	s := r.surface
	base := st.MastBase(side)
	ground, tip := st.MastHeights(side)

	s.Save()
	s.Translate(base.X+0.5, base.Y)
	s.Rotate(st.MastTilt(side))
	s.Scale(1, -1)

	s.BeginPath()
	s.SetStrokeColor(colorMast)
	s.SetLineWidth(1)
	s.MoveTo(0, 0)
	s.LineTo(0, ground)
	s.Stroke()

	s.BeginPath()
	s.SetStrokeColor(colorAntenna)
	s.MoveTo(-4, ground)
	s.LineTo(0, tip)
	s.LineTo(4, ground)
	s.ClosePath()
	s.Stroke()

	s.Restore()
}

func (r *Renderer) drawLink() {
	s := r.surface
	a := r.state.AntennaTip(profile.Left)
	b := r.state.AntennaTip(profile.Right)

	s.Save()
	s.BeginPath()
	s.MoveTo(a.X, a.Y)
	s.LineTo(b.X, b.Y)
	s.SetLineWidth(1)
	s.SetStrokeColor(colorLink)
	s.Stroke()
	s.Restore()
}

// drawEarthArc approximates the Earth's bulge between the mast bases with
// two cubic curves.
func (r *Renderer) drawEarthArc() {
	const (
		kA = 0.4
		kB = 0.5
		kC = 0.8
	)
	st := r.state
	s := r.surface
	cx, cy := st.Center()
	hw := st.Halfway()
	height := st.Sagitta() * st.ScaleH()

	s.BeginPath()
	s.MoveTo(cx-hw, cy)
	s.BezierCurveTo(cx-hw*kC, cy-height*kA, cx-hw*kB, cy-height, cx, cy-height)
	s.BezierCurveTo(cx+hw*kB, cy-height, cx+hw*kC, cy-height*kA, cx+hw, cy)
	s.SetLineWidth(2)
	s.SetStrokeColor(colorEarthArc)
	s.Stroke()
}

func (r *Renderer) drawSeaLevel() {
	s := r.surface
	s.BeginPath()
	s.SetLineWidth(1)
	s.SetStrokeColor(colorEarthSurface)
	for i, p := range r.state.EarthSurface() {
		if i == 0 {
			s.MoveTo(p.X, p.Y)
			continue
		}
		s.LineTo(p.X, p.Y)
	}
	s.Stroke()
}

// drawProfile shades the area under the terrain and strokes its outline.
func (r *Renderer) drawProfile() {
	s := r.surface
	_, base := r.state.Center()
	pts := r.points

	s.SetFillColor(colorProfileFill)
	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		top := math.Max(prev.Y, cur.Y)
		s.FillRect(prev.X, top, cur.X-prev.X, base-top)
	}

	s.BeginPath()
	for i, p := range pts {
		if i == 0 {
			s.MoveTo(p.X, p.Y)
			continue
		}
		s.LineTo(p.X, p.Y)
	}
	s.SetLineWidth(1)
	s.SetStrokeColor(colorProfileStroke)
	s.Stroke()
}

func (r *Renderer) drawMarker(m Marker, c color.Color) {
	i, ok := m.Index()
	if !ok || i < 0 || i >= len(r.points) {
		return
	}
	s := r.surface
	_, base := r.state.Center()
	p := r.points[i]
	x := p.X + 0.5

	s.BeginPath()
	s.SetLineWidth(1)
	s.SetStrokeColor(c)
	s.MoveTo(x, base)
	s.LineTo(x, p.Y)
	s.Stroke()

	s.BeginPath()
	s.MoveTo(x, p.Y-4)
	s.LineTo(x+4, p.Y)
	s.LineTo(x, p.Y+4)
	s.LineTo(x-4, p.Y)
	s.ClosePath()
	s.SetFillColor(c)
	s.Fill()

	s.SetFont(labelFont)
	s.SetTextAlign(AlignCenter)
	s.SetTextBaseline(BaselineBottom)
	s.FillText(mesh.FormatElevation(r.state.Sample(i).Elevation, 0)+" m", x, p.Y-6)
}
