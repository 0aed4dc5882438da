package chart

import "image/color"

// TextAlign positions text horizontally relative to its anchor.
type TextAlign int

const (
	AlignStart TextAlign = iota
	AlignCenter
	AlignEnd
)

// TextBaseline positions text vertically relative to its anchor.
type TextBaseline int

const (
	BaselineAlphabetic TextBaseline = iota
	BaselineBottom
	BaselineMiddle
	BaselineTop
)

// Surface is the 2D drawing capability the chart needs from its host.
// It follows HTML canvas semantics: Fill and Stroke keep the current path,
// BeginPath discards it, and transforms apply when path points are added.
// FillRect and FillText paint immediately; FillRect may reset the current path.
type Surface interface {
	Size() (width, height float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
	Rect(x, y, w, h float64)

	Fill()
	Stroke()
	Clip()
	FillRect(x, y, w, h float64)

	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)

	Save()
	Restore()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(x, y float64)

	SetFont(font string)
	SetTextAlign(a TextAlign)
	SetTextBaseline(b TextBaseline)
	FillText(s string, x, y float64)
}
