// Package canvas implements chart.Surface on top of the gg 2D rasterizer.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"regexp"
	"strconv"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"hamprofile/pkg/chart"
)

const defaultFontSize = 12.0

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error

	fontSize = regexp.MustCompile(`(\d+(?:\.\d+)?)px`)
)

func regularFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// style is the part of the drawing state gg does not keep on its own stack.
type style struct {
	fill      color.Color
	stroke    color.Color
	lineWidth float64
	fontSize  float64
	align     chart.TextAlign
	baseline  chart.TextBaseline
}

// Canvas is an in-memory raster surface. It is not safe for concurrent use.
type Canvas struct {
	dc    *gg.Context
	cur   style
	stack []style
	faces map[float64]text.Face
	err   error
}

var _ chart.Surface = (*Canvas)(nil)

// New creates a width x height canvas.
func New(width, height int) *Canvas {
	c := &Canvas{
		dc:    gg.NewContext(width, height),
		faces: make(map[float64]text.Face),
		cur: style{
			fill:      color.Black,
			stroke:    color.Black,
			lineWidth: 1,
			fontSize:  defaultFontSize,
		},
	}
	c.dc.SetLineWidth(1)
	return c
}

// Err returns the first rasterization or font error, if any.
func (c *Canvas) Err() error { return c.err }

func (c *Canvas) record(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

// Size implements chart.Surface.
func (c *Canvas) Size() (float64, float64) {
	return float64(c.dc.Width()), float64(c.dc.Height())
}

func (c *Canvas) BeginPath()          { c.dc.ClearPath() }
func (c *Canvas) MoveTo(x, y float64) { c.dc.MoveTo(x, y) }
func (c *Canvas) LineTo(x, y float64) { c.dc.LineTo(x, y) }
func (c *Canvas) ClosePath()          { c.dc.ClosePath() }

func (c *Canvas) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.dc.CubicTo(c1x, c1y, c2x, c2y, x, y)
}

// Rect adds a closed rectangle subpath. Negative sizes extend left or up.
func (c *Canvas) Rect(x, y, w, h float64) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	c.dc.DrawRectangle(x, y, w, h)
}

// Fill paints the current path and keeps it.
func (c *Canvas) Fill() {
	c.dc.SetColor(c.cur.fill)
	c.record(c.dc.FillPreserve())
}

// Stroke outlines the current path and keeps it.
func (c *Canvas) Stroke() {
	c.dc.SetColor(c.cur.stroke)
	c.dc.SetLineWidth(c.cur.lineWidth)
	c.record(c.dc.StrokePreserve())
}

// Clip intersects the clip region with the current path and keeps the path.
func (c *Canvas) Clip() { c.dc.ClipPreserve() }

// FillRect paints a rectangle immediately. It resets the current path.
func (c *Canvas) FillRect(x, y, w, h float64) {
	if w == 0 || h == 0 {
		return
	}
	c.dc.ClearPath()
	c.Rect(x, y, w, h)
	c.dc.SetColor(c.cur.fill)
	c.record(c.dc.Fill())
}

func (c *Canvas) SetFillColor(col color.Color)   { c.cur.fill = col }
func (c *Canvas) SetStrokeColor(col color.Color) { c.cur.stroke = col }
func (c *Canvas) SetLineWidth(w float64)         { c.cur.lineWidth = w }

// Save pushes the transform, clip and style.
func (c *Canvas) Save() {
	c.stack = append(c.stack, c.cur)
	c.dc.Push()
}

// Restore pops the state saved by the matching Save.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.cur = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.dc.Pop()
}

func (c *Canvas) Translate(x, y float64) { c.dc.Translate(x, y) }
func (c *Canvas) Rotate(angle float64)   { c.dc.Rotate(angle) }
func (c *Canvas) Scale(x, y float64)     { c.dc.Scale(x, y) }

// SetFont takes a CSS-like font string and uses its pixel size with the Go
// Regular face. Strings without a "px" size keep the current size.
func (c *Canvas) SetFont(font string) {
	if m := fontSize.FindStringSubmatch(font); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			c.cur.fontSize = v
		}
	}
}

func (c *Canvas) SetTextAlign(a chart.TextAlign)       { c.cur.align = a }
func (c *Canvas) SetTextBaseline(b chart.TextBaseline) { c.cur.baseline = b }

// FillText draws s anchored at (x, y) in the fill color. The anchor is
// transformed by the current matrix; the glyphs are not.
func (c *Canvas) FillText(s string, x, y float64) {
	face, err := c.face(c.cur.fontSize)
	if err != nil {
		c.record(err)
		return
	}
	ax, ay := anchor(c.cur.align, c.cur.baseline)
	x, y = c.dc.TransformPoint(x, y)

	c.dc.SetFont(face)
	c.dc.SetColor(c.cur.fill)
	c.dc.DrawStringAnchored(s, x, y, ax, ay)
}

func (c *Canvas) face(size float64) (text.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	src, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	f := src.Face(size)
	c.faces[size] = f
	return f, nil
}

// anchor converts canvas text alignment into gg anchor fractions. gg
// measures from the alphabetic baseline using the full line height, so the
// vertical fractions approximate the ascent and descent of Go Regular.
func anchor(a chart.TextAlign, b chart.TextBaseline) (ax, ay float64) {
	switch a {
	case chart.AlignCenter:
		ax = 0.5
	case chart.AlignEnd:
		ax = 1
	}
	switch b {
	case chart.BaselineBottom:
		ay = -0.2
	case chart.BaselineMiddle:
		ay = 0.3
	case chart.BaselineTop:
		ay = 0.8
	}
	return ax, ay
}

// Image returns the rendered pixels.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.err != nil {
		return fmt.Errorf("render: %w", c.err)
	}
	return c.dc.EncodePNG(w)
}

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	if c.err != nil {
		return fmt.Errorf("render: %w", c.err)
	}
	return c.dc.SavePNG(path)
}

// Close releases the rasterizer.
func (c *Canvas) Close() error { return c.dc.Close() }
