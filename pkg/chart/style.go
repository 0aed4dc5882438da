package chart

import "image/color"

const (
	labelFont   = "12px serif"
	targetLines = 10
)

var (
	colorBackground    = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	colorBorder        = color.Black
	colorField         = color.White
	colorMesh          = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	colorLabel         = color.Black
	colorMast          = color.Black
	colorAntenna       = color.RGBA{0, 0, 200, 0xff}
	colorLink          = color.Black
	colorEarthArc      = color.RGBA{0, 0, 0xdd, 0xff}
	colorEarthSurface  = color.RGBA{0x66, 0, 0, 0xff}
	colorProfileFill   = color.NRGBA{20, 20, 0, 51}
	colorProfileStroke = color.RGBA{0x33, 0, 0, 0xff}
	colorStaticMarker  = color.RGBA{0xdd, 0, 0, 0xff}
	colorDynamicMarker = color.RGBA{0, 0x88, 0, 0xff}
)
