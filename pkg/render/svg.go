package render

import (
	"fmt"
	"image/color"
	"io"

	svg "github.com/ajstarks/svgo"
)

func cssColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WriteSVG draws segs as vector lines on a width×height canvas, mapping v
// over the whole canvas. Degenerate segments become dots.
func WriteSVG(w io.Writer, segs []Segment, v Viewport, width, height int, bg color.RGBA) {
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+cssColor(bg))
	for _, s := range segs {
		x0, y0 := v.ToPixel(s.A, width, height)
		x1, y1 := v.ToPixel(s.B, width, height)
		if x0 == x1 && y0 == y1 {
			canvas.Circle(x0, y0, 2, "fill:"+cssColor(s.Color))
			continue
		}
		canvas.Line(x0, y0, x1, y1, "stroke-width:1;stroke:"+cssColor(s.Color))
	}
	canvas.End()
}
