package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ColorModel, Bounds, At and Set make the framebuffer a draw.Image.

func (fb *Framebuffer) ColorModel() color.Model { return color.RGBAModel }

func (fb *Framebuffer) Bounds() image.Rectangle { return image.Rect(0, 0, fb.Width, fb.Height) }

func (fb *Framebuffer) At(x, y int) color.Color { return fb.GetPixel(x, y) }

func (fb *Framebuffer) Set(x, y int, c color.Color) {
	fb.SetPixel(x, y, color.RGBAModel.Convert(c).(color.RGBA))
}

// DrawLabel writes text with its baseline starting at (x, y).
func (fb *Framebuffer) DrawLabel(x, y int, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  fb,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawLabels names each object next to the start of its first visible
// segment.
func (fb *Framebuffer) DrawLabels(segs []Segment, v Viewport) {
	seen := make(map[string]bool)
	for _, s := range segs {
		if seen[s.Object] {
			continue
		}
		seen[s.Object] = true
		x, y := v.ToPixel(s.A, fb.Width, fb.Height)
		fb.DrawLabel(x+3, y-3, s.Object, s.Color)
	}
}
