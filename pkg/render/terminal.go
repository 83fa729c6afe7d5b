package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer onto scr inside area, two pixel rows per
// terminal row: ▀ with the top pixel as foreground and the bottom pixel as
// background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			topColor := fb.GetPixel(x, topY)
			botColor := fb.GetPixel(x, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(topColor),
					Bg: rgbaToColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Palette holds the colors handed out to objects that do not name one.
var Palette = []color.RGBA{
	{255, 255, 255, 255},
	{255, 95, 95, 255},
	{95, 215, 95, 255},
	{95, 135, 255, 255},
	{255, 215, 0, 255},
	{0, 215, 215, 255},
	{215, 95, 215, 255},
}

// PaletteColor returns the i-th palette color, cycling.
func PaletteColor(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// DrawText writes a single line of text starting at (x, y), clipped to the
// screen width.
func DrawText(scr uv.Screen, x, y, width int, text string, fg, bg color.RGBA) {
	for _, r := range text {
		if x >= width {
			return
		}
		scr.SetCell(x, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: rgbaToColor(fg), Bg: rgbaToColor(bg)},
		})
		x++
	}
}
