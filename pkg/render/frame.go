package render

import (
	"image/color"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

// Segment is one visible, clipped edge in normalized coordinates. A
// rendered point is a segment with A == B.
type Segment struct {
	Object string
	Color  color.RGBA
	A, B   math3d.Vec2
}

// Drawable is anything the renderer can turn into segments. *geom.Object
// satisfies it.
type Drawable interface {
	Name() string
	Kind() geom.Kind
	Color() color.RGBA
	Points() []geom.Point
	Segments() [][2]geom.Point
}

// Renderer projects drawables through a window and clips them.
type Renderer struct {
	Window  *Window
	Clipper Clipper
}

// NewRenderer creates a renderer. A nil clipper means Cohen-Sutherland
// over the default viewport.
func NewRenderer(w *Window, c Clipper) *Renderer {
	if c == nil {
		c = CohenSutherland{View: DefaultViewport()}
	}
	return &Renderer{Window: w, Clipper: c}
}

// Render produces the visible segments of objs, object by object in the
// order given.
func (r *Renderer) Render(objs []Drawable) []Segment {
	var out []Segment
	for _, o := range objs {
		out = r.renderObject(o, out)
	}
	return out
}

func (r *Renderer) renderObject(o Drawable, out []Segment) []Segment {
	name, col := o.Name(), o.Color()
	if o.Kind() == geom.KindPoint {
		view := r.Clipper.Viewport()
		for _, p := range o.Points() {
			q, ok := r.Window.MapToNormalized(p.Vec3)
			if ok && ClipPoint(view, q) {
				out = append(out, Segment{Object: name, Color: col, A: q, B: q})
			}
		}
		return out
	}
	for _, s := range o.Segments() {
		a := r.Window.ToWindow(s[0].Vec3)
		b := r.Window.ToWindow(s[1].Vec3)
		if r.Window.Mode() == Perspective {
			var ok bool
			if a, b, ok = clipNear(a, b, r.Window.nearZ()); !ok {
				continue
			}
		}
		pa, _ := r.Window.Project(a)
		pb, _ := r.Window.Project(b)
		if res := r.Clipper.ClipLine(pa, pb); res.Visible {
			out = append(out, Segment{Object: name, Color: col, A: res.A, B: res.B})
		}
	}
	return out
}

// clipNear cuts the window-space segment ab to z >= near.
func clipNear(a, b math3d.Vec3, near float64) (math3d.Vec3, math3d.Vec3, bool) {
	aIn, bIn := a.Z >= near, b.Z >= near
	switch {
	case aIn && bIn:
		return a, b, true
	case !aIn && !bIn:
		return a, b, false
	}
	t := (near - a.Z) / (b.Z - a.Z)
	p := a.Lerp(b, t)
	p.Z = near
	if aIn {
		return a, p, true
	}
	return p, b, true
}

// ToPixel maps a normalized point to framebuffer coordinates with y
// pointing down.
func (v Viewport) ToPixel(p math3d.Vec2, width, height int) (int, int) {
	fx := (p.X - v.XMin) / (v.XMax - v.XMin)
	fy := (v.YMax - p.Y) / (v.YMax - v.YMin)
	x := int(fx*float64(width-1) + 0.5)
	y := int(fy*float64(height-1) + 0.5)
	return x, y
}
