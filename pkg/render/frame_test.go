package render

import (
	"image/color"
	"testing"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

func mustObject(t *testing.T, name string, kind geom.Kind, pts ...geom.Point) *geom.Object {
	t.Helper()
	o, err := geom.New(name, kind, pts, color.RGBA{255, 255, 255, 255})
	if err != nil {
		t.Fatalf("geom.New(%s): %v", name, err)
	}
	return o
}

func TestRenderLineIsClipped(t *testing.T) {
	line := mustObject(t, "axis", geom.KindLine, geom.P(-20, 0, 0), geom.P(20, 0, 0))
	r := NewRenderer(DefaultWindow(), nil)

	segs := r.Render([]Drawable{line})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	s := segs[0]
	if s.Object != "axis" {
		t.Errorf("Object = %q", s.Object)
	}
	if !s.A.ApproxEqual(math3d.V2(-1, 0), eps) || !s.B.ApproxEqual(math3d.V2(1, 0), eps) {
		t.Errorf("got %v-%v, want (-1,0)-(1,0)", s.A, s.B)
	}
}

func TestRenderPoints(t *testing.T) {
	in := mustObject(t, "in", geom.KindPoint, geom.P(5, 5, 0))
	out := mustObject(t, "out", geom.KindPoint, geom.P(50, 0, 0))
	r := NewRenderer(DefaultWindow(), nil)

	segs := r.Render([]Drawable{in, out})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].A != segs[0].B {
		t.Errorf("point segment is not degenerate: %v-%v", segs[0].A, segs[0].B)
	}
	if !segs[0].A.ApproxEqual(math3d.V2(0.5, 0.5), eps) {
		t.Errorf("point at %v, want (0.5, 0.5)", segs[0].A)
	}
}

func TestRenderKeepsObjectOrder(t *testing.T) {
	square := mustObject(t, "square", geom.KindPolygon,
		geom.P(-5, -5, 0), geom.P(5, -5, 0), geom.P(5, 5, 0), geom.P(-5, 5, 0))
	line := mustObject(t, "line", geom.KindLine, geom.P(0, 0, 0), geom.P(1, 1, 0))
	r := NewRenderer(DefaultWindow(), LiangBarsky{View: DefaultViewport()})

	segs := r.Render([]Drawable{square, line})
	if len(segs) != 5 {
		t.Fatalf("got %d segments, want 5", len(segs))
	}
	for i := range 4 {
		if segs[i].Object != "square" {
			t.Errorf("segment %d belongs to %q", i, segs[i].Object)
		}
	}
	if segs[4].Object != "line" {
		t.Errorf("last segment belongs to %q", segs[4].Object)
	}
}

func TestRenderSeesMutations(t *testing.T) {
	curve := mustObject(t, "c", geom.KindBSplineCurve,
		geom.P(-5, 0, 0), geom.P(-2, 4, 0), geom.P(2, -4, 0), geom.P(5, 0, 0))
	r := NewRenderer(DefaultWindow(), nil)

	before := r.Render([]Drawable{curve})
	if err := curve.Translate(0, 50, 0); err != nil {
		t.Fatal(err)
	}
	after := r.Render([]Drawable{curve})
	if len(before) == 0 {
		t.Fatal("curve invisible before translation")
	}
	if len(after) != 0 {
		t.Errorf("translated curve still produced %d segments", len(after))
	}
}

func TestRenderPerspectiveNearClip(t *testing.T) {
	w := DefaultWindow()
	if err := w.SetProjection(Perspective, 10); err != nil {
		t.Fatal(err)
	}
	// Runs from behind the center of projection to the window plane.
	line := mustObject(t, "depth", geom.KindLine, geom.P(5, 0, -30), geom.P(5, 0, 0))
	r := NewRenderer(w, nil)

	segs := r.Render([]Drawable{line})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	s := segs[0]
	if !s.A.ApproxEqual(math3d.V2(1, 0), eps) {
		t.Errorf("near end = %v, want (1, 0)", s.A)
	}
	if !s.B.ApproxEqual(math3d.V2(0.5, 0), eps) {
		t.Errorf("far end = %v, want (0.5, 0)", s.B)
	}
}

func TestClipNear(t *testing.T) {
	a, b := math3d.V3(0, 0, -4), math3d.V3(0, 4, 4)
	ca, cb, ok := clipNear(a, b, 0)
	if !ok {
		t.Fatal("segment crossing the plane rejected")
	}
	if !ca.ApproxEqual(math3d.V3(0, 2, 0), eps) || cb != b {
		t.Errorf("got %v-%v", ca, cb)
	}
	if _, _, ok := clipNear(math3d.V3(0, 0, -2), math3d.V3(1, 1, -1), 0); ok {
		t.Error("segment fully behind accepted")
	}
}

func TestViewportToPixel(t *testing.T) {
	v := DefaultViewport()
	tests := []struct {
		p    math3d.Vec2
		x, y int
	}{
		{math3d.V2(-1, 1), 0, 0},
		{math3d.V2(1, -1), 10, 10},
		{math3d.V2(0, 0), 5, 5},
		{math3d.V2(1, 1), 10, 0},
	}
	for _, tc := range tests {
		x, y := v.ToPixel(tc.p, 11, 11)
		if x != tc.x || y != tc.y {
			t.Errorf("ToPixel(%v) = (%d, %d), want (%d, %d)", tc.p, x, y, tc.x, tc.y)
		}
	}
}

func TestDrawSegments(t *testing.T) {
	fb := NewFramebuffer(11, 11)
	red := RGB(255, 0, 0)
	fb.DrawSegments([]Segment{{Color: red, A: math3d.V2(-1, 0), B: math3d.V2(1, 0)}}, DefaultViewport())
	for x := range 11 {
		if fb.GetPixel(x, 5) != red {
			t.Errorf("pixel (%d, 5) = %v, want red", x, fb.GetPixel(x, 5))
		}
	}
	if fb.GetPixel(5, 4) != (color.RGBA{}) {
		t.Errorf("pixel above the line was drawn")
	}
}

func TestPaletteColorCycles(t *testing.T) {
	if PaletteColor(0) != PaletteColor(len(Palette)) {
		t.Error("palette does not cycle")
	}
	if PaletteColor(-1) != PaletteColor(1) {
		t.Error("negative index not folded")
	}
}
