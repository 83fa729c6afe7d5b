package render

import (
	"testing"

	"github.com/taigrr/sgi/pkg/math3d"
)

const eps = 1e-9

func TestOutcode(t *testing.T) {
	v := DefaultViewport()
	tests := []struct {
		name string
		p    math3d.Vec2
		want Outcode
	}{
		{"inside", math3d.V2(0, 0), 0},
		{"on boundary", math3d.V2(1, -1), 0},
		{"top", math3d.V2(0, 2), OutTop},
		{"bottom", math3d.V2(0, -2), OutBottom},
		{"right", math3d.V2(2, 0), OutRight},
		{"left", math3d.V2(-2, 0), OutLeft},
		{"top left", math3d.V2(-2, 2), OutTop | OutLeft},
		{"bottom right", math3d.V2(2, -2), OutBottom | OutRight},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.Outcode(tc.p); got != tc.want {
				t.Errorf("Outcode(%v) = %04b, want %04b", tc.p, got, tc.want)
			}
		})
	}
}

func TestClipLine(t *testing.T) {
	v := DefaultViewport()
	clippers := map[string]Clipper{
		"cohen-sutherland": CohenSutherland{View: v},
		"liang-barsky":     LiangBarsky{View: v},
	}
	tests := []struct {
		name    string
		a, b    math3d.Vec2
		visible bool
		wantA   math3d.Vec2
		wantB   math3d.Vec2
	}{
		{"inside unchanged", math3d.V2(0, 0), math3d.V2(0.5, 0.5), true, math3d.V2(0, 0), math3d.V2(0.5, 0.5)},
		{"both beyond corner", math3d.V2(2, 2), math3d.V2(3, 3), false, math3d.Vec2{}, math3d.Vec2{}},
		{"horizontal through", math3d.V2(-2, 0), math3d.V2(2, 0), true, math3d.V2(-1, 0), math3d.V2(1, 0)},
		{"vertical through", math3d.V2(0, -3), math3d.V2(0, 3), true, math3d.V2(0, -1), math3d.V2(0, 1)},
		{"one end out", math3d.V2(0, 0), math3d.V2(2, 1), true, math3d.V2(0, 0), math3d.V2(1, 0.5)},
		{"corner region enters through side", math3d.V2(-2, 1.5), math3d.V2(0, 0), true, math3d.V2(-1, 0.75), math3d.V2(0, 0)},
		{"misses corner", math3d.V2(0, 2.5), math3d.V2(2.5, 0), false, math3d.Vec2{}, math3d.Vec2{}},
		{"diagonal through both corners", math3d.V2(-2, -2), math3d.V2(2, 2), true, math3d.V2(-1, -1), math3d.V2(1, 1)},
		{"degenerate inside", math3d.V2(0.3, 0.3), math3d.V2(0.3, 0.3), true, math3d.V2(0.3, 0.3), math3d.V2(0.3, 0.3)},
		{"degenerate outside", math3d.V2(3, 0), math3d.V2(3, 0), false, math3d.Vec2{}, math3d.Vec2{}},
	}
	for cname, c := range clippers {
		for _, tc := range tests {
			t.Run(cname+"/"+tc.name, func(t *testing.T) {
				got := c.ClipLine(tc.a, tc.b)
				if got.Visible != tc.visible {
					t.Fatalf("Visible = %v, want %v", got.Visible, tc.visible)
				}
				if !tc.visible {
					return
				}
				if !got.A.ApproxEqual(tc.wantA, eps) || !got.B.ApproxEqual(tc.wantB, eps) {
					t.Errorf("got %v-%v, want %v-%v", got.A, got.B, tc.wantA, tc.wantB)
				}
			})
		}
	}
}

func TestClipLineDoesNotAliasInput(t *testing.T) {
	c := CohenSutherland{View: DefaultViewport()}
	a, b := math3d.V2(-2, 0), math3d.V2(2, 0)
	c.ClipLine(a, b)
	if a != math3d.V2(-2, 0) || b != math3d.V2(2, 0) {
		t.Errorf("inputs changed to %v, %v", a, b)
	}
}

func TestClipPoint(t *testing.T) {
	v := DefaultViewport()
	if !ClipPoint(v, math3d.V2(0.5, -0.5)) {
		t.Error("inside point rejected")
	}
	if !ClipPoint(v, math3d.V2(1, 1)) {
		t.Error("corner point rejected")
	}
	if ClipPoint(v, math3d.V2(1.01, 0)) {
		t.Error("outside point accepted")
	}
}

func TestClipPolygon(t *testing.T) {
	c := CohenSutherland{View: DefaultViewport()}

	inner := []math3d.Vec2{math3d.V2(0, 0), math3d.V2(0.5, 0), math3d.V2(0, 0.5)}
	if got := ClipPolygon(c, inner); len(got) != 3 {
		t.Errorf("inner triangle: %d edges, want 3", len(got))
	}

	// Every edge of the enclosing square lies outside the viewport.
	outer := []math3d.Vec2{math3d.V2(-2, -2), math3d.V2(2, -2), math3d.V2(2, 2), math3d.V2(-2, 2)}
	if got := ClipPolygon(c, outer); len(got) != 0 {
		t.Errorf("enclosing square: %d edges, want 0", len(got))
	}

	partial := []math3d.Vec2{math3d.V2(0, 0), math3d.V2(2, 0), math3d.V2(0, 0.5)}
	got := ClipPolygon(c, partial)
	if len(got) != 3 {
		t.Fatalf("partial triangle: %d edges, want 3", len(got))
	}
	if !got[0].B.ApproxEqual(math3d.V2(1, 0), eps) {
		t.Errorf("first edge ends at %v, want (1, 0)", got[0].B)
	}
	if !got[1].A.ApproxEqual(math3d.V2(1, 0.25), eps) {
		t.Errorf("second edge starts at %v, want (1, 0.25)", got[1].A)
	}
}

func TestParseClipper(t *testing.T) {
	v := DefaultViewport()
	if c, err := ParseClipper("liang-barsky", v); err != nil {
		t.Fatal(err)
	} else if _, ok := c.(LiangBarsky); !ok {
		t.Errorf("got %T, want LiangBarsky", c)
	}
	if c, err := ParseClipper("", v); err != nil {
		t.Fatal(err)
	} else if _, ok := c.(CohenSutherland); !ok {
		t.Errorf("got %T, want CohenSutherland", c)
	}
	if _, err := ParseClipper("sutherland-hodgman", v); err == nil {
		t.Error("expected error for unknown clipper")
	}
}

func BenchmarkCohenSutherland(b *testing.B) {
	c := CohenSutherland{View: DefaultViewport()}
	p0, p1 := math3d.V2(-2, 1.5), math3d.V2(0.5, -3)
	for b.Loop() {
		c.ClipLine(p0, p1)
	}
}

func BenchmarkLiangBarsky(b *testing.B) {
	c := LiangBarsky{View: DefaultViewport()}
	p0, p1 := math3d.V2(-2, 1.5), math3d.V2(0.5, -3)
	for b.Loop() {
		c.ClipLine(p0, p1)
	}
}
