package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

func TestNewWindowRejectsBadExtents(t *testing.T) {
	tests := []struct {
		name   string
		hw, hh float64
	}{
		{"zero width", 0, 1},
		{"negative height", 1, -1},
		{"nan", math.NaN(), 1},
		{"inf", 1, math.Inf(1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWindow(math3d.Zero3(), tc.hw, tc.hh)
			if !errors.Is(err, geom.ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestMapToNormalized(t *testing.T) {
	w := DefaultWindow()
	tests := []struct {
		p    math3d.Vec3
		want math3d.Vec2
	}{
		{math3d.V3(0, 0, 0), math3d.V2(0, 0)},
		{math3d.V3(5, 5, 0), math3d.V2(0.5, 0.5)},
		{math3d.V3(-10, 10, 3), math3d.V2(-1, 1)},
		{math3d.V3(20, 0, 0), math3d.V2(2, 0)},
	}
	for _, tc := range tests {
		got, ok := w.MapToNormalized(tc.p)
		if !ok {
			t.Fatalf("MapToNormalized(%v) not ok", tc.p)
		}
		if !got.ApproxEqual(tc.want, eps) {
			t.Errorf("MapToNormalized(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestWindowPan(t *testing.T) {
	w := DefaultWindow()
	if err := w.Pan(Right, 1); err != nil {
		t.Fatal(err)
	}
	if !w.Center().ApproxEqual(math3d.V3(10, 0, 0), eps) {
		t.Errorf("after pan right center = %v, want (10, 0, 0)", w.Center())
	}
	if err := w.Pan(Down, 0.5); err != nil {
		t.Fatal(err)
	}
	if !w.Center().ApproxEqual(math3d.V3(10, -5, 0), eps) {
		t.Errorf("after pan down center = %v, want (10, -5, 0)", w.Center())
	}
	if err := w.Pan(Left, math.NaN()); !errors.Is(err, geom.ErrInvalidParameter) {
		t.Errorf("NaN factor: err = %v", err)
	}
}

func TestWindowPanFollowsRotation(t *testing.T) {
	w := DefaultWindow()
	if err := w.Rotate(90, math3d.AxisZ); err != nil {
		t.Fatal(err)
	}
	if err := w.Pan(Up, 1); err != nil {
		t.Fatal(err)
	}
	if !w.Center().ApproxEqual(math3d.V3(-10, 0, 0), eps) {
		t.Errorf("center = %v, want (-10, 0, 0)", w.Center())
	}
}

func TestWindowRescale(t *testing.T) {
	w := DefaultWindow()
	if err := w.Rescale(2); err != nil {
		t.Fatal(err)
	}
	hw, hh := w.HalfExtents()
	if hw != 20 || hh != 20 {
		t.Errorf("extents = %v, %v, want 20, 20", hw, hh)
	}
	got, _ := w.MapToNormalized(math3d.V3(10, 0, 0))
	if !got.ApproxEqual(math3d.V2(0.5, 0), eps) {
		t.Errorf("zoomed out mapping = %v, want (0.5, 0)", got)
	}
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := w.Rescale(f); !errors.Is(err, geom.ErrInvalidParameter) {
			t.Errorf("Rescale(%v): err = %v, want ErrInvalidParameter", f, err)
		}
	}
	if hw, _ := w.HalfExtents(); hw != 20 {
		t.Errorf("rejected rescale changed extents to %v", hw)
	}
}

func TestWindowRotateMapsWorldIntoLocalFrame(t *testing.T) {
	w := DefaultWindow()
	if err := w.Rotate(90, math3d.AxisZ); err != nil {
		t.Fatal(err)
	}
	// The window's right axis now points along world +Y.
	got, _ := w.MapToNormalized(math3d.V3(0, 5, 0))
	if !got.ApproxEqual(math3d.V2(0.5, 0), eps) {
		t.Errorf("got %v, want (0.5, 0)", got)
	}
	if !w.Right().ApproxEqual(math3d.V3(0, 1, 0), eps) {
		t.Errorf("Right() = %v", w.Right())
	}
}

func TestWindowReset(t *testing.T) {
	w := DefaultWindow()
	_ = w.Pan(Up, 3)
	_ = w.Rescale(0.25)
	_ = w.Rotate(45, math3d.AxisY)
	_ = w.SetProjection(Perspective, 5)
	w.Reset()

	if w.Center() != math3d.Zero3() {
		t.Errorf("center = %v", w.Center())
	}
	if hw, hh := w.HalfExtents(); hw != 10 || hh != 10 {
		t.Errorf("extents = %v, %v", hw, hh)
	}
	if w.Angles() != math3d.Zero3() {
		t.Errorf("angles = %v", w.Angles())
	}
	if w.Mode() != Parallel {
		t.Errorf("mode = %v", w.Mode())
	}
	got, _ := w.MapToNormalized(math3d.V3(5, 5, 0))
	if !got.ApproxEqual(math3d.V2(0.5, 0.5), eps) {
		t.Errorf("mapping after reset = %v", got)
	}
}

func TestPerspectiveProjection(t *testing.T) {
	w := DefaultWindow()
	if err := w.SetProjection(Perspective, 10); err != nil {
		t.Fatal(err)
	}

	got, ok := w.MapToNormalized(math3d.V3(5, 0, 0))
	if !ok || !got.ApproxEqual(math3d.V2(0.5, 0), eps) {
		t.Errorf("on the window plane: %v %v, want (0.5, 0)", got, ok)
	}
	got, ok = w.MapToNormalized(math3d.V3(5, 0, 10))
	if !ok || !got.ApproxEqual(math3d.V2(0.25, 0), eps) {
		t.Errorf("behind the plane: %v %v, want (0.25, 0)", got, ok)
	}
	if _, ok := w.MapToNormalized(math3d.V3(5, 0, -15)); ok {
		t.Error("point behind the center of projection was mapped")
	}

	for _, d := range []float64{0, -3, math.NaN()} {
		if err := w.SetProjection(Perspective, d); !errors.Is(err, geom.ErrInvalidParameter) {
			t.Errorf("SetProjection(perspective, %v): err = %v", d, err)
		}
	}
	if w.Distance() != 10 {
		t.Errorf("rejected distance leaked: %v", w.Distance())
	}

	if err := w.SetProjection(Parallel, 6); err != nil {
		t.Fatal(err)
	}
	if w.Mode() != Parallel || w.Distance() != 6 {
		t.Errorf("parallel: mode %v distance %v, want parallel 6", w.Mode(), w.Distance())
	}
	if err := w.SetProjection(Parallel, 0); err != nil {
		t.Fatal(err)
	}
	if w.Distance() != 6 {
		t.Errorf("zero distance in parallel replaced %v", w.Distance())
	}
}

func TestOutlineRoundTrip(t *testing.T) {
	w, err := NewWindow(math3d.V3(3, -2, 0), 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Rotate(30, math3d.AxisZ); err != nil {
		t.Fatal(err)
	}
	outline := w.Outline()

	back, err := FromOutline(outline)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Center().ApproxEqual(w.Center(), eps) {
		t.Errorf("center = %v, want %v", back.Center(), w.Center())
	}
	hw, hh := back.HalfExtents()
	if math.Abs(hw-4) > eps || math.Abs(hh-2) > eps {
		t.Errorf("extents = %v, %v, want 4, 2", hw, hh)
	}
	if math.Abs(back.Angles().Z-30) > eps {
		t.Errorf("angle = %v, want 30", back.Angles().Z)
	}

	// The rebuilt window resets to the imported state.
	_ = back.Pan(Right, 2)
	back.Reset()
	if !back.Center().ApproxEqual(w.Center(), eps) {
		t.Errorf("reset center = %v", back.Center())
	}
}

func TestFromOutlineRejectsDegenerate(t *testing.T) {
	p := math3d.V3(1, 1, 0)
	if _, err := FromOutline([4]math3d.Vec3{p, p, p, p}); !errors.Is(err, geom.ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestParseProjectionMode(t *testing.T) {
	if m, err := ParseProjectionMode("perspective"); err != nil || m != Perspective {
		t.Errorf("got %v, %v", m, err)
	}
	if _, err := ParseProjectionMode("fisheye"); err == nil {
		t.Error("expected error")
	}
}
