package tessellate

import (
	"math"
	"testing"

	"github.com/taigrr/sgi/pkg/math3d"
)

const eps = 1e-9

func line(n int) []math3d.Vec3 {
	pts := make([]math3d.Vec3, n)
	for i := range pts {
		pts[i] = math3d.V3(float64(i), 0, 0)
	}
	return pts
}

func TestBSplineTooFewPoints(t *testing.T) {
	for n := range 4 {
		if got := BSpline(line(n), 0.1); len(got) != 0 {
			t.Errorf("n=%d: expected empty tessellation, got %d points", n, len(got))
		}
	}
}

func TestBSplinePointCount(t *testing.T) {
	tests := []struct {
		name  string
		ctrl  int
		step  float64
		count int
	}{
		{"single segment", 4, 0.1, 11},
		{"two segments", 5, 0.1, 21},
		{"coarse", 6, 0.5, 7},
		{"invalid step falls back", 4, -1, 11},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BSpline(line(tc.ctrl), tc.step)
			if len(got) != tc.count {
				t.Errorf("got %d points, want %d", len(got), tc.count)
			}
		})
	}
}

func TestBSplineCollinearIsLinear(t *testing.T) {
	pts := BSpline(line(4), 0.1)

	// Evenly spaced collinear control points give a uniformly parametrised
	// straight segment from (p0+4p1+p2)/6 to (p1+4p2+p3)/6.
	for k, p := range pts {
		want := math3d.V3(1+float64(k)/10, 0, 0)
		if !p.ApproxEqual(want, eps) {
			t.Errorf("point %d = %v, want %v", k, p, want)
		}
	}
}

func TestBSplineJointMatchesBasis(t *testing.T) {
	ctrl := []math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(1, 3, 0),
		math3d.V3(4, 3, 1),
		math3d.V3(5, 0, 2),
		math3d.V3(7, -2, 0),
	}
	pts := BSpline(ctrl, 0.1)

	joint := ctrl[1].Add(ctrl[2].Scale(4)).Add(ctrl[3]).Div(6)
	if !pts[10].ApproxEqual(joint, 1e-9) {
		t.Errorf("joint = %v, want %v", pts[10], joint)
	}
	end := ctrl[2].Add(ctrl[3].Scale(4)).Add(ctrl[4]).Div(6)
	if !pts[len(pts)-1].ApproxEqual(end, 1e-9) {
		t.Errorf("end = %v, want %v", pts[len(pts)-1], end)
	}
}

func TestBSplineDeterministic(t *testing.T) {
	ctrl := []math3d.Vec3{
		math3d.V3(-1, 2, 0), math3d.V3(0, 5, 1), math3d.V3(3, -1, 2),
		math3d.V3(4, 4, 0), math3d.V3(6, 0, -1),
	}
	a := BSpline(ctrl, 0.05)
	b := BSpline(ctrl, 0.05)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func flatGrid() [16]math3d.Vec3 {
	var ctrl [16]math3d.Vec3
	for i := range 4 {
		for j := range 4 {
			ctrl[i*4+j] = math3d.V3(float64(j), float64(i), 0)
		}
	}
	return ctrl
}

func TestBezierSurfaceFlatHalfStep(t *testing.T) {
	ctrl := flatGrid()
	grid := BezierSurface(ctrl, 0.5)

	if len(grid) != 3 {
		t.Fatalf("got %d rows, want 3", len(grid))
	}
	for i, row := range grid {
		if len(row) != 3 {
			t.Fatalf("row %d has %d points, want 3", i, len(row))
		}
		for j, p := range row {
			if p.Z != 0 {
				t.Errorf("grid[%d][%d].Z = %v, want 0", i, j, p.Z)
			}
			want := math3d.V3(1.5*float64(j), 1.5*float64(i), 0)
			if !p.ApproxEqual(want, eps) {
				t.Errorf("grid[%d][%d] = %v, want %v", i, j, p, want)
			}
		}
	}
}

func TestBezierSurfaceInterpolatesCorners(t *testing.T) {
	ctrl := flatGrid()
	ctrl[5].Z = 4
	ctrl[10].Z = -2
	grid := BezierSurface(ctrl, 0.1)
	last := len(grid) - 1

	corners := []struct {
		got, want math3d.Vec3
	}{
		{grid[0][0], ctrl[0]},
		{grid[0][last], ctrl[3]},
		{grid[last][0], ctrl[12]},
		{grid[last][last], ctrl[15]},
	}
	for i, c := range corners {
		if !c.got.ApproxEqual(c.want, eps) {
			t.Errorf("corner %d = %v, want %v", i, c.got, c.want)
		}
	}
}

func TestBlendWeightsSumToOne(t *testing.T) {
	for _, s := range []float64{0, 0.25, 0.5, 0.9, 1} {
		w := blend(bezierBasis, s)
		sum := w[0] + w[1] + w[2] + w[3]
		if math.Abs(sum-1) > eps {
			t.Errorf("s=%v: weights sum to %v", s, sum)
		}
	}
}

func TestSteps(t *testing.T) {
	tests := []struct {
		step float64
		want int
	}{
		{0.1, 10},
		{0.5, 2},
		{1, 1},
		{0, 10},
		{math.NaN(), 10},
		{1.5, 10},
	}
	for _, tc := range tests {
		if got := Steps(tc.step); got != tc.want {
			t.Errorf("Steps(%v) = %d, want %d", tc.step, got, tc.want)
		}
	}
}

func BenchmarkBSpline(b *testing.B) {
	ctrl := line(32)
	for b.Loop() {
		_ = BSpline(ctrl, 0.05)
	}
}

func BenchmarkBezierSurface(b *testing.B) {
	ctrl := flatGrid()
	for b.Loop() {
		_ = BezierSurface(ctrl, 0.05)
	}
}
