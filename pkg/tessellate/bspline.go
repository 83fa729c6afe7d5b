// Package tessellate turns parametric control geometry into the polylines
// and grids the renderer clips and draws.
package tessellate

import (
	"math"

	"github.com/taigrr/sgi/pkg/math3d"
)

// DefaultStep is the parameter increment used when none is configured.
const DefaultStep = 0.1

// bsplineBasis is the uniform cubic B-spline basis matrix (already divided
// by 6). Rows produce the a, b, c, d coefficients of a(t³)+b(t²)+c(t)+d.
var bsplineBasis = [4][4]float64{
	{-1.0 / 6, 3.0 / 6, -3.0 / 6, 1.0 / 6},
	{3.0 / 6, -6.0 / 6, 3.0 / 6, 0},
	{-3.0 / 6, 0, 3.0 / 6, 0},
	{1.0 / 6, 4.0 / 6, 1.0 / 6, 0},
}

// Steps returns how many increments of t cover [0,1]. Values of t outside
// (0,1] fall back to DefaultStep.
func Steps(t float64) int {
	t = NormalizeStep(t)
	n := int(math.Round(1 / t))
	if n < 1 {
		n = 1
	}
	return n
}

// NormalizeStep replaces an unusable step with DefaultStep.
func NormalizeStep(t float64) float64 {
	if math.IsNaN(t) || t <= 0 || t > 1 {
		return DefaultStep
	}
	return t
}

// BSpline approximates the uniform cubic B-spline defined by ctrl with a
// polyline, using forward differences with increment t. Every window of
// four consecutive control points contributes one segment; the shared
// joint between segments is emitted once. Fewer than four control points
// produce an empty result.
func BSpline(ctrl []math3d.Vec3, t float64) []math3d.Vec3 {
	if len(ctrl) < 4 {
		return nil
	}

	t = NormalizeStep(t)
	steps := Steps(t)
	out := make([]math3d.Vec3, 0, (len(ctrl)-3)*steps+1)

	for m := 3; m < len(ctrl); m++ {
		seg := forwardDifferences(
			[4]math3d.Vec3{ctrl[m-3], ctrl[m-2], ctrl[m-1], ctrl[m]},
			t, steps,
		)
		if m > 3 {
			seg = seg[1:]
		}
		out = append(out, seg...)
	}

	return out
}

// coefficients multiplies the basis matrix by the four control points,
// component-wise.
func coefficients(basis [4][4]float64, p [4]math3d.Vec3) [4]math3d.Vec3 {
	var c [4]math3d.Vec3
	for row := range 4 {
		for k := range 4 {
			c[row] = c[row].Add(p[k].Scale(basis[row][k]))
		}
	}
	return c
}

// forwardDifferences evaluates one curve segment at steps+1 evenly spaced
// parameters in [0,1].
func forwardDifferences(p [4]math3d.Vec3, t float64, steps int) []math3d.Vec3 {
	c := coefficients(bsplineBasis, p)
	a, b, cc, d := c[0], c[1], c[2], c[3]

	t2 := t * t
	t3 := t2 * t

	f := d
	df := a.Scale(t3).Add(b.Scale(t2)).Add(cc.Scale(t))
	d2f := a.Scale(6 * t3).Add(b.Scale(2 * t2))
	d3f := a.Scale(6 * t3)

	pts := make([]math3d.Vec3, 0, steps+1)
	pts = append(pts, f)
	for range steps {
		f = f.Add(df)
		df = df.Add(d2f)
		d2f = d2f.Add(d3f)
		pts = append(pts, f)
	}
	return pts
}
