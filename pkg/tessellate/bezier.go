package tessellate

import "github.com/taigrr/sgi/pkg/math3d"

// bezierBasis is the cubic Bezier basis matrix.
var bezierBasis = [4][4]float64{
	{-1, 3, -3, 1},
	{3, -6, 3, 0},
	{-3, 3, 0, 0},
	{1, 0, 0, 0},
}

// blend returns [s³ s² s 1]·M, the four blending weights at s.
func blend(m [4][4]float64, s float64) [4]float64 {
	pow := [4]float64{s * s * s, s * s, s, 1}
	var w [4]float64
	for col := range 4 {
		for k := range 4 {
			w[col] += pow[k] * m[k][col]
		}
	}
	return w
}

// BezierPoint evaluates the bicubic patch at (u, v). ctrl is the 4×4
// control grid in row-major order: ctrl[i*4+j] is row i (u) column j (v).
func BezierPoint(ctrl [16]math3d.Vec3, u, v float64) math3d.Vec3 {
	bu := blend(bezierBasis, u)
	bv := blend(bezierBasis, v)

	var p math3d.Vec3
	for i := range 4 {
		for j := range 4 {
			p = p.Add(ctrl[i*4+j].Scale(bu[i] * bv[j]))
		}
	}
	return p
}

// BezierSurface samples the bicubic patch on a regular grid with increment
// t in both directions, endpoints included. The result holds one polyline
// per fixed u, each running over v.
func BezierSurface(ctrl [16]math3d.Vec3, t float64) [][]math3d.Vec3 {
	n := Steps(t)
	grid := make([][]math3d.Vec3, n+1)
	for i := range n + 1 {
		u := float64(i) / float64(n)
		row := make([]math3d.Vec3, n+1)
		for j := range n + 1 {
			v := float64(j) / float64(n)
			row[j] = BezierPoint(ctrl, u, v)
		}
		grid[i] = row
	}
	return grid
}
