package geom

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/taigrr/sgi/pkg/math3d"
)

// Point is a labelled 3D coordinate. The label only shows up when printing.
type Point struct {
	Name string
	math3d.Vec3
}

// P creates an unnamed point.
func P(x, y, z float64) Point {
	return Point{Vec3: math3d.V3(x, y, z)}
}

func (p Point) String() string {
	return fmt.Sprintf("%s(%g, %g, %g)", p.Name, p.X, p.Y, p.Z)
}

// Vecs strips the labels from pts.
func Vecs(pts []Point) []math3d.Vec3 {
	return lo.Map(pts, func(p Point, _ int) math3d.Vec3 { return p.Vec3 })
}

// FromVecs wraps bare coordinates as unnamed points.
func FromVecs(vs []math3d.Vec3) []Point {
	return lo.Map(vs, func(v math3d.Vec3, _ int) Point { return Point{Vec3: v} })
}
