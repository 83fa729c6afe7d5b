package math3d

import (
	"fmt"
	"math"
)

// Axis selects one of the three principal axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RotateAxis creates a rotation of deg degrees around a principal axis.
// Positive angles are counter-clockwise when looking from the positive axis
// toward the origin.
func RotateAxis(axis Axis, deg float64) Mat4 {
	rad := Radians(deg)
	switch axis {
	case AxisX:
		return RotateX(rad)
	case AxisY:
		return RotateY(rad)
	default:
		return RotateZ(rad)
	}
}

// ScaleAbout scales by s with pivot held fixed.
func ScaleAbout(pivot, s Vec3) Mat4 {
	return Compose(Translate(pivot.Negate()), Scale(s), Translate(pivot))
}

// RotateAbout rotates deg degrees around a principal axis passing through
// pivot.
func RotateAbout(pivot Vec3, axis Axis, deg float64) Mat4 {
	return Compose(Translate(pivot.Negate()), RotateAxis(axis, deg), Translate(pivot))
}

// RotateAboutLine rotates deg degrees around the line through origin along
// dir. A zero dir yields the identity.
func RotateAboutLine(origin, dir Vec3, deg float64) Mat4 {
	if dir.Len() == 0 {
		return Identity()
	}
	return Compose(Translate(origin.Negate()), Rotate(dir, Radians(deg)), Translate(origin))
}

// Compose multiplies ms in application order: the first matrix is applied
// to a point first.
func Compose(ms ...Mat4) Mat4 {
	out := Identity()
	for _, m := range ms {
		out = m.Mul(out)
	}
	return out
}

// ApplyPoints transforms every point of pts in place.
func ApplyPoints(m Mat4, pts []Vec3) {
	for i := range pts {
		pts[i] = m.MulVec3(pts[i])
	}
}
