package world

import (
	"fmt"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

// Operation is one transform request against a named object.
type Operation interface {
	Apply(o *geom.Object) error
	String() string
}

// Translate moves an object by D.
type Translate struct {
	D math3d.Vec3
}

func (op Translate) Apply(o *geom.Object) error { return o.Translate(op.D.X, op.D.Y, op.D.Z) }
func (op Translate) String() string           { return fmt.Sprintf("translate %v", op.D) }

// Scale resizes an object about its own center.
type Scale struct {
	S math3d.Vec3
}

func (op Scale) Apply(o *geom.Object) error { return o.Scale(op.S.X, op.S.Y, op.S.Z) }
func (op Scale) String() string           { return fmt.Sprintf("scale %v", op.S) }

// RotateAboutPoint rotates about the principal axis through Pivot.
type RotateAboutPoint struct {
	Pivot math3d.Vec3
	Deg   float64
	Axis  math3d.Axis
}

func (op RotateAboutPoint) Apply(o *geom.Object) error {
	return o.RotateAboutPoint(op.Pivot, op.Deg, op.Axis)
}

func (op RotateAboutPoint) String() string {
	return fmt.Sprintf("rotate %g° about %v through %v", op.Deg, op.Axis, op.Pivot)
}

// RotateAboutCenter rotates about the principal axis through the object's
// center.
type RotateAboutCenter struct {
	Deg  float64
	Axis math3d.Axis
}

func (op RotateAboutCenter) Apply(o *geom.Object) error {
	return o.RotateAboutCenter(op.Deg, op.Axis)
}

func (op RotateAboutCenter) String() string {
	return fmt.Sprintf("rotate %g° about %v through center", op.Deg, op.Axis)
}

// RotateAboutAxis rotates about an arbitrary line.
type RotateAboutAxis struct {
	Origin, Dir math3d.Vec3
	Deg         float64
}

func (op RotateAboutAxis) Apply(o *geom.Object) error {
	return o.RotateAboutAxis(op.Origin, op.Dir, op.Deg)
}

func (op RotateAboutAxis) String() string {
	return fmt.Sprintf("rotate %g° about %v through %v", op.Deg, op.Dir, op.Origin)
}

// Matrix applies an arbitrary composed transform.
type Matrix struct {
	M math3d.Mat4
}

func (op Matrix) Apply(o *geom.Object) error {
	o.Transform(op.M)
	return nil
}

func (op Matrix) String() string { return "matrix" }

// Sequence applies several operations in order, stopping at the first
// error.
type Sequence []Operation

func (s Sequence) Apply(o *geom.Object) error {
	for _, op := range s {
		if err := op.Apply(o); err != nil {
			return err
		}
	}
	return nil
}

func (s Sequence) String() string { return fmt.Sprintf("sequence of %d", len(s)) }
