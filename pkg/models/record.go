// Package models reads and writes scenes as flat lists of records, in
// Wavefront OBJ or binary glTF.
package models

import (
	"errors"
	"image/color"
	"math"

	"github.com/samber/lo"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

// ErrReadFailure reports a scene file that could not be parsed.
var ErrReadFailure = errors.New("models: read failure")

// Record is the storage form of one object: its name, kind, control points
// and color. A zero Color means "unspecified".
type Record struct {
	Name   string
	Kind   geom.Kind
	Points []math3d.Vec3
	Color  color.RGBA
}

// FromObject captures an object's defining state.
func FromObject(o *geom.Object) Record {
	return Record{
		Name:   o.Name(),
		Kind:   o.Kind(),
		Points: geom.Vecs(o.ControlPoints()),
		Color:  o.Color(),
	}
}

// Object builds the geometric object the record describes.
func (r Record) Object() (*geom.Object, error) {
	return geom.New(r.Name, r.Kind, geom.FromVecs(r.Points), r.Color)
}

// Bounds returns the axis-aligned box around every record's points. ok is
// false when there are no points.
func Bounds(recs []Record) (lo3, hi3 math3d.Vec3, ok bool) {
	pts := lo.FlatMap(recs, func(r Record, _ int) []math3d.Vec3 { return r.Points })
	if len(pts) == 0 {
		return math3d.Vec3{}, math3d.Vec3{}, false
	}
	lo3 = math3d.V3(math.Inf(1), math.Inf(1), math.Inf(1))
	hi3 = math3d.V3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, p := range pts {
		lo3 = math3d.V3(min(lo3.X, p.X), min(lo3.Y, p.Y), min(lo3.Z, p.Z))
		hi3 = math3d.V3(max(hi3.X, p.X), max(hi3.Y, p.Y), max(hi3.Z, p.Z))
	}
	return lo3, hi3, true
}
