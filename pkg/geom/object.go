// Package geom holds the scene objects: points, lines, polygons, the window
// outline, B-spline curves and bicubic Bezier surfaces. Every kind shares
// one capability surface and dispatches on its Kind tag.
package geom

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/taigrr/sgi/pkg/math3d"
	"github.com/taigrr/sgi/pkg/tessellate"
)

// Object is a named shape owning its control points.
//
// Curves and surfaces derive their renderable points from the control
// points. The derived points are memoised against a revision counter that
// every mutation bumps, so reads after a mutation never see stale geometry.
// A curve may instead carry an explicit override polyline, which stays
// authoritative until ClearOverride or SetControlPoints.
type Object struct {
	name  string
	kind  Kind
	ctrl  []Point
	color color.RGBA
	step  float64

	rev     uint64
	memoRev uint64
	memo    []Point
	grid    [][]Point

	overridden bool
	override   []Point
}

// New validates pts against kind and builds the object. The points are
// copied.
func New(name string, kind Kind, pts []Point, c color.RGBA) (*Object, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidGeometry)
	}
	if err := Validate(kind, pts); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Object{
		name:  name,
		kind:  kind,
		ctrl:  slices.Clone(pts),
		color: c,
		step:  tessellate.DefaultStep,
		rev:   1,
	}, nil
}

// Validate checks that pts has a legal count for kind and that every
// coordinate is finite.
func Validate(kind Kind, pts []Point) error {
	min, max := kind.Arity()
	if min == 0 {
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidGeometry, kind)
	}
	n := len(pts)
	if n < min || (max >= 0 && n > max) {
		if min == max {
			return fmt.Errorf("%w: %v needs exactly %d points, got %d", ErrInvalidGeometry, kind, min, n)
		}
		return fmt.Errorf("%w: %v needs at least %d points, got %d", ErrInvalidGeometry, kind, min, n)
	}
	for i, p := range pts {
		if !p.IsFinite() {
			return fmt.Errorf("%w: point %d is not finite", ErrInvalidGeometry, i)
		}
	}
	return nil
}

// Name returns the object's unique name.
func (o *Object) Name() string { return o.name }

// Kind returns the variant tag.
func (o *Object) Kind() Kind { return o.kind }

// Color returns the display color.
func (o *Object) Color() color.RGBA { return o.color }

// Revision increases every time the geometry changes.
func (o *Object) Revision() uint64 { return o.rev }

// Step returns the tessellation parameter increment.
func (o *Object) Step() float64 { return o.step }

// SetStep changes the tessellation increment. Values outside (0,1] are
// rejected.
func (o *Object) SetStep(t float64) error {
	if math.IsNaN(t) || t <= 0 || t > 1 {
		return fmt.Errorf("%w: step %v outside (0,1]", ErrInvalidParameter, t)
	}
	o.step = t
	o.touch()
	return nil
}

// ControlPoints returns a copy of the defining points.
func (o *Object) ControlPoints() []Point {
	return slices.Clone(o.ctrl)
}

// SetControlPoints replaces the defining points. A curve override is
// dropped because it no longer describes the edited curve.
func (o *Object) SetControlPoints(pts []Point) error {
	if err := Validate(o.kind, pts); err != nil {
		return fmt.Errorf("%s: %w", o.name, err)
	}
	o.ctrl = slices.Clone(pts)
	o.overridden = false
	o.override = nil
	o.touch()
	return nil
}

// Center is the arithmetic mean of the control points.
func (o *Object) Center() math3d.Vec3 {
	return math3d.Centroid(Vecs(o.ctrl))
}

// touch invalidates every derived point set.
func (o *Object) touch() {
	o.rev++
}

// Transform applies m to every control point (and to an active override).
func (o *Object) Transform(m math3d.Mat4) {
	applyTo(m, o.ctrl)
	applyTo(m, o.override)
	o.touch()
}

// applyTo transforms pts in place, keeping their labels.
func applyTo(m math3d.Mat4, pts []Point) {
	vs := Vecs(pts)
	math3d.ApplyPoints(m, vs)
	for i := range pts {
		pts[i].Vec3 = vs[i]
	}
}

// Translate moves the object by (dx, dy, dz).
func (o *Object) Translate(dx, dy, dz float64) error {
	d := math3d.V3(dx, dy, dz)
	if !d.IsFinite() {
		return fmt.Errorf("%w: translation %v", ErrInvalidParameter, d)
	}
	o.Transform(math3d.Translate(d))
	return nil
}

// Scale resizes the object about its own center. Zero factors are allowed
// and flatten the object along that axis.
func (o *Object) Scale(sx, sy, sz float64) error {
	s := math3d.V3(sx, sy, sz)
	if !s.IsFinite() {
		return fmt.Errorf("%w: scale %v", ErrInvalidParameter, s)
	}
	o.Transform(math3d.ScaleAbout(o.Center(), s))
	return nil
}

// RotateAboutPoint rotates deg degrees around the principal axis through p.
func (o *Object) RotateAboutPoint(p math3d.Vec3, deg float64, axis math3d.Axis) error {
	if !p.IsFinite() || math.IsNaN(deg) || math.IsInf(deg, 0) {
		return fmt.Errorf("%w: rotation %v° about %v", ErrInvalidParameter, deg, p)
	}
	o.Transform(math3d.RotateAbout(p, axis, deg))
	return nil
}

// RotateAboutCenter rotates deg degrees around the principal axis through
// the object's center.
func (o *Object) RotateAboutCenter(deg float64, axis math3d.Axis) error {
	return o.RotateAboutPoint(o.Center(), deg, axis)
}

// RotateAboutAxis rotates deg degrees around the line through origin along
// dir.
func (o *Object) RotateAboutAxis(origin, dir math3d.Vec3, deg float64) error {
	if !origin.IsFinite() || !dir.IsFinite() || math.IsNaN(deg) || math.IsInf(deg, 0) {
		return fmt.Errorf("%w: rotation %v° about %v through %v", ErrInvalidParameter, deg, dir, origin)
	}
	if dir.Len() == 0 {
		return fmt.Errorf("%w: zero rotation axis", ErrInvalidParameter)
	}
	o.Transform(math3d.RotateAboutLine(origin, dir, deg))
	return nil
}

// SetOverride replaces the curve's tessellation with pts until
// ClearOverride. Only B-spline curves accept an override.
func (o *Object) SetOverride(pts []Point) error {
	if o.kind != KindBSplineCurve {
		return fmt.Errorf("%w: %v does not accept a polyline override", ErrInvalidGeometry, o.kind)
	}
	for i, p := range pts {
		if !p.IsFinite() {
			return fmt.Errorf("%w: override point %d is not finite", ErrInvalidGeometry, i)
		}
	}
	o.overridden = true
	o.override = slices.Clone(pts)
	return nil
}

// ClearOverride returns the curve to its derived tessellation.
func (o *Object) ClearOverride() {
	o.overridden = false
	o.override = nil
}

// Overridden reports whether an override is active.
func (o *Object) Overridden() bool { return o.overridden }

// refresh recomputes derived points when the memo is behind the revision.
func (o *Object) refresh() {
	if o.memoRev == o.rev {
		return
	}
	o.memoRev = o.rev
	if !o.kind.Parametric() {
		o.memo, o.grid = nil, nil
		return
	}
	switch o.kind {
	case KindBSplineCurve:
		o.memo = FromVecs(tessellate.BSpline(Vecs(o.ctrl), o.step))
		o.grid = nil
	case KindBezierSurface:
		var g [16]math3d.Vec3
		copy(g[:], Vecs(o.ctrl))
		rows := tessellate.BezierSurface(g, o.step)
		o.grid = lo.Map(rows, func(row []math3d.Vec3, _ int) []Point { return FromVecs(row) })
		o.memo = lo.Flatten(o.grid)
	}
}

// Points returns the renderable points: the control points for simple
// kinds, the tessellated polyline (or override) for a curve, and the
// flattened sample grid for a surface.
func (o *Object) Points() []Point {
	switch o.kind {
	case KindBSplineCurve:
		if o.overridden {
			return slices.Clone(o.override)
		}
		o.refresh()
		return slices.Clone(o.memo)
	case KindBezierSurface:
		o.refresh()
		return slices.Clone(o.memo)
	default:
		return slices.Clone(o.ctrl)
	}
}

// Grid returns the surface samples as one polyline per fixed u. Other
// kinds return nil.
func (o *Object) Grid() [][]Point {
	if o.kind != KindBezierSurface {
		return nil
	}
	o.refresh()
	return lo.Map(o.grid, func(row []Point, _ int) []Point { return slices.Clone(row) })
}

// Segments returns the edges to draw. Single points have no edges.
func (o *Object) Segments() [][2]Point {
	switch o.kind {
	case KindPoint:
		return nil
	case KindBezierSurface:
		return gridSegments(o.Grid())
	default:
		return polylineSegments(o.Points(), o.kind.Closed())
	}
}

func polylineSegments(pts []Point, closed bool) [][2]Point {
	if len(pts) < 2 {
		return nil
	}
	segs := make([][2]Point, 0, len(pts))
	for i := 1; i < len(pts); i++ {
		segs = append(segs, [2]Point{pts[i-1], pts[i]})
	}
	if closed && len(pts) > 2 {
		segs = append(segs, [2]Point{pts[len(pts)-1], pts[0]})
	}
	return segs
}

// gridSegments wires the sample grid along both parametric directions.
func gridSegments(grid [][]Point) [][2]Point {
	var segs [][2]Point
	for i, row := range grid {
		for j := range row {
			if j > 0 {
				segs = append(segs, [2]Point{row[j-1], row[j]})
			}
			if i > 0 && j < len(grid[i-1]) {
				segs = append(segs, [2]Point{grid[i-1][j], row[j]})
			}
		}
	}
	return segs
}

// Clone deep-copies the object. Derived points are recomputed on the next
// read; an override is carried over verbatim.
func (o *Object) Clone() *Object {
	c := &Object{
		name:       o.name,
		kind:       o.kind,
		ctrl:       slices.Clone(o.ctrl),
		color:      o.color,
		step:       o.step,
		rev:        1,
		overridden: o.overridden,
		override:   slices.Clone(o.override),
	}
	return c
}

// Describe renders the control points deterministically, for logs and
// equality checks.
func (o *Object) Describe() string {
	pts := lo.Map(o.ctrl, func(p Point, _ int) string { return p.String() })
	return fmt.Sprintf("%s [%v] {%s}", o.name, o.kind, strings.Join(pts, ", "))
}

func (o *Object) String() string { return o.Describe() }
