package render

import (
	"fmt"
	"math"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

// ProjectionMode selects how window-space depth affects the image.
type ProjectionMode int

const (
	Parallel ProjectionMode = iota
	Perspective
)

func (m ProjectionMode) String() string {
	switch m {
	case Parallel:
		return "parallel"
	case Perspective:
		return "perspective"
	default:
		return fmt.Sprintf("ProjectionMode(%d)", int(m))
	}
}

// ParseProjectionMode accepts "parallel" or "perspective".
func ParseProjectionMode(s string) (ProjectionMode, error) {
	switch s {
	case "parallel", "orthographic":
		return Parallel, nil
	case "perspective":
		return Perspective, nil
	}
	return 0, fmt.Errorf("%w: unknown projection %q", geom.ErrInvalidParameter, s)
}

// Direction is a panning direction relative to the window's own axes.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// DefaultDistance is the perspective distance used until one is set.
const DefaultDistance = 20.0

// nearFraction keeps geometry a sliver in front of the center of
// projection so the perspective divide stays finite.
const nearFraction = 1e-3

type windowState struct {
	center     math3d.Vec3
	halfWidth  float64
	halfHeight float64
	angles     math3d.Vec3 // degrees about the window's X, Y and Z axes
	mode       ProjectionMode
	distance   float64
}

// Window is the movable view rectangle inside world space. Its contents
// are mapped onto the normalized square [-1,1]² that the clipper works in.
type Window struct {
	windowState
	initial windowState

	// Cached world-to-window matrix (computed on demand)
	view      math3d.Mat4
	viewDirty bool
}

// NewWindow creates a window centered at center with the given half
// extents. The construction-time state is what Reset returns to.
func NewWindow(center math3d.Vec3, halfWidth, halfHeight float64) (*Window, error) {
	if !center.IsFinite() {
		return nil, fmt.Errorf("%w: window center %v", geom.ErrInvalidParameter, center)
	}
	if !(halfWidth > 0) || !(halfHeight > 0) || math.IsInf(halfWidth, 0) || math.IsInf(halfHeight, 0) {
		return nil, fmt.Errorf("%w: window extents %vx%v", geom.ErrInvalidParameter, halfWidth, halfHeight)
	}
	st := windowState{
		center:     center,
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
		mode:       Parallel,
		distance:   DefaultDistance,
	}
	return &Window{windowState: st, initial: st, viewDirty: true}, nil
}

// DefaultWindow returns a 20×20 window centered on the origin.
func DefaultWindow() *Window {
	w, _ := NewWindow(math3d.Zero3(), 10, 10)
	return w
}

// FromOutline rebuilds a window from its four world-space corners ordered
// bottom-left, bottom-right, top-right, top-left. Only the in-plane angle
// is recovered.
func FromOutline(corners [4]math3d.Vec3) (*Window, error) {
	bottom := corners[1].Sub(corners[0])
	side := corners[3].Sub(corners[0])
	w, err := NewWindow(math3d.Centroid(corners[:]), bottom.Len()/2, side.Len()/2)
	if err != nil {
		return nil, err
	}
	w.angles.Z = math.Atan2(bottom.Y, bottom.X) * 180 / math.Pi
	w.SetHome()
	return w, nil
}

// Clone copies the window including its reset state.
func (w *Window) Clone() *Window {
	c := *w
	return &c
}

// Center returns the window center in world space.
func (w *Window) Center() math3d.Vec3 { return w.center }

// HalfExtents returns the half width and half height.
func (w *Window) HalfExtents() (halfWidth, halfHeight float64) {
	return w.halfWidth, w.halfHeight
}

// Angles returns the accumulated rotation about the window's X, Y and Z
// axes, in degrees.
func (w *Window) Angles() math3d.Vec3 { return w.angles }

// Mode returns the projection mode.
func (w *Window) Mode() ProjectionMode { return w.mode }

// Distance returns the perspective center-of-projection distance.
func (w *Window) Distance() float64 { return w.distance }

// orientation maps window-local axes to world axes.
func (w *Window) orientation() math3d.Mat4 {
	return math3d.Compose(
		math3d.RotateAxis(math3d.AxisX, w.angles.X),
		math3d.RotateAxis(math3d.AxisY, w.angles.Y),
		math3d.RotateAxis(math3d.AxisZ, w.angles.Z),
	)
}

// Right returns the window's local X axis in world space.
func (w *Window) Right() math3d.Vec3 {
	return w.orientation().MulVec3Dir(math3d.V3(1, 0, 0))
}

// Up returns the window's local Y axis in world space.
func (w *Window) Up() math3d.Vec3 {
	return w.orientation().MulVec3Dir(math3d.V3(0, 1, 0))
}

// ViewMatrix returns the world-to-window transform.
func (w *Window) ViewMatrix() math3d.Mat4 {
	if w.viewDirty {
		// Inverse of Translate(center)·R: the rotation part is orthonormal,
		// so its transpose is its inverse.
		w.view = w.orientation().Transpose().Mul(math3d.Translate(w.center.Negate()))
		w.viewDirty = false
	}
	return w.view
}

// Pan shifts the window along its own axes by factor half-extents.
func (w *Window) Pan(dir Direction, factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: pan factor %v", geom.ErrInvalidParameter, factor)
	}
	var delta math3d.Vec3
	switch dir {
	case Up:
		delta = w.Up().Scale(factor * w.halfHeight)
	case Down:
		delta = w.Up().Scale(-factor * w.halfHeight)
	case Right:
		delta = w.Right().Scale(factor * w.halfWidth)
	case Left:
		delta = w.Right().Scale(-factor * w.halfWidth)
	default:
		return fmt.Errorf("%w: unknown direction %v", geom.ErrInvalidParameter, dir)
	}
	w.center = w.center.Add(delta)
	w.viewDirty = true
	return nil
}

// Rescale multiplies both half extents by factor: below 1 zooms in, above
// 1 zooms out.
func (w *Window) Rescale(factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: rescale factor %v", geom.ErrInvalidParameter, factor)
	}
	w.halfWidth *= factor
	w.halfHeight *= factor
	return nil
}

// Rotate turns the window deg degrees about one of its own axes. Rotating
// about Z spins the view in its plane.
func (w *Window) Rotate(deg float64, axis math3d.Axis) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return fmt.Errorf("%w: window angle %v", geom.ErrInvalidParameter, deg)
	}
	switch axis {
	case math3d.AxisX:
		w.angles.X = math.Mod(w.angles.X+deg, 360)
	case math3d.AxisY:
		w.angles.Y = math.Mod(w.angles.Y+deg, 360)
	case math3d.AxisZ:
		w.angles.Z = math.Mod(w.angles.Z+deg, 360)
	default:
		return fmt.Errorf("%w: unknown axis %v", geom.ErrInvalidParameter, axis)
	}
	w.viewDirty = true
	return nil
}

// SetProjection switches the projection mode. Perspective needs a positive
// distance; parallel keeps a positive one for a later switch and ignores
// anything else.
func (w *Window) SetProjection(mode ProjectionMode, distance float64) error {
	switch mode {
	case Parallel:
		if distance > 0 && !math.IsInf(distance, 0) {
			w.distance = distance
		}
		w.mode = Parallel
	case Perspective:
		if !(distance > 0) || math.IsInf(distance, 0) {
			return fmt.Errorf("%w: projection distance %v", geom.ErrInvalidParameter, distance)
		}
		w.mode = Perspective
		w.distance = distance
	default:
		return fmt.Errorf("%w: unknown projection %v", geom.ErrInvalidParameter, mode)
	}
	return nil
}

// SetHome makes the current state the one Reset returns to.
func (w *Window) SetHome() {
	w.initial = w.windowState
}

// Reset restores the state the window was constructed (or imported) with.
func (w *Window) Reset() {
	w.windowState = w.initial
	w.viewDirty = true
}

// ToWindow expresses a world point in the window's local frame.
func (w *Window) ToWindow(p math3d.Vec3) math3d.Vec3 {
	return w.ViewMatrix().MulVec3(p)
}

// nearZ is the window-frame depth below which perspective geometry is cut.
func (w *Window) nearZ() float64 {
	return -w.distance * (1 - nearFraction)
}

// Project maps a point already in window space to normalized coordinates.
// It reports false when perspective puts the point behind the center of
// projection.
func (w *Window) Project(q math3d.Vec3) (math3d.Vec2, bool) {
	x, y := q.X, q.Y
	if w.mode == Perspective {
		if q.Z < w.nearZ() {
			return math3d.Vec2{}, false
		}
		s := w.distance / (q.Z + w.distance)
		x *= s
		y *= s
	}
	return math3d.V2(x/w.halfWidth, y/w.halfHeight), true
}

// MapToNormalized maps a world point into the normalized window square.
func (w *Window) MapToNormalized(p math3d.Vec3) (math3d.Vec2, bool) {
	return w.Project(w.ToWindow(p))
}

// Outline returns the window corners in world space: bottom-left,
// bottom-right, top-right, top-left.
func (w *Window) Outline() [4]math3d.Vec3 {
	toWorld := math3d.Compose(w.orientation(), math3d.Translate(w.center))
	hw, hh := w.halfWidth, w.halfHeight
	return [4]math3d.Vec3{
		toWorld.MulVec3(math3d.V3(-hw, -hh, 0)),
		toWorld.MulVec3(math3d.V3(hw, -hh, 0)),
		toWorld.MulVec3(math3d.V3(hw, hh, 0)),
		toWorld.MulVec3(math3d.V3(-hw, hh, 0)),
	}
}
