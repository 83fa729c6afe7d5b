// Package world owns a scene: the named objects, the one window looking at
// them, and the clipper the frame pipeline uses. Every request from a
// controller goes through a *World.
package world

import (
	"errors"
	"fmt"
	"image/color"
	"slices"

	"github.com/samber/lo"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
	"github.com/taigrr/sgi/pkg/models"
	"github.com/taigrr/sgi/pkg/render"
)

// ErrNotFound reports a request naming an object that does not exist.
var ErrNotFound = errors.New("world: object not found")

// WindowRecordName is the record name used for the window outline on
// export.
const WindowRecordName = "window"

// World maps unique names to objects and holds exactly one window.
type World struct {
	objects map[string]*geom.Object
	order   []string

	home    *render.Window
	window  *render.Window
	clipper render.Clipper
	step    float64
}

// Option configures a World.
type Option func(*World)

// WithWindow sets the starting window. Imports without a window record
// fall back to it.
func WithWindow(w *render.Window) Option {
	return func(wd *World) { wd.home = w.Clone() }
}

// WithClipper selects the line clipper.
func WithClipper(c render.Clipper) Option {
	return func(wd *World) { wd.clipper = c }
}

// WithStep sets the tessellation step given to inserted objects.
func WithStep(t float64) Option {
	return func(wd *World) { wd.step = t }
}

// New creates an empty world.
func New(opts ...Option) *World {
	w := &World{
		objects: make(map[string]*geom.Object),
		home:    render.DefaultWindow(),
		clipper: render.CohenSutherland{View: render.DefaultViewport()},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.window = w.home.Clone()
	return w
}

// Insert creates and adds an object. A zero color picks the next palette
// color.
func (w *World) Insert(name string, kind geom.Kind, pts []geom.Point, c color.RGBA) (*geom.Object, error) {
	if kind == geom.KindWindow {
		Logger().Warn("insert rejected", "name", name, "reason", "window kind")
		return nil, fmt.Errorf("%w: the window is not an ordinary object", geom.ErrInvalidGeometry)
	}
	if c.A == 0 {
		c = render.PaletteColor(len(w.order))
	}
	o, err := geom.New(name, kind, pts, c)
	if err != nil {
		Logger().Warn("insert rejected", "name", name, "kind", kind, "err", err)
		return nil, err
	}
	if err := w.Add(o); err != nil {
		return nil, err
	}
	return o, nil
}

// Add inserts an already built object. The world takes ownership.
func (w *World) Add(o *geom.Object) error {
	if o == nil {
		return fmt.Errorf("%w: nil object", geom.ErrInvalidGeometry)
	}
	if o.Kind() == geom.KindWindow {
		return fmt.Errorf("%w: the window is not an ordinary object", geom.ErrInvalidGeometry)
	}
	if _, dup := w.objects[o.Name()]; dup {
		Logger().Warn("insert rejected", "name", o.Name(), "reason", "duplicate")
		return fmt.Errorf("%w: name %q already exists", geom.ErrInvalidGeometry, o.Name())
	}
	if w.step > 0 {
		if err := o.SetStep(w.step); err != nil {
			return err
		}
	}
	w.objects[o.Name()] = o
	w.order = append(w.order, o.Name())
	Logger().Debug("inserted", "object", o.Describe())
	return nil
}

// Remove deletes the named object.
func (w *World) Remove(name string) error {
	if _, ok := w.objects[name]; !ok {
		return w.notFound(name)
	}
	delete(w.objects, name)
	w.order = slices.DeleteFunc(w.order, func(n string) bool { return n == name })
	Logger().Debug("removed", "name", name)
	return nil
}

// Clear removes every object. The window is untouched.
func (w *World) Clear() {
	clear(w.objects)
	w.order = w.order[:0]
	Logger().Debug("cleared")
}

// Contains reports whether name exists.
func (w *World) Contains(name string) bool {
	_, ok := w.objects[name]
	return ok
}

// Len returns the number of objects.
func (w *World) Len() int { return len(w.order) }

// Object returns the named object.
func (w *World) Object(name string) (*geom.Object, error) {
	o, ok := w.objects[name]
	if !ok {
		return nil, w.notFound(name)
	}
	return o, nil
}

// Names lists the objects in insertion order.
func (w *World) Names() []string {
	return slices.Clone(w.order)
}

// Objects lists the objects in insertion order.
func (w *World) Objects() []*geom.Object {
	return lo.Map(w.order, func(n string, _ int) *geom.Object { return w.objects[n] })
}

func (w *World) notFound(name string) error {
	Logger().Warn("unknown object", "name", name)
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Transform applies op to the named object. A failing operation leaves the
// object unchanged.
func (w *World) Transform(name string, op Operation) error {
	o, ok := w.objects[name]
	if !ok {
		return w.notFound(name)
	}
	if err := op.Apply(o.Clone()); err != nil {
		Logger().Warn("transform rejected", "name", name, "op", op.String(), "err", err)
		return err
	}
	if err := op.Apply(o); err != nil {
		return err
	}
	Logger().Debug("transformed", "name", name, "op", op.String())
	return nil
}

// Translate moves the named object by (dx, dy, dz).
func (w *World) Translate(name string, dx, dy, dz float64) error {
	return w.Transform(name, Translate{D: math3d.V3(dx, dy, dz)})
}

// Scale resizes the named object about its center.
func (w *World) Scale(name string, sx, sy, sz float64) error {
	return w.Transform(name, Scale{S: math3d.V3(sx, sy, sz)})
}

// RotateAboutPoint rotates the named object about the axis through p.
func (w *World) RotateAboutPoint(name string, p math3d.Vec3, deg float64, axis math3d.Axis) error {
	return w.Transform(name, RotateAboutPoint{Pivot: p, Deg: deg, Axis: axis})
}

// RotateAboutCenter rotates the named object about its own center.
func (w *World) RotateAboutCenter(name string, deg float64, axis math3d.Axis) error {
	return w.Transform(name, RotateAboutCenter{Deg: deg, Axis: axis})
}

// RotateAboutAxis rotates the named object about an arbitrary line.
func (w *World) RotateAboutAxis(name string, origin, dir math3d.Vec3, deg float64) error {
	return w.Transform(name, RotateAboutAxis{Origin: origin, Dir: dir, Deg: deg})
}

// SetOverride replaces a curve's tessellation with pts.
func (w *World) SetOverride(name string, pts []geom.Point) error {
	o, err := w.Object(name)
	if err != nil {
		return err
	}
	return o.SetOverride(pts)
}

// ClearOverride returns a curve to its derived tessellation.
func (w *World) ClearOverride(name string) error {
	o, err := w.Object(name)
	if err != nil {
		return err
	}
	o.ClearOverride()
	return nil
}

// SetStep changes the named object's tessellation step.
func (w *World) SetStep(name string, t float64) error {
	o, err := w.Object(name)
	if err != nil {
		return err
	}
	return o.SetStep(t)
}

// Window returns the live window.
func (w *World) Window() *render.Window { return w.window }

// Clipper returns the active clipper.
func (w *World) Clipper() render.Clipper { return w.clipper }

// Pan moves the window along its own axes.
func (w *World) Pan(dir render.Direction, factor float64) error {
	if err := w.window.Pan(dir, factor); err != nil {
		Logger().Warn("pan rejected", "err", err)
		return err
	}
	Logger().Debug("pan", "dir", dir, "factor", factor, "center", w.window.Center())
	return nil
}

// Rescale zooms the window.
func (w *World) Rescale(factor float64) error {
	if err := w.window.Rescale(factor); err != nil {
		Logger().Warn("rescale rejected", "err", err)
		return err
	}
	Logger().Debug("rescale", "factor", factor)
	return nil
}

// RotateWindow turns the window about one of its axes.
func (w *World) RotateWindow(deg float64, axis math3d.Axis) error {
	if err := w.window.Rotate(deg, axis); err != nil {
		Logger().Warn("window rotation rejected", "err", err)
		return err
	}
	Logger().Debug("rotate window", "deg", deg, "axis", axis)
	return nil
}

// ResetWindow restores the window's construction or import state.
func (w *World) ResetWindow() {
	w.window.Reset()
	Logger().Debug("reset window")
}

// SetProjection switches between parallel and perspective projection.
func (w *World) SetProjection(mode render.ProjectionMode, distance float64) error {
	if err := w.window.SetProjection(mode, distance); err != nil {
		Logger().Warn("projection rejected", "err", err)
		return err
	}
	Logger().Debug("projection", "mode", mode, "distance", w.window.Distance())
	return nil
}

// Render runs the frame pipeline over every object in insertion order.
func (w *World) Render() []render.Segment {
	drawables := lo.Map(w.Objects(), func(o *geom.Object, _ int) render.Drawable { return o })
	return render.NewRenderer(w.window, w.clipper).Render(drawables)
}

// Import replaces the scene with recs. A window record becomes the new
// window and its reset state, keeping the projection of the current home
// window. On error nothing changes.
func (w *World) Import(recs []models.Record) error {
	objects := make(map[string]*geom.Object, len(recs))
	order := make([]string, 0, len(recs))
	var win *render.Window
	for _, r := range recs {
		if r.Kind == geom.KindWindow {
			if win != nil {
				return fmt.Errorf("%w: more than one window record", geom.ErrInvalidGeometry)
			}
			if len(r.Points) != 4 {
				return fmt.Errorf("%w: window record needs 4 corners, got %d", geom.ErrInvalidGeometry, len(r.Points))
			}
			var err error
			if win, err = render.FromOutline([4]math3d.Vec3(r.Points)); err != nil {
				return fmt.Errorf("window record: %w", err)
			}
			if err := win.SetProjection(w.home.Mode(), w.home.Distance()); err != nil {
				return fmt.Errorf("window record: %w", err)
			}
			win.SetHome()
			continue
		}
		if r.Color.A == 0 {
			r.Color = render.PaletteColor(len(order))
		}
		o, err := r.Object()
		if err != nil {
			Logger().Warn("import rejected", "record", r.Name, "err", err)
			return err
		}
		if _, dup := objects[o.Name()]; dup {
			return fmt.Errorf("%w: name %q already exists", geom.ErrInvalidGeometry, o.Name())
		}
		if w.step > 0 {
			if err := o.SetStep(w.step); err != nil {
				return err
			}
		}
		objects[o.Name()] = o
		order = append(order, o.Name())
	}

	if win == nil {
		win = w.home.Clone()
		win.Reset()
	}
	w.objects, w.order, w.window = objects, order, win
	Logger().Info("imported", "objects", len(order), "window", win.Center())
	return nil
}

// Export captures the window outline followed by every object in
// insertion order.
func (w *World) Export() []models.Record {
	outline := w.window.Outline()
	recs := []models.Record{{
		Name:   WindowRecordName,
		Kind:   geom.KindWindow,
		Points: outline[:],
	}}
	recs = append(recs, lo.Map(w.Objects(), func(o *geom.Object, _ int) models.Record {
		return models.FromObject(o)
	})...)
	Logger().Info("exported", "records", len(recs))
	return recs
}
