package render

import (
	"fmt"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

// Viewport is the axis-aligned clip rectangle in normalized coordinates.
type Viewport struct {
	XMin, XMax float64
	YMin, YMax float64
}

// DefaultViewport is the normalized window square [-1,1]².
func DefaultViewport() Viewport {
	return Viewport{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
}

// Contains reports whether p lies inside or on the boundary.
func (v Viewport) Contains(p math3d.Vec2) bool {
	return p.X >= v.XMin && p.X <= v.XMax && p.Y >= v.YMin && p.Y <= v.YMax
}

// Outcode classifies a point against the four viewport boundaries.
type Outcode uint8

const (
	OutTop Outcode = 1 << iota
	OutBottom
	OutRight
	OutLeft
)

// Outcode computes the region code of p. Inside points get 0.
func (v Viewport) Outcode(p math3d.Vec2) Outcode {
	var c Outcode
	if p.Y > v.YMax {
		c |= OutTop
	} else if p.Y < v.YMin {
		c |= OutBottom
	}
	if p.X > v.XMax {
		c |= OutRight
	} else if p.X < v.XMin {
		c |= OutLeft
	}
	return c
}

// ClipResult is the visible part of a segment. A and B are meaningless
// when Visible is false.
type ClipResult struct {
	Visible bool
	A, B    math3d.Vec2
}

// Clipper cuts 2D segments to a viewport.
type Clipper interface {
	ClipLine(a, b math3d.Vec2) ClipResult
	Viewport() Viewport
}

// ClipPoint reports whether p survives clipping against v.
func ClipPoint(v Viewport, p math3d.Vec2) bool {
	return v.Contains(p)
}

// ClipPolygon clips each edge of the closed loop pts and returns only the
// surviving pieces. A concave polygon may come back as disjoint segments.
func ClipPolygon(c Clipper, pts []math3d.Vec2) []ClipResult {
	if len(pts) < 2 {
		return nil
	}
	var out []ClipResult
	for i := range pts {
		j := (i + 1) % len(pts)
		if len(pts) == 2 && j == 0 {
			break
		}
		if r := c.ClipLine(pts[i], pts[j]); r.Visible {
			out = append(out, r)
		}
	}
	return out
}

// ParseClipper returns the clipper named "cohen-sutherland" or
// "liang-barsky".
func ParseClipper(name string, v Viewport) (Clipper, error) {
	switch name {
	case "", "cohen-sutherland", "cs":
		return CohenSutherland{View: v}, nil
	case "liang-barsky", "lb":
		return LiangBarsky{View: v}, nil
	}
	return nil, fmt.Errorf("%w: unknown clipper %q", geom.ErrInvalidParameter, name)
}

// clipEps absorbs rounding when an intersection lands on a corner.
const clipEps = 1e-12

// CohenSutherland is the region-code line clipper.
type CohenSutherland struct {
	View Viewport
}

func (c CohenSutherland) Viewport() Viewport { return c.View }

// ClipLine clips the segment ab. The slope comes from the original
// endpoints and is reused for both ends.
func (c CohenSutherland) ClipLine(a, b math3d.Vec2) ClipResult {
	ca, cb := c.View.Outcode(a), c.View.Outcode(b)
	if ca&cb != 0 {
		return ClipResult{}
	}
	if ca|cb == 0 {
		return ClipResult{Visible: true, A: a, B: b}
	}
	l := csLine{dx: b.X - a.X, dy: b.Y - a.Y}
	if l.dx != 0 {
		l.slope = l.dy / l.dx
	}
	var ok bool
	if a, ok = c.clipEndpoint(a, ca, l); !ok {
		return ClipResult{}
	}
	if b, ok = c.clipEndpoint(b, cb, l); !ok {
		return ClipResult{}
	}
	return ClipResult{Visible: true, A: a, B: b}
}

type csLine struct {
	dx, dy float64
	slope  float64
}

// clipEndpoint moves p onto the boundary it lies outside of. Top and
// bottom are tried first; a corner-region point falls back to its side
// boundary before the segment is rejected.
func (c CohenSutherland) clipEndpoint(p math3d.Vec2, code Outcode, l csLine) (math3d.Vec2, bool) {
	if code == 0 {
		return p, true
	}
	v := c.View
	if code&(OutTop|OutBottom) != 0 && l.dy != 0 {
		y := v.YMax
		if code&OutBottom != 0 {
			y = v.YMin
		}
		x := p.X
		if l.dx != 0 {
			x = p.X + (y-p.Y)/l.slope
		}
		if x >= v.XMin-clipEps && x <= v.XMax+clipEps {
			return math3d.V2(clamp(x, v.XMin, v.XMax), y), true
		}
	}
	if code&(OutRight|OutLeft) != 0 && l.dx != 0 {
		x := v.XMax
		if code&OutLeft != 0 {
			x = v.XMin
		}
		y := p.Y + l.slope*(x-p.X)
		if y >= v.YMin-clipEps && y <= v.YMax+clipEps {
			return math3d.V2(x, clamp(y, v.YMin, v.YMax)), true
		}
	}
	return p, false
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}

// LiangBarsky is the parametric line clipper.
type LiangBarsky struct {
	View Viewport
}

func (c LiangBarsky) Viewport() Viewport { return c.View }

// ClipLine clips ab by narrowing its parameter interval against each
// boundary in turn.
func (c LiangBarsky) ClipLine(a, b math3d.Vec2) ClipResult {
	v := c.View
	d := b.Sub(a)
	p := [4]float64{-d.X, d.X, -d.Y, d.Y}
	q := [4]float64{a.X - v.XMin, v.XMax - a.X, a.Y - v.YMin, v.YMax - a.Y}

	t0, t1 := 0.0, 1.0
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return ClipResult{}
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return ClipResult{}
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return ClipResult{}
			}
			t1 = min(t1, r)
		}
	}
	res := ClipResult{Visible: true, A: a, B: b}
	if t0 > 0 {
		res.A = a.Add(d.Scale(t0))
	}
	if t1 < 1 {
		res.B = a.Add(d.Scale(t1))
	}
	return res
}
