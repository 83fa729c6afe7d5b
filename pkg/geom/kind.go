package geom

import (
	"fmt"
	"strings"
)

// Kind tags the closed set of object variants.
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindPolygon
	KindWindow
	KindBezierSurface
	KindBSplineCurve
)

var kindNames = [...]string{
	KindPoint:         "point",
	KindLine:          "line",
	KindPolygon:       "polygon",
	KindWindow:        "window",
	KindBezierSurface: "bezier",
	KindBSplineCurve:  "bspline",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Arity returns the minimum and maximum number of control points a kind
// accepts. max is -1 when unbounded.
func (k Kind) Arity() (min, max int) {
	switch k {
	case KindPoint:
		return 1, 1
	case KindLine:
		return 2, 2
	case KindPolygon:
		return 3, -1
	case KindWindow:
		return 4, 4
	case KindBezierSurface:
		return 16, 16
	case KindBSplineCurve:
		return 4, -1
	default:
		return 0, 0
	}
}

// Parametric reports whether the renderable points are derived from the
// control points rather than being the control points themselves.
func (k Kind) Parametric() bool {
	return k == KindBezierSurface || k == KindBSplineCurve
}

// Closed reports whether the control points form a closed loop.
func (k Kind) Closed() bool {
	return k == KindPolygon || k == KindWindow
}
