package models

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

// objReader accumulates state while scanning an OBJ stream.
type objReader struct {
	verts  []math3d.Vec3
	recs   []Record
	object string
	color  color.RGBA
	cstype string
	used   map[string]int
	taken  map[string]bool
	line   int
}

// ReadOBJ parses the OBJ subset sgi writes: o, v, p, l, f, usemtl with a
// hex color, cstype/curv/surf for free-form geometry, and the w statement
// for the window outline. Other statements are skipped.
func ReadOBJ(r io.Reader) ([]Record, error) {
	or := &objReader{used: make(map[string]int), taken: make(map[string]bool)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		or.line++
		if err := or.statement(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailure, err)
	}
	return or.recs, nil
}

func (or *objReader) fail(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrReadFailure, or.line, fmt.Sprintf(format, args...))
}

func (or *objReader) statement(text string) error {
	fields := strings.Fields(text)
	for i, f := range fields {
		// A usemtl argument may be a #rrggbb color rather than a comment.
		if strings.HasPrefix(f, "#") && (i != 1 || fields[0] != "usemtl") {
			fields = fields[:i]
			break
		}
	}
	if len(fields) == 0 {
		return nil
	}
	args := fields[1:]
	switch fields[0] {
	case "o", "g":
		if len(args) == 0 {
			return or.fail("%s without a name", fields[0])
		}
		or.object = strings.Join(args, " ")
		or.color = color.RGBA{}
	case "v":
		return or.vertex(args)
	case "usemtl":
		if len(args) > 0 {
			if c, ok := hexColor(args[0]); ok {
				or.color = c
			}
		}
	case "cstype":
		if len(args) == 0 {
			return or.fail("cstype without a type")
		}
		or.cstype = args[len(args)-1]
	case "p":
		idx, err := or.indices(args)
		if err != nil {
			return err
		}
		for _, i := range idx {
			if err := or.emit(geom.KindPoint, []int{i}); err != nil {
				return err
			}
		}
	case "l":
		idx, err := or.indices(args)
		if err != nil {
			return err
		}
		if len(idx) < 2 {
			return or.fail("line needs two vertices")
		}
		for k := 1; k < len(idx); k++ {
			if err := or.emit(geom.KindLine, idx[k-1:k+1]); err != nil {
				return err
			}
		}
	case "f":
		return or.element(geom.KindPolygon, args)
	case "w":
		return or.element(geom.KindWindow, args)
	case "curv":
		if or.cstype != "bspline" {
			return or.fail("curv with cstype %q", or.cstype)
		}
		if len(args) < 2 {
			return or.fail("curv without a parameter range")
		}
		return or.element(geom.KindBSplineCurve, args[2:])
	case "surf":
		if or.cstype != "bezier" {
			return or.fail("surf with cstype %q", or.cstype)
		}
		if len(args) < 4 {
			return or.fail("surf without a parameter range")
		}
		return or.element(geom.KindBezierSurface, args[4:])
	}
	return nil
}

func (or *objReader) vertex(args []string) error {
	if len(args) < 3 {
		return or.fail("vertex needs three coordinates")
	}
	var xyz [3]float64
	for i := range xyz {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return or.fail("bad coordinate %q", args[i])
		}
		xyz[i] = f
	}
	or.verts = append(or.verts, math3d.V3(xyz[0], xyz[1], xyz[2]))
	return nil
}

func (or *objReader) element(kind geom.Kind, args []string) error {
	idx, err := or.indices(args)
	if err != nil {
		return err
	}
	return or.emit(kind, idx)
}

// indices resolves 1-based (or negative, relative) vertex references.
// Texture and normal references after a slash are ignored.
func (or *objReader) indices(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		ref, _, _ := strings.Cut(a, "/")
		n, err := strconv.Atoi(ref)
		if err != nil {
			return nil, or.fail("bad vertex index %q", a)
		}
		if n < 0 {
			n = len(or.verts) + n + 1
		}
		if n < 1 || n > len(or.verts) {
			return nil, or.fail("vertex index %s out of range", a)
		}
		out = append(out, n-1)
	}
	return out, nil
}

func (or *objReader) emit(kind geom.Kind, idx []int) error {
	if or.object == "" {
		return or.fail("%v outside of an object", kind)
	}
	name := or.object
	for n := max(or.used[or.object], 1); or.taken[name]; n++ {
		name = fmt.Sprintf("%s_%d", or.object, n+1)
	}
	or.used[or.object]++
	or.taken[name] = true
	pts := make([]math3d.Vec3, len(idx))
	for i, k := range idx {
		pts[i] = or.verts[k]
	}
	or.recs = append(or.recs, Record{Name: name, Kind: kind, Points: pts, Color: or.color})
	return nil
}

// WriteOBJ writes recs in the format ReadOBJ accepts. Vertex indices are
// global and 1-based.
func WriteOBJ(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# sgi scene")
	base := 0
	for _, r := range recs {
		fmt.Fprintf(bw, "o %s\n", r.Name)
		if c, ok := colorful.MakeColor(r.Color); ok {
			fmt.Fprintf(bw, "usemtl %s\n", strings.TrimPrefix(c.Hex(), "#"))
		}
		for _, p := range r.Points {
			fmt.Fprintf(bw, "v %s %s %s\n", fmtFloat(p.X), fmtFloat(p.Y), fmtFloat(p.Z))
		}
		refs := make([]string, len(r.Points))
		for i := range r.Points {
			refs[i] = strconv.Itoa(base + i + 1)
		}
		list := strings.Join(refs, " ")
		switch r.Kind {
		case geom.KindPoint:
			fmt.Fprintf(bw, "p %s\n", list)
		case geom.KindLine:
			fmt.Fprintf(bw, "l %s\n", list)
		case geom.KindPolygon:
			fmt.Fprintf(bw, "f %s\n", list)
		case geom.KindWindow:
			fmt.Fprintf(bw, "w %s\n", list)
		case geom.KindBSplineCurve:
			fmt.Fprintf(bw, "cstype bspline\ndeg 3\ncurv 0 1 %s\nend\n", list)
		case geom.KindBezierSurface:
			fmt.Fprintf(bw, "cstype bezier\ndeg 3 3\nsurf 0 1 0 1 %s\nend\n", list)
		default:
			return fmt.Errorf("write %s: unsupported kind %v", r.Name, r.Kind)
		}
		base += len(r.Points)
	}
	return bw.Flush()
}

// hexColor accepts rrggbb or #rrggbb material names.
func hexColor(name string) (color.RGBA, bool) {
	if !strings.HasPrefix(name, "#") {
		if len(name) != 6 {
			return color.RGBA{}, false
		}
		name = "#" + name
	}
	c, err := colorful.Hex(name)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, true
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// LoadOBJ reads the scene stored at path.
func LoadOBJ(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()
	return ReadOBJ(f)
}

// SaveOBJ writes recs to path, replacing any existing file.
func SaveOBJ(path string, recs []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create obj: %w", err)
	}
	if err := WriteOBJ(f, recs); err != nil {
		f.Close()
		return fmt.Errorf("write obj: %w", err)
	}
	return f.Close()
}
