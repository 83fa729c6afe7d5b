package models

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

// kindExtra is the mesh extras key holding the record kind.
const kindExtra = "sgi.kind"

// primitiveMode picks the glTF primitive that draws a kind as lines.
// Surfaces and curves store their control net, so they are written as
// plain points the loader restores from the extras.
func primitiveMode(k geom.Kind) gltf.PrimitiveMode {
	switch k {
	case geom.KindPoint, geom.KindBezierSurface:
		return gltf.PrimitivePoints
	case geom.KindLine:
		return gltf.PrimitiveLines
	case geom.KindPolygon, geom.KindWindow:
		return gltf.PrimitiveLineLoop
	default:
		return gltf.PrimitiveLineStrip
	}
}

// kindFromMode guesses a kind for files written by other tools.
func kindFromMode(m gltf.PrimitiveMode, n int) geom.Kind {
	switch m {
	case gltf.PrimitivePoints:
		return geom.KindPoint
	case gltf.PrimitiveLines:
		return geom.KindLine
	case gltf.PrimitiveLineLoop:
		return geom.KindPolygon
	case gltf.PrimitiveLineStrip:
		if n == 2 {
			return geom.KindLine
		}
		return geom.KindPolygon
	default:
		return geom.KindPolygon
	}
}

// BuildGLTF lays recs out as one node and mesh per record over a single
// embedded buffer.
func BuildGLTF(recs []Record) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	var data []byte
	for i, r := range recs {
		if len(r.Points) == 0 {
			return nil, fmt.Errorf("record %s: no points", r.Name)
		}
		view := len(doc.BufferViews)
		offset := len(data)
		lo3, hi3, _ := Bounds([]Record{r})
		for _, p := range r.Points {
			for _, f := range [3]float64{p.X, p.Y, p.Z} {
				data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(f)))
			}
		}
		doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
			Buffer:     0,
			ByteOffset: offset,
			ByteLength: len(data) - offset,
		})
		accessor := len(doc.Accessors)
		doc.Accessors = append(doc.Accessors, &gltf.Accessor{
			BufferView:    gltf.Index(view),
			ComponentType: gltf.ComponentFloat,
			Count:         len(r.Points),
			Type:          gltf.AccessorVec3,
			Min:           []float64{lo3.X, lo3.Y, lo3.Z},
			Max:           []float64{hi3.X, hi3.Y, hi3.Z},
		})

		prim := &gltf.Primitive{
			Mode:       primitiveMode(r.Kind),
			Attributes: map[string]int{gltf.POSITION: accessor},
		}
		if r.Color.A != 0 {
			doc.Materials = append(doc.Materials, &gltf.Material{
				Name: r.Name,
				PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
					BaseColorFactor: &[4]float64{
						float64(r.Color.R) / 255,
						float64(r.Color.G) / 255,
						float64(r.Color.B) / 255,
						float64(r.Color.A) / 255,
					},
				},
			})
			prim.Material = gltf.Index(len(doc.Materials) - 1)
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       r.Name,
			Primitives: []*gltf.Primitive{prim},
			Extras:     map[string]any{kindExtra: r.Kind.String()},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: r.Name,
			Mesh: gltf.Index(i),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, i)
	}
	if len(data) > 0 {
		doc.Buffers = []*gltf.Buffer{{ByteLength: len(data), Data: data}}
	}
	return doc, nil
}

// SaveGLB writes recs as a binary glTF file.
func SaveGLB(path string, recs []Record) error {
	doc, err := BuildGLTF(recs)
	if err != nil {
		return fmt.Errorf("build gltf: %w", err)
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

// LoadGLB reads a glTF or GLB file. Files sgi wrote come back record for
// record; triangle meshes from other tools become one polygon per triangle.
func LoadGLB(path string) ([]Record, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open gltf: %w", ErrReadFailure, err)
	}
	recs, err := RecordsFromGLTF(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return recs, nil
}

// RecordsFromGLTF walks the nodes that carry a mesh.
func RecordsFromGLTF(doc *gltf.Document) ([]Record, error) {
	var recs []Record
	for ni, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("%w: node %d references missing mesh", ErrReadFailure, ni)
		}
		m := doc.Meshes[*node.Mesh]
		name := node.Name
		if name == "" {
			name = m.Name
		}
		if name == "" {
			name = fmt.Sprintf("object%d", ni)
		}
		stored, hasKind := meshKind(m)
		for pi, prim := range m.Primitives {
			got, err := primitiveRecords(doc, prim, stored, hasKind)
			if err != nil {
				return nil, fmt.Errorf("%w: mesh %q: %w", ErrReadFailure, m.Name, err)
			}
			for gi := range got {
				got[gi].Name = name
				if pi > 0 || gi > 0 {
					got[gi].Name = fmt.Sprintf("%s.%d.%d", name, pi, gi)
				}
			}
			recs = append(recs, got...)
		}
	}
	return recs, nil
}

func meshKind(m *gltf.Mesh) (geom.Kind, bool) {
	extras, ok := m.Extras.(map[string]any)
	if !ok {
		return 0, false
	}
	s, ok := extras[kindExtra].(string)
	if !ok {
		return 0, false
	}
	k, err := geom.ParseKind(s)
	return k, err == nil
}

func primitiveRecords(doc *gltf.Document, prim *gltf.Primitive, stored geom.Kind, hasKind bool) ([]Record, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	if prim.Indices != nil {
		indices, err := readIndices(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		ordered := make([]math3d.Vec3, len(indices))
		for i, k := range indices {
			if k >= len(positions) {
				return nil, fmt.Errorf("index %d out of range", k)
			}
			ordered[i] = positions[k]
		}
		positions = ordered
	}
	col := materialColor(doc, prim.Material)

	if hasKind {
		return []Record{{Kind: stored, Points: positions, Color: col}}, nil
	}
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		var recs []Record
		for i := 0; i+2 < len(positions); i += 3 {
			recs = append(recs, Record{Kind: geom.KindPolygon, Points: positions[i : i+3 : i+3], Color: col})
		}
		return recs, nil
	case gltf.PrimitivePoints:
		recs := make([]Record, len(positions))
		for i, p := range positions {
			recs[i] = Record{Kind: geom.KindPoint, Points: []math3d.Vec3{p}, Color: col}
		}
		return recs, nil
	case gltf.PrimitiveLines:
		var recs []Record
		for i := 0; i+1 < len(positions); i += 2 {
			recs = append(recs, Record{Kind: geom.KindLine, Points: positions[i : i+2 : i+2], Color: col})
		}
		return recs, nil
	default:
		return []Record{{Kind: kindFromMode(prim.Mode, len(positions)), Points: positions, Color: col}}, nil
	}
}

func materialColor(doc *gltf.Document, idx *int) color.RGBA {
	if idx == nil || *idx < 0 || *idx >= len(doc.Materials) {
		return color.RGBA{}
	}
	pbr := doc.Materials[*idx].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return color.RGBA{}
	}
	f := pbr.BaseColorFactor
	to8 := func(v float64) uint8 { return uint8(math.Round(max(0, min(1, v)) * 255)) }
	return color.RGBA{to8(f[0]), to8(f[1]), to8(f[2]), to8(f[3])}
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d missing", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d missing", accessorIdx)
	}
	data, err := readAccessorData(doc, doc.Accessors[accessorIdx])
	if err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case []uint8:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []uint32:
		return widen(v), nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

func widen[T uint8 | uint16 | uint32](v []T) []int {
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}

// readAccessorData reads raw data from an embedded GLTF buffer.
func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	if bv := *accessor.BufferView; bv < 0 || bv >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d missing", bv)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d missing", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		if strings.HasPrefix(buffer.URI, "data:") || buffer.URI == "" {
			return nil, fmt.Errorf("buffer has no data")
		}
		return nil, fmt.Errorf("external buffer %q not loaded", buffer.URI)
	}
	bufData := buffer.Data

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count
	if bufferView.ByteOffset < 0 || accessor.ByteOffset < 0 || stride < 0 || count < 0 {
		return nil, fmt.Errorf("negative accessor layout")
	}

	switch accessor.Type {
	case gltf.AccessorVec3:
		if accessor.ComponentType != gltf.ComponentFloat {
			break
		}
		if stride == 0 {
			stride = 12 // 3 floats * 4 bytes
		}
		if count > 0 && start+(count-1)*stride+12 > len(bufData) {
			return nil, fmt.Errorf("accessor runs past its buffer")
		}
		result := make([][3]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 3 {
				result[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(bufData[offset+j*4:]))
			}
		}
		return result, nil

	case gltf.AccessorScalar:
		size := 0
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			size = 1
		case gltf.ComponentUshort:
			size = 2
		case gltf.ComponentUint:
			size = 4
		}
		if size == 0 {
			break
		}
		if stride == 0 {
			stride = size
		}
		if count > 0 && start+(count-1)*stride+size > len(bufData) {
			return nil, fmt.Errorf("accessor runs past its buffer")
		}
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result := make([]uint8, count)
			for i := range count {
				result[i] = bufData[start+i*stride]
			}
			return result, nil
		case gltf.ComponentUshort:
			result := make([]uint16, count)
			for i := range count {
				result[i] = binary.LittleEndian.Uint16(bufData[start+i*stride:])
			}
			return result, nil
		default:
			result := make([]uint32, count)
			for i := range count {
				result[i] = binary.LittleEndian.Uint32(bufData[start+i*stride:])
			}
			return result, nil
		}
	}

	return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
}
