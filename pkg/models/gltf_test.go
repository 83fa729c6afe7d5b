package models

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/sgi/pkg/geom"
	"github.com/taigrr/sgi/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	assert.ErrorIs(t, err, ErrReadFailure)
}

func TestBuildGLTFLayout(t *testing.T) {
	recs := sampleScene()
	doc, err := BuildGLTF(recs)
	require.NoError(t, err)

	assert.Len(t, doc.Nodes, len(recs))
	assert.Len(t, doc.Meshes, len(recs))
	assert.Len(t, doc.Scenes[0].Nodes, len(recs))
	assert.Len(t, doc.Materials, 2, "only colored records get a material")
	require.Len(t, doc.Buffers, 1)
	assert.Equal(t, 4*3*(1+2+3+5+16+4), len(doc.Buffers[0].Data))

	assert.Equal(t, gltf.PrimitivePoints, doc.Meshes[0].Primitives[0].Mode)
	assert.Equal(t, gltf.PrimitiveLines, doc.Meshes[1].Primitives[0].Mode)
	assert.Equal(t, gltf.PrimitiveLineLoop, doc.Meshes[2].Primitives[0].Mode)
	assert.Equal(t, gltf.PrimitiveLineStrip, doc.Meshes[3].Primitives[0].Mode)
}

func TestGLTFDocumentRoundTrip(t *testing.T) {
	recs := sampleScene()
	doc, err := BuildGLTF(recs)
	require.NoError(t, err)

	got, err := RecordsFromGLTF(doc)
	require.NoError(t, err)
	require.Len(t, got, len(recs))
	for i := range recs {
		assert.Equal(t, recs[i].Name, got[i].Name)
		assert.Equal(t, recs[i].Kind, got[i].Kind, recs[i].Name)
		assert.Equal(t, recs[i].Color, got[i].Color, recs[i].Name)
		require.Len(t, got[i].Points, len(recs[i].Points))
		for j, p := range recs[i].Points {
			// Positions are stored as float32.
			assert.True(t, p.ApproxEqual(got[i].Points[j], 1e-6), "%s[%d] = %v, want %v", recs[i].Name, j, got[i].Points[j], p)
		}
	}
}

func TestSaveLoadGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.glb")
	recs := []Record{
		{Name: "dot", Kind: geom.KindPoint, Points: []math3d.Vec3{math3d.V3(1, 2, 3)}, Color: color.RGBA{0, 255, 0, 255}},
		{Name: "edge", Kind: geom.KindLine, Points: []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(0.5, 0.25, 0)}},
		{Name: "tri", Kind: geom.KindPolygon, Points: []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)}},
	}
	require.NoError(t, SaveGLB(path, recs))

	got, err := LoadGLB(path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestTriangleMeshBecomesPolygons(t *testing.T) {
	doc, err := BuildGLTF([]Record{{
		Name:   "mesh",
		Kind:   geom.KindPolygon,
		Points: []math3d.Vec3{{}, math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(1, 1, 0), math3d.V3(2, 1, 0), math3d.V3(1, 2, 0)},
	}})
	require.NoError(t, err)
	doc.Meshes[0].Extras = nil
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveTriangles

	got, err := RecordsFromGLTF(doc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mesh", got[0].Name)
	assert.Equal(t, "mesh.0.1", got[1].Name)
	assert.Equal(t, geom.KindPolygon, got[1].Kind)
	assert.Len(t, got[1].Points, 3)
}

func TestMalformedGLTFIsReadFailure(t *testing.T) {
	tests := map[string]func(doc *gltf.Document){
		"missing buffer view":  func(doc *gltf.Document) { doc.Accessors[0].BufferView = gltf.Index(7) },
		"missing buffer":       func(doc *gltf.Document) { doc.BufferViews[0].Buffer = 3 },
		"negative offset":      func(doc *gltf.Document) { doc.Accessors[0].ByteOffset = -4 },
		"accessor out of data": func(doc *gltf.Document) { doc.Accessors[0].Count = 1000 },
		"missing accessor":     func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 42 },
	}
	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := BuildGLTF(sampleScene()[:2])
			require.NoError(t, err)
			corrupt(doc)

			var recs []Record
			require.NotPanics(t, func() { recs, err = RecordsFromGLTF(doc) })
			assert.ErrorIs(t, err, ErrReadFailure)
			assert.Nil(t, recs)
		})
	}
}
