package uvmesh

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowpaint/internal/mathutil"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func packLE(t *testing.T, vals ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range vals {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	return buf.Bytes()
}

const quadOBJ = `# quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func TestLoadOBJFanTriangulation(t *testing.T) {
	m, err := LoadOBJ(writeFixture(t, "quad.obj", quadOBJ))
	require.NoError(t, err)

	assert.Len(t, m.Positions, 4)
	assert.Len(t, m.UVs, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, mathutil.Vec2{1, 1}, m.UVs[2])
}

func TestLoadOBJDeduplicatesCorners(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
vt 0 0
vt 1 0
vt 0 1
vt 1 1
f 1/1 2/2 3/3
f 2/2 4/4 3/3
`
	m, err := LoadOBJ(writeFixture(t, "tris.obj", src))
	require.NoError(t, err)
	// The shared corners 2/2 and 3/3 appear once each.
	assert.Len(t, m.Positions, 4)
	assert.Len(t, m.Indices, 6)
}

func TestLoadOBJMissingTexcoords(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`
	m, err := LoadOBJ(writeFixture(t, "nouv.obj", src))
	require.NoError(t, err)
	require.Len(t, m.UVs, 3)
	for _, uv := range m.UVs {
		assert.Equal(t, mathutil.Vec2{}, uv)
	}
}

func TestLoadOBJRejectsMalformedLines(t *testing.T) {
	_, err := LoadOBJ(writeFixture(t, "short.obj", "v 0 0\n"))
	assert.Error(t, err)

	_, err = LoadOBJ(writeFixture(t, "nan.obj", "v a b c\n"))
	assert.Error(t, err)

	_, err = LoadOBJ(writeFixture(t, "face.obj", "v 0 0 0\nf 1/x 1 1\n"))
	assert.Error(t, err)

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}

func TestUVEdgesUniqueUndirected(t *testing.T) {
	m := &Mesh{
		UVs: []mathutil.Vec2{
			{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}, {0.6, 0.6},
		},
		// Two triangles sharing edge 1-2, then a degenerate triangle.
		Indices: []uint32{0, 1, 2, 1, 3, 2, 4, 4, 5},
	}
	edges := m.UVEdges()
	assert.Len(t, edges, 5)
}

func TestUVEdgesEmptyMesh(t *testing.T) {
	m := &Mesh{}
	assert.Empty(t, m.UVEdges())
}

// gltfQuad builds a .gltf with an embedded base64 buffer: a quad with UVs and
// a material chain, plus a second primitive reusing the positions without
// texcoords.
func gltfQuad(t *testing.T) string {
	t.Helper()
	bin := packLE(t,
		[]uint16{0, 1, 2, 0, 2, 3},
		[]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		[]float32{0.25, 0.25, 1, 1, 1, 0, 0, 1},
	)
	doc := fmt.Sprintf(`{
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"children": [1]}, {"mesh": 0}],
  "meshes": [{"primitives": [
    {"attributes": {"POSITION": 1, "TEXCOORD_0": 2}, "indices": 0, "material": 0},
    {"attributes": {"POSITION": 1}, "indices": 0}
  ]}],
  "materials": [{"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
  "textures": [{"source": 0}],
  "images": [{"uri": "base.png"}],
  "buffers": [{"uri": "data:application/octet-stream;base64,%s", "byteLength": %d}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 12},
    {"buffer": 0, "byteOffset": 12, "byteLength": 48},
    {"buffer": 0, "byteOffset": 60, "byteLength": 32}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5123, "count": 6, "type": "SCALAR"},
    {"bufferView": 1, "componentType": 5126, "count": 4, "type": "VEC3"},
    {"bufferView": 2, "componentType": 5126, "count": 4, "type": "VEC2"}
  ]
}`, base64.StdEncoding.EncodeToString(bin), len(bin))
	return writeFixture(t, "quad.gltf", doc)
}

func TestLoadGLTFEmbeddedBuffer(t *testing.T) {
	m, err := LoadGLTF(gltfQuad(t))
	require.NoError(t, err)

	// Both primitives landed, the second offset past the first's vertices.
	assert.Len(t, m.Positions, 8)
	assert.Len(t, m.Indices, 12)
	assert.Equal(t, uint32(4), m.Indices[6])

	// V is flipped into the bottom-left origin convention.
	assert.InDelta(t, 0.25, m.UVs[0][0], 1e-6)
	assert.InDelta(t, 0.75, m.UVs[0][1], 1e-6)

	// The second primitive has no texcoords.
	assert.Equal(t, mathutil.Vec2{}, m.UVs[4])

	assert.Equal(t, "base.png", m.BaseColorURI)
	assert.Len(t, m.UVEdges(), 10)
}

func TestLoadGLTFExternalInterleavedBuffer(t *testing.T) {
	dir := t.TempDir()
	bin := packLE(t,
		[]uint32{0, 1, 2},
		[3]float32{0, 0, 0}, [2]float32{0, 1},
		[3]float32{1, 0, 0}, [2]float32{1, 1},
		[3]float32{0, 1, 0}, [2]float32{0, 0},
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geom.bin"), bin, 0o644))

	doc := fmt.Sprintf(`{
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [
    {"attributes": {"POSITION": 1, "TEXCOORD_0": 2}, "indices": 0}
  ]}],
  "buffers": [{"uri": "geom.bin", "byteLength": %d}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 12},
    {"buffer": 0, "byteOffset": 12, "byteLength": 60, "byteStride": 20}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5125, "count": 3, "type": "SCALAR"},
    {"bufferView": 1, "byteOffset": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "byteOffset": 12, "componentType": 5126, "count": 3, "type": "VEC2"}
  ]
}`, len(bin))
	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	m, err := LoadGLTF(path)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, [3]float32{1, 0, 0}, m.Positions[1])
	assert.Equal(t, mathutil.Vec2{0, 0}, m.UVs[0])
	assert.Equal(t, mathutil.Vec2{1, 0}, m.UVs[1])
	assert.Equal(t, mathutil.Vec2{0, 1}, m.UVs[2])
	assert.Empty(t, m.BaseColorURI)
}

func TestLoadGLTFWithoutTriangles(t *testing.T) {
	doc := `{"scene": 0, "scenes": [{"nodes": [0]}], "nodes": [{}]}`
	_, err := LoadGLTF(writeFixture(t, "empty.gltf", doc))
	assert.ErrorContains(t, err, "no triangle data")
}

func TestLoadGLTFAccessorOutOfBounds(t *testing.T) {
	bin := packLE(t, []uint16{0, 1, 2})
	doc := fmt.Sprintf(`{
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 1}, "indices": 0}]}],
  "buffers": [{"uri": "data:application/octet-stream;base64,%s", "byteLength": %d}],
  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 6}],
  "accessors": [
    {"bufferView": 0, "componentType": 5123, "count": 3, "type": "SCALAR"},
    {"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3"}
  ]
}`, base64.StdEncoding.EncodeToString(bin), len(bin))
	_, err := LoadGLTF(writeFixture(t, "oob.gltf", doc))
	assert.Error(t, err)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	m, err := Load(writeFixture(t, "quad.obj", quadOBJ))
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())

	_, err = Load("mesh.fbx")
	assert.ErrorContains(t, err, "unsupported mesh format")
}
