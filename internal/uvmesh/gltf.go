package uvmesh

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"flowpaint/internal/mathutil"
)

// glTF 2.0 component type codes.
const (
	componentInt8    = 5120
	componentUint8   = 5121
	componentInt16   = 5122
	componentUint16  = 5123
	componentUint32  = 5125
	componentFloat32 = 5126
)

type gltfDoc struct {
	Scene       *int             `json:"scene"`
	Scenes      []gltfScene      `json:"scenes"`
	Nodes       []gltfNode       `json:"nodes"`
	Meshes      []gltfMesh       `json:"meshes"`
	Accessors   []gltfAccessor   `json:"accessors"`
	BufferViews []gltfBufferView `json:"bufferViews"`
	Buffers     []gltfBuffer     `json:"buffers"`
	Materials   []gltfMaterial   `json:"materials"`
	Textures    []gltfTexture    `json:"textures"`
	Images      []gltfImage      `json:"images"`
}

type gltfScene struct {
	Nodes []int `json:"nodes"`
}

type gltfNode struct {
	Mesh     *int  `json:"mesh"`
	Children []int `json:"children"`
}

type gltfMesh struct {
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
}

type gltfAccessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

type gltfBuffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

type gltfMaterial struct {
	PBRMetallicRoughness *gltfPBR `json:"pbrMetallicRoughness"`
}

type gltfPBR struct {
	BaseColorTexture *gltfTexRef `json:"baseColorTexture"`
}

type gltfTexRef struct {
	Index int `json:"index"`
}

type gltfTexture struct {
	Source *int `json:"source"`
}

type gltfImage struct {
	URI string `json:"uri"`
}

// LoadGLTF reads a .gltf file (JSON form; buffers external or base64 data
// URIs). All primitives reachable from the default scene are merged. The V
// coordinate is flipped so UVs match the bottom-left canvas origin. Binary
// .glb containers are not handled.
func LoadGLTF(path string) (*Mesh, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("uvmesh: read %s: %w", path, err)
	}
	var doc gltfDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("uvmesh: parse %s: %w", path, err)
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("uvmesh: %s: no usable scene", path)
	}

	g := &gltfFile{doc: doc, baseDir: filepath.Dir(path), bufs: make(map[int][]byte)}
	mesh := &Mesh{}
	for _, n := range doc.Scenes[sceneIdx].Nodes {
		if err := g.visit(n, mesh); err != nil {
			return nil, fmt.Errorf("uvmesh: %s: %w", path, err)
		}
	}
	if len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("uvmesh: %s: no triangle data", path)
	}
	return mesh, nil
}

type gltfFile struct {
	doc     gltfDoc
	baseDir string
	bufs    map[int][]byte
}

func (g *gltfFile) visit(nodeIdx int, out *Mesh) error {
	if nodeIdx < 0 || nodeIdx >= len(g.doc.Nodes) {
		return fmt.Errorf("node %d out of range", nodeIdx)
	}
	node := g.doc.Nodes[nodeIdx]
	if node.Mesh != nil {
		if err := g.appendMesh(*node.Mesh, out); err != nil {
			return err
		}
	}
	for _, c := range node.Children {
		if err := g.visit(c, out); err != nil {
			return err
		}
	}
	return nil
}

func (g *gltfFile) appendMesh(meshIdx int, out *Mesh) error {
	if meshIdx < 0 || meshIdx >= len(g.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	for _, prim := range g.doc.Meshes[meshIdx].Primitives {
		if prim.Indices == nil {
			continue
		}
		posAcc, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		indices, err := g.readIndices(*prim.Indices)
		if err != nil {
			return err
		}
		pos, err := g.readVec3(posAcc)
		if err != nil {
			return err
		}
		uvs := make([]mathutil.Vec2, len(pos))
		if uvAcc, ok := prim.Attributes["TEXCOORD_0"]; ok {
			read, err := g.readVec2(uvAcc)
			if err != nil {
				return err
			}
			// glTF texcoords run top-down; the canvas origin is bottom-left.
			for i := 0; i < len(read) && i < len(uvs); i++ {
				uvs[i] = mathutil.Vec2{read[i][0], 1 - read[i][1]}
			}
		}

		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, pos...)
		out.UVs = append(out.UVs, uvs...)
		for _, ix := range indices {
			out.Indices = append(out.Indices, base+ix)
		}
		if out.BaseColorURI == "" && prim.Material != nil {
			out.BaseColorURI = g.baseColorURI(*prim.Material)
		}
	}
	return nil
}

func (g *gltfFile) baseColorURI(matIdx int) string {
	if matIdx < 0 || matIdx >= len(g.doc.Materials) {
		return ""
	}
	pbr := g.doc.Materials[matIdx].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return ""
	}
	ti := pbr.BaseColorTexture.Index
	if ti < 0 || ti >= len(g.doc.Textures) {
		return ""
	}
	src := g.doc.Textures[ti].Source
	if src == nil || *src < 0 || *src >= len(g.doc.Images) {
		return ""
	}
	return g.doc.Images[*src].URI
}

// buffer loads and caches one buffer's bytes.
func (g *gltfFile) buffer(i int) ([]byte, error) {
	if b, ok := g.bufs[i]; ok {
		return b, nil
	}
	if i < 0 || i >= len(g.doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", i)
	}
	uri := g.doc.Buffers[i].URI
	var (
		raw []byte
		err error
	)
	switch {
	case uri == "":
		return nil, fmt.Errorf("buffer %d has no uri (glb container?)", i)
	case strings.HasPrefix(uri, "data:"):
		raw, err = decodeDataURI(uri)
	default:
		raw, err = os.ReadFile(filepath.Join(g.baseDir, uri))
	}
	if err != nil {
		return nil, fmt.Errorf("buffer %d: %w", i, err)
	}
	g.bufs[i] = raw
	return raw, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	const marker = ";base64,"
	i := strings.Index(uri, marker)
	if i < 0 {
		return nil, fmt.Errorf("data uri is not base64")
	}
	return base64.StdEncoding.DecodeString(uri[i+len(marker):])
}

// accessorData bounds-checks one accessor and returns its first element's
// byte slice plus the stride to step between elements.
func (g *gltfFile) accessorData(idx int) (gltfAccessor, []byte, int, error) {
	if idx < 0 || idx >= len(g.doc.Accessors) {
		return gltfAccessor{}, nil, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := g.doc.Accessors[idx]
	if acc.BufferView == nil {
		return acc, nil, 0, fmt.Errorf("accessor %d has no buffer view", idx)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(g.doc.BufferViews) {
		return acc, nil, 0, fmt.Errorf("accessor %d: buffer view %d out of range", idx, *acc.BufferView)
	}
	bv := g.doc.BufferViews[*acc.BufferView]
	buf, err := g.buffer(bv.Buffer)
	if err != nil {
		return acc, nil, 0, err
	}
	elem := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elem == 0 {
		return acc, nil, 0, fmt.Errorf("accessor %d: unsupported type %s/%d", idx, acc.Type, acc.ComponentType)
	}
	stride := bv.ByteStride
	if stride == 0 {
		stride = elem
	}
	if acc.Count <= 0 {
		return acc, nil, 0, fmt.Errorf("accessor %d: bad count %d", idx, acc.Count)
	}
	start := bv.ByteOffset + acc.ByteOffset
	need := start + (acc.Count-1)*stride + elem
	if start < 0 || need > len(buf) {
		return acc, nil, 0, fmt.Errorf("accessor %d: needs %d bytes, buffer has %d", idx, need, len(buf))
	}
	return acc, buf[start:], stride, nil
}

func (g *gltfFile) readVec2(idx int) ([]mathutil.Vec2, error) {
	acc, data, stride, err := g.accessorData(idx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != componentFloat32 || acc.Type != "VEC2" {
		return nil, fmt.Errorf("accessor %d: want float32 VEC2, got %s/%d", idx, acc.Type, acc.ComponentType)
	}
	out := make([]mathutil.Vec2, acc.Count)
	for i := range out {
		o := i * stride
		out[i][0] = math.Float32frombits(binary.LittleEndian.Uint32(data[o:]))
		out[i][1] = math.Float32frombits(binary.LittleEndian.Uint32(data[o+4:]))
	}
	return out, nil
}

func (g *gltfFile) readVec3(idx int) ([][3]float32, error) {
	acc, data, stride, err := g.accessorData(idx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != componentFloat32 || acc.Type != "VEC3" {
		return nil, fmt.Errorf("accessor %d: want float32 VEC3, got %s/%d", idx, acc.Type, acc.ComponentType)
	}
	out := make([][3]float32, acc.Count)
	for i := range out {
		o := i * stride
		out[i][0] = math.Float32frombits(binary.LittleEndian.Uint32(data[o:]))
		out[i][1] = math.Float32frombits(binary.LittleEndian.Uint32(data[o+4:]))
		out[i][2] = math.Float32frombits(binary.LittleEndian.Uint32(data[o+8:]))
	}
	return out, nil
}

func (g *gltfFile) readIndices(idx int) ([]uint32, error) {
	acc, data, stride, err := g.accessorData(idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("accessor %d: want SCALAR indices, got %s", idx, acc.Type)
	}
	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case componentUint8:
		for i := range out {
			out[i] = uint32(data[i*stride])
		}
	case componentUint16:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*stride:]))
		}
	case componentUint32:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*stride:])
		}
	default:
		return nil, fmt.Errorf("accessor %d: unsupported index component %d", idx, acc.ComponentType)
	}
	return out, nil
}

func componentSize(ct int) int {
	switch ct {
	case componentInt8, componentUint8:
		return 1
	case componentInt16, componentUint16:
		return 2
	case componentUint32, componentFloat32:
		return 4
	}
	return 0
}

func componentCount(t string) int {
	switch t {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4":
		return 4
	}
	return 0
}
