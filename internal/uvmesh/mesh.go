// Package uvmesh loads triangle meshes for their UV layout. The editor only
// consumes the texture-space wireframe and the material's base color image;
// positions are carried through untransformed.
package uvmesh

import (
	"fmt"
	"path/filepath"
	"strings"

	"flowpaint/internal/mathutil"
)

// Mesh is a flattened, deduplicated triangle mesh. UVs run with v up, origin
// at the bottom-left, matching the canvas convention.
type Mesh struct {
	Positions [][3]float32
	UVs       []mathutil.Vec2
	Indices   []uint32

	// BaseColorURI names the material's base color image when the source
	// format records one, relative to the mesh file's directory. Empty when
	// absent.
	BaseColorURI string
}

// Edge is one undirected wireframe segment in UV space.
type Edge struct {
	A, B mathutil.Vec2
}

// Load reads a mesh, dispatching on the file extension (.obj or .gltf).
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("uvmesh: unsupported mesh format %q", ext)
	}
}

// TriangleCount returns the number of whole triangles in the index buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// UVEdges returns every triangle edge exactly once, keyed on the undirected
// vertex index pair, so seams shared by two triangles draw a single segment.
// Triangles with a repeated index are degenerate and contribute nothing.
func (m *Mesh) UVEdges() []Edge {
	type pair struct{ lo, hi uint32 }
	seen := make(map[pair]struct{}, len(m.Indices))
	edges := make([]Edge, 0, len(m.Indices))

	n := len(m.Indices) - len(m.Indices)%3
	for i := 0; i < n; i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a == b || b == c || c == a {
			continue
		}
		for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
			lo, hi := e[0], e[1]
			if lo > hi {
				lo, hi = hi, lo
			}
			if _, ok := seen[pair{lo, hi}]; ok {
				continue
			}
			seen[pair{lo, hi}] = struct{}{}
			if int(hi) >= len(m.UVs) {
				continue
			}
			edges = append(edges, Edge{A: m.UVs[e[0]], B: m.UVs[e[1]]})
		}
	}
	return edges
}
