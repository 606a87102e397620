package uvmesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"flowpaint/internal/mathutil"
)

// objRef is one face corner as raw OBJ indices, already 0-based. -1 marks an
// absent component; normals are parsed and discarded.
type objRef struct {
	p, t int
}

// LoadOBJ reads a Wavefront OBJ. Faces are fan-triangulated, and corners are
// deduplicated on their (position, texcoord) index pair. Corners without a
// texcoord, or with one out of range, get UV (0,0).
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("uvmesh: open %s: %w", path, err)
	}
	defer f.Close()

	var (
		positions [][3]float32
		texcoords []mathutil.Vec2
		faces     [][]objRef
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("uvmesh: %s:%d: short vertex line", path, lineNo)
			}
			var p [3]float32
			for i := 0; i < 3; i++ {
				v, err := parseF32(fields[1+i])
				if err != nil {
					return nil, fmt.Errorf("uvmesh: %s:%d: vertex: %w", path, lineNo, err)
				}
				p[i] = v
			}
			positions = append(positions, p)
		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, err := parseF32(fields[1])
			if err != nil {
				return nil, fmt.Errorf("uvmesh: %s:%d: texcoord: %w", path, lineNo, err)
			}
			v, err := parseF32(fields[2])
			if err != nil {
				return nil, fmt.Errorf("uvmesh: %s:%d: texcoord: %w", path, lineNo, err)
			}
			texcoords = append(texcoords, mathutil.Vec2{u, v})
		case "f":
			refs := make([]objRef, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				r, err := parseFaceRef(tok)
				if err != nil {
					return nil, fmt.Errorf("uvmesh: %s:%d: %w", path, lineNo, err)
				}
				refs = append(refs, r)
			}
			if len(refs) >= 3 {
				faces = append(faces, refs)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("uvmesh: read %s: %w", path, err)
	}

	mesh := &Mesh{}
	index := make(map[objRef]uint32)
	resolve := func(r objRef) uint32 {
		if vi, ok := index[r]; ok {
			return vi
		}
		vi := uint32(len(mesh.Positions))
		var p [3]float32
		if r.p >= 0 && r.p < len(positions) {
			p = positions[r.p]
		}
		var uv mathutil.Vec2
		if r.t >= 0 && r.t < len(texcoords) {
			uv = texcoords[r.t]
		}
		mesh.Positions = append(mesh.Positions, p)
		mesh.UVs = append(mesh.UVs, uv)
		index[r] = vi
		return vi
	}
	for _, face := range faces {
		for i := 1; i < len(face)-1; i++ {
			mesh.Indices = append(mesh.Indices,
				resolve(face[0]), resolve(face[i]), resolve(face[i+1]))
		}
	}
	return mesh, nil
}

func parseF32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return float32(v), nil
}

// parseFaceRef accepts the v, v/vt, v/vt/vn, and v//vn corner forms.
func parseFaceRef(tok string) (objRef, error) {
	comps := strings.Split(tok, "/")
	r := objRef{p: -1, t: -1}
	if comps[0] != "" {
		n, err := strconv.Atoi(comps[0])
		if err != nil {
			return r, fmt.Errorf("bad face corner %q", tok)
		}
		r.p = n - 1
	}
	if len(comps) > 1 && comps[1] != "" {
		n, err := strconv.Atoi(comps[1])
		if err != nil {
			return r, fmt.Errorf("bad face corner %q", tok)
		}
		r.t = n - 1
	}
	return r, nil
}
