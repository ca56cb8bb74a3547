package shadow

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/internal/tess"
)

// edge is a directed triangle edge. key is the undirected (min, max) pair
// packed into one integer so interior edges collide.
type edge struct {
	from, to uint32
	key      uint64
}

func newEdge(from, to uint32) edge {
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	return edge{from: from, to: to, key: uint64(lo)<<32 | uint64(hi)}
}

// BoundaryEdges returns the directed edges of the triangle list that belong
// to exactly one triangle, ordered by their undirected key.
func BoundaryEdges(indices []uint32) [][2]uint32 {
	edges := collectEdges(indices)
	var out [][2]uint32
	for i, e := range edges {
		if isBoundary(edges, i) {
			out = append(out, [2]uint32{e.from, e.to})
		}
	}
	return out
}

func collectEdges(indices []uint32) []edge {
	edges := make([]edge, 0, len(indices))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		edges = append(edges, newEdge(a, b), newEdge(b, c), newEdge(c, a))
	}
	slices.SortFunc(edges, func(x, y edge) int { return cmp.Compare(x.key, y.key) })
	return edges
}

func isBoundary(sorted []edge, i int) bool {
	if i > 0 && sorted[i-1].key == sorted[i].key {
		return false
	}
	if i+1 < len(sorted) && sorted[i+1].key == sorted[i].key {
		return false
	}
	return true
}

// ExtrudeBoundary builds a shadow mesh from a filled, counter-clockwise
// triangle list. The fill is kept as is with zero tangents. For every
// boundary edge (v0, v1) two vertices are appended at the edge's endpoints,
// each tagged with the edge's outward normal in xy and the opposite
// endpoint in zw, and one wall triangle (v0, A, B) joins them to the fill.
func ExtrudeBoundary(vertices []mgl32.Vec3, indices []uint32) *gpucore.Mesh {
	edges := collectEdges(indices)

	m := &gpucore.Mesh{
		Vertices: slices.Clone(vertices),
		Tangents: make([]mgl32.Vec4, len(vertices)),
		Indices:  slices.Clone(indices),
	}
	for i, e := range edges {
		if !isBoundary(edges, i) {
			continue
		}
		p0, p1 := vertices[e.from], vertices[e.to]
		d := p1.Sub(p0)
		normal := mgl32.Vec2{d.Y(), -d.X()}
		if normal.Len() > 0 {
			normal = normal.Normalize()
		}

		a := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, p0, p1)
		m.Tangents = append(m.Tangents,
			mgl32.Vec4{normal.X(), normal.Y(), p1.X(), p1.Y()},
			mgl32.Vec4{normal.X(), normal.Y(), p0.X(), p0.Y()},
		)
		m.Indices = append(m.Indices, e.from, a, a+1)
	}
	m.RecalculateBounds()
	return m
}

// GenerateShadowMesh triangulates a closed outline and extrudes its
// boundary. It returns nil for degenerate outlines.
func GenerateShadowMesh(shape []mgl32.Vec2) *gpucore.Mesh {
	if len(shape) < 3 {
		return nil
	}
	fill := tess.Triangulate(shape)
	if len(fill) == 0 {
		return nil
	}
	verts := make([]mgl32.Vec3, len(shape))
	for i, p := range shape {
		verts[i] = p.Vec3(0)
	}
	m := ExtrudeBoundary(verts, fill)
	m.Name = "ShadowMesh"
	return m
}
