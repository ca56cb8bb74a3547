package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func unitQuad() ([]mgl32.Vec3, []uint32) {
	verts := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	// Two triangles sharing the 0-2 diagonal.
	return verts, []uint32{0, 1, 2, 0, 2, 3}
}

func TestExtrudeBoundaryQuad(t *testing.T) {
	verts, indices := unitQuad()
	m := ExtrudeBoundary(verts, indices)

	if got, want := m.VertexCount(), 4+8; got != want {
		t.Errorf("vertices = %d, want %d", got, want)
	}
	if got, want := m.TriangleCount(), 2+4; got != want {
		t.Errorf("triangles = %d, want %d", got, want)
	}
	if len(m.Tangents) != m.VertexCount() {
		t.Fatalf("tangents = %d, want one per vertex", len(m.Tangents))
	}
	for i := 0; i < 4; i++ {
		if m.Tangents[i] != (mgl32.Vec4{}) {
			t.Errorf("fill vertex %d has tangent %v", i, m.Tangents[i])
		}
	}
	for i := 4; i < m.VertexCount(); i++ {
		if m.Tangents[i].Vec2().Len() < 0.99 {
			t.Errorf("wall vertex %d has no extrusion normal: %v", i, m.Tangents[i])
		}
	}
}

func TestBoundaryEdgesSkipSharedDiagonal(t *testing.T) {
	_, indices := unitQuad()
	edges := BoundaryEdges(indices)
	if len(edges) != 4 {
		t.Fatalf("boundary edges = %v, want 4", edges)
	}
	for _, e := range edges {
		if (e[0] == 0 && e[1] == 2) || (e[0] == 2 && e[1] == 0) {
			t.Errorf("shared diagonal %v reported as boundary", e)
		}
	}
}

func TestExtrudeBoundaryOutwardNormals(t *testing.T) {
	verts, indices := unitQuad()
	m := ExtrudeBoundary(verts, indices)
	center := mgl32.Vec2{0.5, 0.5}
	for i := 4; i < m.VertexCount(); i += 2 {
		mid := m.Vertices[i].Add(m.Vertices[i+1]).Mul(0.5).Vec2()
		if m.Tangents[i].Vec2().Dot(mid.Sub(center)) <= 0 {
			t.Errorf("wall at %v has inward normal %v", mid, m.Tangents[i].Vec2())
		}
	}
}

func TestGenerateShadowMesh(t *testing.T) {
	tests := []struct {
		name      string
		shape     []mgl32.Vec2
		verts     int
		triangles int
	}{
		{"triangle", []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}, 3 + 6, 1 + 3},
		{"clockwise quad", []mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}}, 4 + 8, 2 + 4},
		{"concave L", []mgl32.Vec2{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}, 6 + 12, 4 + 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := GenerateShadowMesh(tt.shape)
			if m == nil {
				t.Fatal("GenerateShadowMesh() = nil")
			}
			if m.VertexCount() != tt.verts || m.TriangleCount() != tt.triangles {
				t.Errorf("got %d vertices, %d triangles; want %d, %d",
					m.VertexCount(), m.TriangleCount(), tt.verts, tt.triangles)
			}
		})
	}
	if m := GenerateShadowMesh([]mgl32.Vec2{{0, 0}, {1, 1}}); m != nil {
		t.Error("degenerate outline produced a mesh")
	}
}

func TestCasterMeshRegeneration(t *testing.T) {
	c := NewCaster([]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}})
	first := c.Mesh()
	c.SetPosition(mgl32.Vec3{3, 3, 0})
	if c.Mesh() != first || c.MeshBuilds() != 1 {
		t.Errorf("move rebuilt mesh, builds = %d", c.MeshBuilds())
	}
	c.SetShape([]mgl32.Vec2{{0, 0}, {2, 0}, {0, 2}})
	if c.Mesh() == first || c.MeshBuilds() != 2 {
		t.Errorf("SetShape did not rebuild, builds = %d", c.MeshBuilds())
	}
}
