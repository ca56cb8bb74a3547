package gpucore

import "github.com/go-gl/mathgl/mgl32"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns half the size of the box.
func (b Bounds) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Encapsulate grows the box to contain p.
func (b Bounds) Encapsulate(p mgl32.Vec3) Bounds {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Mesh is an indexed triangle list.
//
// Tangents carry per-vertex extrusion data for shadow meshes; Colors and UVs
// carry falloff and lookup coordinates for light meshes. Unused streams are
// left nil.
type Mesh struct {
	Name     string
	Vertices []mgl32.Vec3
	Colors   []mgl32.Vec4
	UVs      []mgl32.Vec2
	Tangents []mgl32.Vec4
	Indices  []uint32
	Bounds   Bounds
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// RecalculateBounds recomputes Bounds from Vertices.
func (m *Mesh) RecalculateBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b = b.Encapsulate(v)
	}
	m.Bounds = b
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Plane is the set of points p with Normal·p + Distance == 0. The normal
// points toward the inside of a culling volume.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the distance from p to the plane, positive on the
// side the normal points to.
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Excludes reports whether the sphere lies entirely behind the plane.
// The test is conservative: spheres straddling the plane are kept.
func (p Plane) Excludes(s Sphere) bool {
	return p.SignedDistance(s.Center) < -s.Radius
}

// CullingParameters is the read-only culling input a host provides for a
// camera.
type CullingParameters struct {
	Planes []Plane

	// CullingMask has bit n set when object layer n is visible.
	CullingMask uint32
}

// LayerVisible reports whether objects on the given object layer pass the
// culling mask.
func (c CullingParameters) LayerVisible(layer int) bool {
	if layer < 0 || layer > 31 {
		return false
	}
	return c.CullingMask&(1<<uint(layer)) != 0
}

// CameraID identifies a host camera across frames.
type CameraID uint64

// Camera is the host's per-frame view of a camera.
type Camera struct {
	ID       CameraID
	Name     string
	Width    int
	Height   int
	Position mgl32.Vec3
	Culling  CullingParameters

	// Target is where lit geometry and light volumes are drawn.
	Target RenderTarget
}
