package light

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/internal/tess"
)

// Vertex colors carry the falloff coordinate: opaque white on the lit body,
// transparent black on the outer edge of the falloff band.
var (
	bodyColor    = mgl32.Vec4{1, 1, 1, 1}
	falloffColor = mgl32.Vec4{0, 0, 0, 0}
)

func buildMesh(l *Light) *gpucore.Mesh {
	var m *gpucore.Mesh
	switch l.typ {
	case TypeParametric:
		m = parametricMesh(l.radius, l.sides, l.angle, l.falloffDistance)
	case TypeFreeform:
		m = freeformMesh(l.shapePath, l.falloffDistance)
	case TypeSprite:
		m = spriteMesh(l.spriteSize, l.spritePivot)
	case TypePoint:
		m = quadMesh(mgl32.Vec2{-l.outerRadius, -l.outerRadius}, mgl32.Vec2{l.outerRadius, l.outerRadius})
	default:
		return nil
	}
	if m == nil {
		return nil
	}
	m.Name = l.typ.String() + "Light"
	m.RecalculateBounds()
	return m
}

func computeBounds(l *Light) gpucore.Sphere {
	if l.typ == TypeGlobal {
		return gpucore.Sphere{Center: l.position, Radius: math32.MaxFloat32}
	}
	m := l.Mesh()
	if m == nil || len(m.Vertices) == 0 {
		return gpucore.Sphere{Center: l.position}
	}
	center := mgl32.TransformCoordinate(m.Bounds.Center(), l.Transform())
	return gpucore.Sphere{Center: center, Radius: m.Bounds.Extents().Len()}
}

// parametricMesh builds a regular polygon fanned around its center with an
// optional falloff ring outside it.
func parametricMesh(radius float32, sides int, angle, falloff float32) *gpucore.Mesh {
	if radius <= 0 || sides < 3 {
		return nil
	}
	ring := falloff > 0
	n := sides
	m := &gpucore.Mesh{}
	m.Vertices = append(m.Vertices, mgl32.Vec3{})
	m.Colors = append(m.Colors, bodyColor)
	step := 2 * math32.Pi / float32(n)
	for i := 0; i < n; i++ {
		s, c := math32.Sincos(angle + step*float32(i))
		m.Vertices = append(m.Vertices, mgl32.Vec3{c * radius, s * radius, 0})
		m.Colors = append(m.Colors, bodyColor)
	}
	if ring {
		outer := radius + falloff
		for i := 0; i < n; i++ {
			s, c := math32.Sincos(angle + step*float32(i))
			m.Vertices = append(m.Vertices, mgl32.Vec3{c * outer, s * outer, 0})
			m.Colors = append(m.Colors, falloffColor)
		}
	}
	for i := 0; i < n; i++ {
		a := uint32(1 + i)
		b := uint32(1 + (i+1)%n)
		m.Indices = append(m.Indices, 0, a, b)
		if ring {
			oa, ob := a+uint32(n), b+uint32(n)
			m.Indices = append(m.Indices, a, oa, ob, a, ob, b)
		}
	}
	return m
}

// freeformMesh fills the outline and extrudes it outward along averaged
// vertex normals by falloff.
func freeformMesh(path []mgl32.Vec2, falloff float32) *gpucore.Mesh {
	if len(path) < 3 {
		return nil
	}
	pts := slices.Clone(path)
	if tess.SignedArea(pts) < 0 {
		slices.Reverse(pts)
	}
	fill := tess.Triangulate(pts)
	if len(fill) == 0 {
		return nil
	}
	n := len(pts)
	m := &gpucore.Mesh{Indices: fill}
	for _, p := range pts {
		m.Vertices = append(m.Vertices, p.Vec3(0))
		m.Colors = append(m.Colors, bodyColor)
	}
	if falloff <= 0 {
		return m
	}
	for i := range pts {
		prev, next := pts[(i+n-1)%n], pts[(i+1)%n]
		normal := edgeNormal(prev, pts[i]).Add(edgeNormal(pts[i], next))
		if normal.Len() > 0 {
			normal = normal.Normalize()
		}
		m.Vertices = append(m.Vertices, pts[i].Add(normal.Mul(falloff)).Vec3(0))
		m.Colors = append(m.Colors, falloffColor)
	}
	for i := 0; i < n; i++ {
		a, b := uint32(i), uint32((i+1)%n)
		oa, ob := a+uint32(n), b+uint32(n)
		m.Indices = append(m.Indices, a, oa, ob, a, ob, b)
	}
	return m
}

// edgeNormal returns the outward unit normal of edge a->b of a
// counter-clockwise polygon.
func edgeNormal(a, b mgl32.Vec2) mgl32.Vec2 {
	d := b.Sub(a)
	if d.Len() == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{d.Y(), -d.X()}.Normalize()
}

func spriteMesh(size, pivot mgl32.Vec2) *gpucore.Mesh {
	minP := mgl32.Vec2{-pivot.X() * size.X(), -pivot.Y() * size.Y()}
	return quadMesh(minP, minP.Add(size))
}

func quadMesh(lo, hi mgl32.Vec2) *gpucore.Mesh {
	if hi.X() <= lo.X() || hi.Y() <= lo.Y() {
		return nil
	}
	return &gpucore.Mesh{
		Vertices: []mgl32.Vec3{
			{lo.X(), lo.Y(), 0},
			{hi.X(), lo.Y(), 0},
			{hi.X(), hi.Y(), 0},
			{lo.X(), hi.Y(), 0},
		},
		Colors: []mgl32.Vec4{bodyColor, bodyColor, bodyColor, bodyColor},
		UVs:    []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices: []uint32{
			0, 1, 2,
			0, 2, 3,
		},
	}
}
