// Package tess triangulates simple polygons for light and shadow meshes.
package tess

import "github.com/go-gl/mathgl/mgl32"

// SignedArea returns twice the signed area of the polygon. It is positive
// for counter-clockwise winding.
func SignedArea(points []mgl32.Vec2) float32 {
	var a float32
	for i := range points {
		p, q := points[i], points[(i+1)%len(points)]
		a += p.X()*q.Y() - q.X()*p.Y()
	}
	return a
}

// Fan triangulates a convex polygon of n vertices around vertex 0.
func Fan(n int) []uint32 {
	if n < 3 {
		return nil
	}
	indices := make([]uint32, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		indices = append(indices, 0, uint32(i), uint32(i+1))
	}
	return indices
}

// Triangulator triangulates simple (non self-intersecting) polygons by ear
// clipping. It keeps its scratch buffers between calls, so one Triangulator
// can be reused for every light and caster in a frame.
type Triangulator struct {
	remaining []int
	indices   []uint32
}

// Triangulate returns counter-clockwise triangles covering the polygon.
// Either winding is accepted. Degenerate input (fewer than three points or
// zero area) yields no triangles. The returned slice is owned by the caller.
func (t *Triangulator) Triangulate(points []mgl32.Vec2) []uint32 {
	n := len(points)
	if n < 3 {
		return nil
	}
	area := SignedArea(points)
	if area == 0 {
		return nil
	}

	t.remaining = t.remaining[:0]
	if area > 0 {
		for i := 0; i < n; i++ {
			t.remaining = append(t.remaining, i)
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			t.remaining = append(t.remaining, i)
		}
	}
	t.indices = t.indices[:0]

	// Each pass over the ring clips at least one ear for a simple polygon.
	// The guard stops on self-intersecting input instead of looping forever.
	for guard := 0; len(t.remaining) > 3 && guard < 2*n*n; guard++ {
		clipped := false
		for i := range t.remaining {
			if t.isEar(points, i) {
				t.emit(i)
				t.remaining = append(t.remaining[:i], t.remaining[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			break
		}
	}
	if len(t.remaining) == 3 {
		t.emit(1)
	}

	out := make([]uint32, len(t.indices))
	copy(out, t.indices)
	return out
}

func (t *Triangulator) neighbours(i int) (prev, cur, next int) {
	m := len(t.remaining)
	return t.remaining[(i+m-1)%m], t.remaining[i], t.remaining[(i+1)%m]
}

func (t *Triangulator) emit(i int) {
	a, b, c := t.neighbours(i)
	t.indices = append(t.indices, uint32(a), uint32(b), uint32(c))
}

func (t *Triangulator) isEar(points []mgl32.Vec2, i int) bool {
	a, b, c := t.neighbours(i)
	pa, pb, pc := points[a], points[b], points[c]
	if cross(pa, pb, pc) <= 0 {
		return false // reflex or collinear
	}
	for _, j := range t.remaining {
		if j == a || j == b || j == c {
			continue
		}
		if inTriangle(points[j], pa, pb, pc) {
			return false
		}
	}
	return true
}

// Triangulate is a convenience wrapper around a fresh Triangulator.
func Triangulate(points []mgl32.Vec2) []uint32 {
	var t Triangulator
	return t.Triangulate(points)
}

func cross(a, b, c mgl32.Vec2) float32 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}

func inTriangle(p, a, b, c mgl32.Vec2) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}
