package tess

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func triangleArea(points []mgl32.Vec2, idx []uint32) float32 {
	var sum float32
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := points[idx[i]], points[idx[i+1]], points[idx[i+2]]
		sum += cross(a, b, c)
	}
	return sum
}

func TestTriangulate(t *testing.T) {
	square := []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	clockwise := []mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	// L shape: concave at (1,1).
	lShape := []mgl32.Vec2{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}

	tests := []struct {
		name      string
		points    []mgl32.Vec2
		triangles int
	}{
		{"triangle", []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}, 1},
		{"square", square, 2},
		{"clockwise square", clockwise, 2},
		{"concave L", lShape, 4},
		{"too few points", []mgl32.Vec2{{0, 0}, {1, 1}}, 0},
		{"collinear", []mgl32.Vec2{{0, 0}, {1, 0}, {2, 0}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Triangulate(tt.points)
			if got := len(idx) / 3; got != tt.triangles {
				t.Fatalf("got %d triangles, want %d", got, tt.triangles)
			}
			if tt.triangles == 0 {
				return
			}
			area := SignedArea(tt.points)
			if area < 0 {
				area = -area
			}
			if got := triangleArea(tt.points, idx); got != area {
				t.Errorf("triangles cover area %v, polygon has %v", got, area)
			}
			for i := 0; i < len(idx); i += 3 {
				if cross(tt.points[idx[i]], tt.points[idx[i+1]], tt.points[idx[i+2]]) <= 0 {
					t.Errorf("triangle %d is not counter-clockwise", i/3)
				}
			}
		})
	}
}

func TestTriangulatorReuse(t *testing.T) {
	var tr Triangulator
	first := tr.Triangulate([]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	second := tr.Triangulate([]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}})
	if len(first) != 6 || len(second) != 3 {
		t.Errorf("lengths = %d, %d", len(first), len(second))
	}
}

func TestFan(t *testing.T) {
	if got := Fan(2); got != nil {
		t.Errorf("Fan(2) = %v", got)
	}
	want := []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}
	got := Fan(5)
	if len(got) != len(want) {
		t.Fatalf("Fan(5) = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Fan(5) = %v, want %v", got, want)
		}
	}
}
