package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// rightOfOrigin keeps everything with x >= 0.
var rightOfOrigin = gpucore.CullingParameters{
	Planes:      []gpucore.Plane{{Normal: mgl32.Vec3{1, 0, 0}}},
	CullingMask: 1,
}

func TestSetupCulling(t *testing.T) {
	m := NewManager()
	inside := New(TypePoint, WithPosition(mgl32.Vec3{5, 0, 0}))
	straddling := New(TypePoint, WithPosition(mgl32.Vec3{-0.5, 0, 0}), WithPointRadius(0, 1))
	outside := New(TypePoint, WithPosition(mgl32.Vec3{-5, 0, 0}))
	wrongLayer := New(TypePoint, WithPosition(mgl32.Vec3{5, 0, 0}), WithObjectLayer(3))
	global := New(TypeGlobal, WithPosition(mgl32.Vec3{-100, 0, 0}), WithObjectLayer(7))
	m.Register(inside, straddling, outside, wrongLayer, global)

	c := NewCullResult(m)
	cam := &gpucore.Camera{Name: "main"}
	c.SetupCulling(rightOfOrigin, cam)

	got := c.VisibleLights()
	want := []*Light{inside, straddling, global}
	if len(got) != len(want) {
		t.Fatalf("visible = %d lights, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visible[%d] = %v, want %v", i, got[i].Type(), want[i].Type())
		}
	}
	if c.Camera() != cam {
		t.Error("Camera() not recorded")
	}
}

func TestSetupCullingStableOrder(t *testing.T) {
	m := NewManager()
	a := New(TypePoint, WithOrder(2))
	b := New(TypePoint, WithOrder(1))
	c := New(TypePoint, WithOrder(2))
	d := New(TypePoint, WithOrder(1))
	m.Register(a, b, c, d)

	cr := NewCullResult(m)
	cr.SetupCulling(gpucore.CullingParameters{CullingMask: ^uint32(0)}, nil)

	want := []*Light{b, d, a, c}
	for i, l := range cr.VisibleLights() {
		if l != want[i] {
			t.Fatalf("order broken at %d", i)
		}
	}
}

func TestLightStatsByLayer(t *testing.T) {
	m := NewManager()
	m.Register(
		New(TypePoint, WithBlendStyle(0), WithTargetSortingLayers(1, 2)),
		New(TypePoint, WithBlendStyle(2), WithTargetSortingLayers(2), WithNormalMap(NormalMapAccurate, 1)),
		New(TypeParametric, WithBlendStyle(1), WithTargetSortingLayers(2), WithVolumeIntensity(0.5)),
		New(TypeGlobal, WithBlendStyle(3), WithTargetSortingLayers(1)),
	)
	c := NewCullResult(m)
	c.SetupCulling(gpucore.CullingParameters{CullingMask: 1}, nil)

	tests := []struct {
		layer int32
		want  LayerStats
	}{
		{1, LayerStats{TotalLights: 1, BlendStylesUsed: 0b0001, GlobalBlendStyles: 0b1000}},
		{2, LayerStats{TotalLights: 3, TotalNormalMapUsage: 1, TotalVolumetricUsage: 1, BlendStylesUsed: 0b0111}},
		{9, LayerStats{}},
	}
	for _, tt := range tests {
		// Repeated calls must not accumulate.
		for range 2 {
			if got := c.LightStatsByLayer(tt.layer); got != tt.want {
				t.Errorf("LightStatsByLayer(%d) = %+v, want %+v", tt.layer, got, tt.want)
			}
		}
	}
	if s := c.LightStatsByLayer(1); !s.UsesBlendStyle(3) || s.UsesBlendStyle(2) {
		t.Errorf("UsesBlendStyle mismatch for %+v", s)
	}
}

func TestGlobalLightAlwaysLit(t *testing.T) {
	m := NewManager()
	c := NewCullResult(m)
	c.SetupCulling(gpucore.CullingParameters{}, nil)
	if c.IsSceneLit() {
		t.Error("empty scene reported lit")
	}

	m.Register(New(TypeGlobal, WithObjectLayer(31)))
	nothingPasses := gpucore.CullingParameters{
		Planes:      []gpucore.Plane{{Normal: mgl32.Vec3{1, 0, 0}, Distance: -1e30}},
		CullingMask: 0,
	}
	c.SetupCulling(nothingPasses, nil)
	if !c.IsSceneLit() {
		t.Error("IsSceneLit() = false with only a global light")
	}

	// Even with an empty visible list the registry decides.
	c.visible = c.visible[:0]
	if !c.IsSceneLit() {
		t.Error("IsSceneLit() ignores registered global light")
	}
}

func TestGlobalColor(t *testing.T) {
	m := NewManager()
	red := gputypes.Color{R: 1, A: 1}
	m.Register(
		New(TypeGlobal, WithColor(gputypes.ColorBlue), WithTargetSortingLayers(0)),
		New(TypeGlobal, WithColor(red), WithIntensity(0.5), WithTargetSortingLayers(0), WithOrder(1)),
		New(TypeGlobal, WithColor(gputypes.ColorWhite), WithBlendStyle(1), WithTargetSortingLayers(0)),
	)
	c := NewCullResult(m)
	c.SetupCulling(gpucore.CullingParameters{}, nil)

	got, ok := c.GlobalColor(0, 0)
	if !ok || got != (gputypes.Color{R: 0.5, A: 1}) {
		t.Errorf("GlobalColor(0, 0) = %v, %v", got, ok)
	}
	got, ok = c.GlobalColor(0, 2)
	if ok || got != gputypes.ColorBlack {
		t.Errorf("GlobalColor(0, 2) = %v, %v, want black", got, ok)
	}
}
