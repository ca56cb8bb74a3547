package lighting

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/backend"
	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
	"github.com/gogpu/light2d/recording"
	"github.com/gogpu/light2d/rendergraph"
	"github.com/gogpu/light2d/shadow"
)

type frameFixture struct {
	registry *rendergraph.Registry
	pass     *Pass
	rec      *recording.Recorder
	camera   *gpucore.Camera
	groups   *shadow.GroupManager
}

func newFrameFixture(t *testing.T, compiler ShaderCompiler) *frameFixture {
	t.Helper()
	reg := rendergraph.NewRegistry(backend.NewSoftwareAllocator(), rendergraph.DefaultConfig())
	groups := shadow.NewGroupManager()
	return &frameFixture{
		registry: reg,
		pass:     NewPass(DefaultConfig(), reg, NewMaterialCache(compiler), shadow.NewRenderer(groups)),
		rec:      recording.NewRecorder(),
		camera:   &gpucore.Camera{Name: "main", Width: 64, Height: 32},
		groups:   groups,
	}
}

// render runs one frame in the order the renderer uses and checks that
// every transient resource was returned.
func (f *frameFixture) render(t *testing.T, layers []SortingLayer, lights ...*light.Light) []LayerBatch {
	t.Helper()
	if err := f.registry.BeginRender(1, 1); err != nil {
		t.Fatal(err)
	}
	cull := cullAll(lights...)
	if err := f.pass.BeginFrame(f.rec, f.camera, cull, layers); err != nil {
		t.Fatal(err)
	}
	batches := ComputeBatches(layers, cull)
	for i := range batches {
		b := &batches[i]
		if err := f.pass.CreateTargets(f.rec, b); err != nil {
			t.Fatal(err)
		}
		f.pass.SetKeywords(f.rec, b)
		normals, hasNormals, err := f.pass.RenderNormals(f.rec, b)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.pass.RenderLights(f.rec, b); err != nil {
			t.Fatal(err)
		}
		if err := f.pass.BindLightTextures(f.rec); err != nil {
			t.Fatal(err)
		}
		f.pass.DrawLayers(f.rec, b)
		if err := f.pass.RenderLightVolumes(f.rec, b); err != nil {
			t.Fatal(err)
		}
		if hasNormals {
			if err := f.pass.ReleaseNormals(f.rec, normals); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.pass.EndFrame(f.rec); err != nil {
		t.Fatal(err)
	}
	if err := f.registry.EndRender(false); err != nil {
		t.Fatalf("EndRender reported leaks: %v", err)
	}
	return batches
}

func TestVolumeDrawnOnceAtTopmostLayer(t *testing.T) {
	f := newFrameFixture(t, nil)
	vol := light.New(light.TypePoint, light.WithVolumeIntensity(0.5), light.WithTargetSortingLayers(2, 3, 5))
	flat := light.New(light.TypePoint, light.WithTargetSortingLayers(2, 3, 5))

	batches := f.render(t, linearLayers(6), vol, flat)
	if len(batches) != 4 {
		t.Fatalf("batches = %d, want 4", len(batches))
	}

	v := f.pass.Stats().Volumes
	if len(v) != 1 {
		t.Fatalf("volume draws = %d, want 1", len(v))
	}
	if v[0].Light != vol || v[0].Layer != 5 {
		t.Errorf("volume drawn for layer %d, want 5", v[0].Layer)
	}
}

func TestFallbackToBlackForUnwrittenTarget(t *testing.T) {
	tests := []struct {
		name      string
		compiler  ShaderCompiler
		fallbacks int
		drawn     int
	}{
		{"light drawn", nil, 3, 1},
		{"light skipped", &failingCompiler{}, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFrameFixture(t, tt.compiler)
			l := light.New(light.TypePoint, light.WithTargetSortingLayers(0))
			f.render(t, linearLayers(1), l)

			s := f.pass.Stats()
			if s.FallbackBinds != tt.fallbacks {
				t.Errorf("FallbackBinds = %d, want %d", s.FallbackBinds, tt.fallbacks)
			}
			if s.LightsDrawn != tt.drawn {
				t.Errorf("LightsDrawn = %d, want %d", s.LightsDrawn, tt.drawn)
			}
			if s.TargetsRealized != 1 {
				t.Errorf("TargetsRealized = %d, want 1", s.TargetsRealized)
			}
		})
	}
}

func TestDirtyTargetClearedBeforeReuse(t *testing.T) {
	f := newFrameFixture(t, nil)
	a := light.New(light.TypePoint, light.WithTargetSortingLayers(0))
	b := light.New(light.TypePoint, light.WithTargetSortingLayers(1))
	f.render(t, linearLayers(2), a, b)

	s := f.pass.Stats()
	if s.TargetsRealized != 1 {
		t.Errorf("TargetsRealized = %d, want one shared target", s.TargetsRealized)
	}
	if s.TargetClears != 1 {
		t.Errorf("TargetClears = %d, want 1 (second batch only)", s.TargetClears)
	}
	if s.LightsDrawn != 2 {
		t.Errorf("LightsDrawn = %d, want 2", s.LightsDrawn)
	}
}

func TestGlobalColorClearsTarget(t *testing.T) {
	f := newFrameFixture(t, nil)
	amber := gputypes.Color{R: 1, G: 0.75, B: 0.25, A: 1}
	g := light.New(light.TypeGlobal, light.WithColor(amber), light.WithTargetSortingLayers(0))
	f.render(t, linearLayers(1), g)

	var clears []recording.ClearRenderTargetCommand
	for _, c := range f.rec.FinishRecording().Filter(recording.CmdClearRenderTarget) {
		clears = append(clears, c.(recording.ClearRenderTargetCommand))
	}
	found := false
	for _, c := range clears {
		if c.Color == amber {
			found = true
		}
	}
	if !found {
		t.Errorf("no clear to the global light color among %d clears", len(clears))
	}
	if s := f.pass.Stats(); s.FallbackBinds != 3 {
		t.Errorf("FallbackBinds = %d, want 3", s.FallbackBinds)
	}
}

func TestSetKeywords(t *testing.T) {
	f := newFrameFixture(t, nil)
	f.render(t, linearLayers(1),
		light.New(light.TypePoint, light.WithBlendStyle(0), light.WithTargetSortingLayers(0)),
		light.New(light.TypePoint, light.WithBlendStyle(2), light.WithTargetSortingLayers(0)),
	)
	want := []bool{true, false, true, false}
	for i, on := range want {
		if got := f.rec.KeywordEnabled(gpucore.ShapeLightKeyword(i)); got != on {
			t.Errorf("keyword %d enabled = %v, want %v", i, got, on)
		}
	}
}

func TestNormalsPrepassAndShadows(t *testing.T) {
	f := newFrameFixture(t, nil)
	f.groups.Register(shadow.NewGroup(0, 0, shadow.NewCaster(
		[]mgl32.Vec2{{-0.25, -0.25}, {0.25, -0.25}, {0.25, 0.25}, {-0.25, 0.25}},
		shadow.WithSelfShadows(true),
	)))
	l := light.New(light.TypePoint,
		light.WithTargetSortingLayers(0),
		light.WithNormalMap(light.NormalMapAccurate, 1),
		light.WithShadowIntensity(1),
	)
	f.render(t, linearLayers(1), l)

	s := f.pass.Stats()
	if s.NormalsPasses != 1 {
		t.Errorf("NormalsPasses = %d, want 1", s.NormalsPasses)
	}
	if s.ShadowPasses != 1 {
		t.Errorf("ShadowPasses = %d, want 1", s.ShadowPasses)
	}

	passes := map[gpucore.ShaderPass]int{}
	for _, c := range f.rec.FinishRecording().Filter(recording.CmdDrawRenderers) {
		passes[c.(recording.DrawRenderersCommand).Settings.Pass]++
	}
	if passes[gpucore.PassNormalsRendering] != 1 || passes[gpucore.PassUniversal2D] != 1 {
		t.Errorf("DrawRenderers passes = %v", passes)
	}
}

func TestBeginFrameTwice(t *testing.T) {
	f := newFrameFixture(t, nil)
	if err := f.registry.BeginRender(1, 1); err != nil {
		t.Fatal(err)
	}
	cull := cullAll()
	if err := f.pass.BeginFrame(f.rec, f.camera, cull, nil); err != nil {
		t.Fatal(err)
	}
	if err := f.pass.BeginFrame(f.rec, f.camera, cull, nil); err == nil {
		t.Error("second BeginFrame succeeded")
	}
	f.pass.Abort()
	if err := f.registry.EndRender(true); err != nil {
		t.Errorf("EndRender(true) = %v", err)
	}
}

func TestUnusedDirtyTargetClearedBetweenBatches(t *testing.T) {
	f := newFrameFixture(t, nil)
	a := light.New(light.TypePoint, light.WithBlendStyle(0), light.WithTargetSortingLayers(0))
	b := light.New(light.TypePoint, light.WithBlendStyle(1), light.WithTargetSortingLayers(1))
	if batches := f.render(t, linearLayers(2), a, b); len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}

	var (
		bound    gpucore.Texture
		style0   gpucore.Texture
		geometry int
		cleared  bool
		checked  bool
	)
	for _, c := range f.rec.FinishRecording().Commands() {
		switch c := c.(type) {
		case recording.SetRenderTargetCommand:
			bound = c.Target.Color
		case recording.ClearRenderTargetCommand:
			if geometry == 1 && style0 != nil && bound == style0 && c.Color == gputypes.ColorBlack {
				cleared = true
			}
		case recording.SetGlobalTextureCommand:
			if c.Slot != gpucore.ShapeLightSlot(0) {
				continue
			}
			switch geometry {
			case 0:
				style0 = c.Texture
			case 1:
				checked = true
				if c.Texture == style0 && !cleared {
					t.Error("second batch samples style 0 light from the first batch")
				}
			}
		case recording.DrawRenderersCommand:
			if c.Settings.Pass == gpucore.PassUniversal2D {
				geometry++
			}
		}
	}
	if style0 == nil || !checked {
		t.Fatalf("style 0 bindings not recorded for both batches (first %v, second %v)", style0, checked)
	}
	if s := f.pass.Stats(); s.TargetClears != 1 {
		t.Errorf("TargetClears = %d, want 1", s.TargetClears)
	}
}

func pointLightGlobals(t *testing.T, l *light.Light) map[gpucore.Property]float32 {
	t.Helper()
	f := newFrameFixture(t, nil)
	f.render(t, linearLayers(1), l)
	got := map[gpucore.Property]float32{}
	for _, c := range f.rec.FinishRecording().Filter(recording.CmdSetGlobalFloat) {
		fc := c.(recording.SetGlobalFloatCommand)
		switch fc.Property {
		case gpucore.PropertyInnerRadiusMult, gpucore.PropertyInnerAngle, gpucore.PropertyOuterAngle:
			got[fc.Property] = fc.Value
		}
	}
	return got
}

func TestPointLightShapeGlobals(t *testing.T) {
	tests := []struct {
		name  string
		opts  []light.Option
		mult  float32
		inner float32
		outer float32
	}{
		{"full circle", []light.Option{light.WithPointRadius(0, 5), light.WithPointAngles(360, 360)}, 1, 1, 1},
		{"cone", []light.Option{light.WithPointRadius(3.5, 5), light.WithPointAngles(30, 45)}, 1 / 0.3, 30.0 / 360, 45.0 / 360},
		{"hard edge", []light.Option{light.WithPointRadius(5, 5)}, 1 / minFalloffSpan, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]light.Option{light.WithTargetSortingLayers(0)}, tt.opts...)
			got := pointLightGlobals(t, light.New(light.TypePoint, opts...))
			want := map[gpucore.Property]float32{
				gpucore.PropertyInnerRadiusMult: tt.mult,
				gpucore.PropertyInnerAngle:      tt.inner,
				gpucore.PropertyOuterAngle:      tt.outer,
			}
			for p, w := range want {
				v, ok := got[p]
				if !ok {
					t.Errorf("%v not set", p)
					continue
				}
				if math32.Abs(v-w) > 1e-3*max(1, w) {
					t.Errorf("%v = %v, want %v", p, v, w)
				}
			}
		})
	}

	if got := pointLightGlobals(t, light.New(light.TypeParametric, light.WithTargetSortingLayers(0))); len(got) != 0 {
		t.Errorf("parametric light set point globals: %v", got)
	}
}

func TestVolumeShadowsWithoutLightShadows(t *testing.T) {
	tests := []struct {
		name    string
		light   float32
		volume  float32
		passes  int
		volumes int
	}{
		{"volume only", 0, 0.8, 1, 1},
		{"light and volume", 0.5, 0.8, 2, 1},
		{"neither", 0, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFrameFixture(t, nil)
			f.groups.Register(shadow.NewGroup(0, 0, shadow.NewCaster(
				[]mgl32.Vec2{{-0.25, -0.25}, {0.25, -0.25}, {0.25, 0.25}, {-0.25, 0.25}},
			)))
			l := light.New(light.TypePoint,
				light.WithTargetSortingLayers(0),
				light.WithVolumeIntensity(0.5),
				light.WithShadowIntensity(tt.light),
				light.WithShadowVolumeIntensity(tt.volume),
			)
			f.render(t, linearLayers(1), l)

			s := f.pass.Stats()
			if s.ShadowPasses != tt.passes {
				t.Errorf("ShadowPasses = %d, want %d", s.ShadowPasses, tt.passes)
			}
			if len(s.Volumes) != tt.volumes {
				t.Errorf("volume draws = %d, want %d", len(s.Volumes), tt.volumes)
			}
		})
	}
}

func TestSkippedLightLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { SetLogger(nil) })

	f := newFrameFixture(t, nil)
	degenerate := light.New(light.TypeFreeform, light.WithTargetSortingLayers(0))
	f.render(t, linearLayers(1), degenerate)

	if s := f.pass.Stats(); s.LightsSkipped != 1 {
		t.Errorf("LightsSkipped = %d, want 1", s.LightsSkipped)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "skipping light without mesh") {
		t.Errorf("log output = %q, want a warning for the skipped light", out)
	}
}
