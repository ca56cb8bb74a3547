package light2d

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/backend"
	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
	"github.com/gogpu/light2d/lighting"
	"github.com/gogpu/light2d/recording"
)

func newRecorder() *recording.Recorder { return recording.NewRecorder() }

func testCamera(id gpucore.CameraID) *gpucore.Camera {
	return &gpucore.Camera{
		ID:      id,
		Name:    "camera",
		Width:   64,
		Height:  48,
		Culling: gpucore.CullingParameters{CullingMask: ^uint32(0)},
	}
}

var testLayers = []lighting.SortingLayer{
	{ID: 10, Name: "Background", Value: -1},
	{ID: 0, Name: "Default", Value: 0},
	{ID: 20, Name: "Foreground", Value: 3},
}

// limitedAllocator fails texture creation once its quota is spent.
type limitedAllocator struct {
	*backend.SoftwareAllocator
	quota int
}

var errQuota = errors.New("texture quota exhausted")

func (a *limitedAllocator) CreateTexture(desc *gputypes.TextureDescriptor) (gpucore.Texture, error) {
	if a.quota <= 0 {
		return nil, errQuota
	}
	a.quota--
	return a.SoftwareAllocator.CreateTexture(desc)
}

func newTestRenderer(t *testing.T, lights *light.Manager, opts ...RendererOption) (*Renderer, *backend.SoftwareAllocator) {
	t.Helper()
	alloc := backend.NewSoftwareAllocator()
	opts = append([]RendererOption{WithAllocator(alloc), WithSortingLayers(testLayers...)}, opts...)
	r, err := NewRenderer(lights, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Close)
	return r, alloc
}

func litScene() *light.Manager {
	m := light.NewManager()
	m.Register(
		light.New(light.TypeGlobal,
			light.WithColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.2, A: 1}),
			light.WithTargetSortingLayers(10, 0, 20)),
		light.New(light.TypePoint,
			light.WithPointRadius(0, 2),
			light.WithTargetSortingLayers(0, 20)),
	)
	return m
}

func TestRenderLitFrame(t *testing.T) {
	r, _ := newTestRenderer(t, litScene())
	rec := newRecorder()
	if err := r.Render(rec, Frame{Camera: testCamera(1), Index: 1}); err != nil {
		t.Fatal(err)
	}

	s := r.Stats()
	if s.Frames != 1 || s.UnlitFrames != 0 {
		t.Errorf("Frames = %d, UnlitFrames = %d", s.Frames, s.UnlitFrames)
	}
	// Background differs from the two layers the point light shares.
	if s.Batches != 2 {
		t.Errorf("Batches = %d, want 2", s.Batches)
	}
	if s.Lighting.LightsDrawn != 1 {
		t.Errorf("LightsDrawn = %d, want 1", s.Lighting.LightsDrawn)
	}

	draws := rec.FinishRecording().Filter(recording.CmdDrawRenderers)
	var universal int
	for _, c := range draws {
		if c.(recording.DrawRenderersCommand).Settings.Pass == gpucore.PassUniversal2D {
			universal++
		}
	}
	if universal != 2 {
		t.Errorf("Universal2D draws = %d, want one per batch", universal)
	}
}

func TestRenderUnlitScene(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	rec := newRecorder()
	if err := r.Render(rec, Frame{Camera: testCamera(1), Index: 1}); err != nil {
		t.Fatal(err)
	}
	if s := r.Stats(); s.UnlitFrames != 1 {
		t.Errorf("UnlitFrames = %d, want 1", s.UnlitFrames)
	}

	rc := rec.FinishRecording()
	draws := rc.Filter(recording.CmdDrawRenderers)
	if len(draws) != 1 {
		t.Fatalf("DrawRenderers = %d, want 1", len(draws))
	}
	want := gpucore.LayerRange{Lower: -1, Upper: 3}
	if got := draws[0].(recording.DrawRenderersCommand).Settings.Layers; got != want {
		t.Errorf("layer range = %+v, want %+v", got, want)
	}

	lit := true
	for _, c := range rc.Filter(recording.CmdSetGlobalFloat) {
		if f := c.(recording.SetGlobalFloatCommand); f.Property == gpucore.PropertyUseSceneLighting {
			lit = f.Value != 0
		}
	}
	if lit {
		t.Error("_UseSceneLighting not cleared for an unlit scene")
	}
	if rc.Count(recording.CmdDrawMesh) != 0 {
		t.Error("unlit scene drew light meshes")
	}
}

func TestRenderInvalidCamera(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	tests := []struct {
		name   string
		camera *gpucore.Camera
	}{
		{"nil", nil},
		{"empty viewport", &gpucore.Camera{Name: "empty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Render(newRecorder(), Frame{Camera: tt.camera})
			if !errors.Is(err, ErrInvalidCamera) {
				t.Errorf("Render() = %v, want ErrInvalidCamera", err)
			}
		})
	}
	if r.Registry().Rendering() {
		t.Error("registry left rendering after a rejected frame")
	}
}

func TestRenderReusesPooledTargets(t *testing.T) {
	r, alloc := newTestRenderer(t, litScene())
	cam := testCamera(1)
	var allocated, live int
	for frame := 1; frame <= 4; frame++ {
		if err := r.Render(newRecorder(), Frame{Camera: cam, Index: frame}); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		s := r.Stats().Registry
		if frame == 1 {
			allocated, live = s.TexturesAllocated, alloc.LiveTextures()
			continue
		}
		if s.TexturesAllocated != allocated || alloc.LiveTextures() != live {
			t.Errorf("frame %d: allocated %d live %d, want %d and %d",
				frame, s.TexturesAllocated, alloc.LiveTextures(), allocated, live)
		}
	}
	if s := r.Stats().Registry; s.PoolHits < 3 {
		t.Errorf("PoolHits = %d, want a hit on every frame after the first", s.PoolHits)
	}
}

func TestRenderAbortReclaimsResources(t *testing.T) {
	alloc := &limitedAllocator{SoftwareAllocator: backend.NewSoftwareAllocator(), quota: 1}
	r, err := NewRenderer(litScene(), WithAllocator(alloc), WithSortingLayers(testLayers...))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	err = r.Render(newRecorder(), Frame{Camera: testCamera(1), Index: 1})
	if !errors.Is(err, errQuota) {
		t.Fatalf("Render() = %v, want errQuota", err)
	}
	if r.Registry().Rendering() {
		t.Error("registry still rendering after abort")
	}
	if s := r.Stats(); s.Aborted != 1 || s.Frames != 0 {
		t.Errorf("Aborted = %d, Frames = %d", s.Aborted, s.Frames)
	}

	alloc.quota = 100
	if err := r.Render(newRecorder(), Frame{Camera: testCamera(1), Index: 2}); err != nil {
		t.Fatalf("frame after abort: %v", err)
	}
}

func TestCameraStateEviction(t *testing.T) {
	s := DefaultSettings()
	s.CameraCacheSize = 2
	r, _ := newTestRenderer(t, litScene(), WithSettings(s))

	for id := gpucore.CameraID(1); id <= 3; id++ {
		if err := r.Render(newRecorder(), Frame{Camera: testCamera(id), Index: int(id)}); err != nil {
			t.Fatal(err)
		}
	}
	st := r.Stats()
	if st.Cameras != 2 || st.Evicted != 1 {
		t.Errorf("Cameras = %d, Evicted = %d, want 2 and 1", st.Cameras, st.Evicted)
	}

	if !r.ForgetCamera(3) {
		t.Error("ForgetCamera(3) = false")
	}
	if r.ForgetCamera(1) {
		t.Error("ForgetCamera(1) = true for an evicted camera")
	}
}

func TestNewRendererBackend(t *testing.T) {
	if _, err := NewRenderer(nil, WithBackend("no-such-backend")); !errors.Is(err, backend.ErrNotAvailable) {
		t.Errorf("unknown backend error = %v, want ErrNotAvailable", err)
	}

	r, err := NewRenderer(nil, WithBackend(backend.Software))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Backend() != backend.Software {
		t.Errorf("Backend() = %q, want %q", r.Backend(), backend.Software)
	}
	if r.Lights() == nil || r.ShadowGroups() == nil {
		t.Error("NewRenderer(nil) did not create a light manager and shadow groups")
	}
	if got := r.SortingLayers(); len(got) != 1 || got[0] != DefaultSortingLayer {
		t.Errorf("SortingLayers() = %v, want the default layer", got)
	}

	bad := DefaultSettings()
	bad.BlendStyles = nil
	if _, err := NewRenderer(nil, WithSettings(bad)); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("invalid settings error = %v", err)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	alloc := backend.NewSoftwareAllocator()
	r, err := NewRenderer(litScene(), WithAllocator(alloc))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Render(newRecorder(), Frame{Camera: testCamera(1), Index: 1}); err != nil {
		t.Fatal(err)
	}
	r.Close()
	if n := alloc.LiveTextures(); n != 0 {
		t.Errorf("LiveTextures after Close = %d, want 0", n)
	}
	if err := r.Render(newRecorder(), Frame{Camera: testCamera(1), Index: 2}); !errors.Is(err, ErrClosed) {
		t.Errorf("Render after Close = %v, want ErrClosed", err)
	}
}
