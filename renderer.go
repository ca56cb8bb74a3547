package light2d

import (
	"errors"
	"fmt"

	"github.com/gogpu/light2d/backend"
	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/internal/cache"
	"github.com/gogpu/light2d/light"
	"github.com/gogpu/light2d/lighting"
	"github.com/gogpu/light2d/rendergraph"
	"github.com/gogpu/light2d/shadow"
)

// ErrInvalidCamera is returned by Render for a nil camera or one with an
// empty viewport.
var ErrInvalidCamera = errors.New("light2d: invalid camera")

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.New("light2d: renderer closed")

// DefaultSortingLayer is the layer used when no sorting layers are set.
var DefaultSortingLayer = lighting.SortingLayer{ID: 0, Name: "Default", Value: 0}

// Frame is one camera render request.
type Frame struct {
	Camera *gpucore.Camera

	// Index is the host frame counter. Pooled resources age by it.
	Index int
}

// Stats describes the renderer's last frame and its lifetime totals.
type Stats struct {
	Frames      int
	UnlitFrames int
	Aborted     int

	// Batches and Lighting describe the last lit frame.
	Batches  int
	Lighting lighting.FrameStats

	Cameras  int
	Evicted  uint64
	Registry rendergraph.Stats
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("light2d[%d frames (%d unlit, %d aborted), %d batches, %d lights, %d volumes, %d cameras] %s",
		s.Frames, s.UnlitFrames, s.Aborted, s.Batches, s.Lighting.LightsDrawn,
		len(s.Lighting.Volumes), s.Cameras, s.Registry)
}

// cameraState is the lighting state a camera keeps between frames.
type cameraState struct {
	cull   *light.CullResult
	pass   *lighting.Pass
	frames int
}

// Renderer draws lit 2D frames. It owns a resource registry, the light
// material cache and the shadow renderer, and keeps per-camera state for a
// bounded number of cameras.
//
// A Renderer is not safe for concurrent use; render cameras one at a time.
type Renderer struct {
	settings  Settings
	lightCfg  lighting.Config
	backend   string
	registry  *rendergraph.Registry
	materials *lighting.MaterialCache
	shadows   *shadow.Renderer
	lights    *light.Manager
	layers    []lighting.SortingLayer
	cameras   *cache.Cache[gpucore.CameraID, *cameraState]

	executions int
	closed     bool
	stats      Stats
}

// NewRenderer creates a renderer drawing the lights registered with lights.
// A nil manager starts an empty one, available through Lights.
func NewRenderer(lights *light.Manager, opts ...RendererOption) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.settings.Validate(); err != nil {
		return nil, err
	}
	cfg, err := o.settings.lightingConfig()
	if err != nil {
		return nil, err
	}

	alloc, name := o.allocator, "custom"
	if alloc == nil {
		if alloc, name, err = backend.Open(o.backendName); err != nil {
			return nil, err
		}
	}
	if lights == nil {
		lights = light.NewManager()
	}
	groups := o.groups
	if groups == nil {
		groups = shadow.NewGroupManager()
	}

	r := &Renderer{
		settings:  o.settings,
		lightCfg:  cfg,
		backend:   name,
		registry:  rendergraph.NewRegistry(alloc, o.settings.registryConfig()),
		materials: lighting.NewMaterialCache(o.compiler),
		shadows:   shadow.NewRenderer(groups),
		lights:    lights,
	}
	r.cameras = cache.New(o.settings.CameraCacheSize, func(id gpucore.CameraID, s *cameraState) {
		Logger().Debug("light2d: camera state evicted", "camera", id, "frames", s.frames)
	})
	r.SetSortingLayers(o.layers...)

	Logger().Info("light2d: renderer created",
		"backend", name,
		"blendStyles", len(cfg.BlendStyles),
		"lightFormat", cfg.LightFormat)
	return r, nil
}

// Backend returns the name of the allocator backend in use.
func (r *Renderer) Backend() string { return r.backend }

// Settings returns the settings the renderer was created with.
func (r *Renderer) Settings() Settings { return r.settings }

// Lights returns the light manager.
func (r *Renderer) Lights() *light.Manager { return r.lights }

// ShadowGroups returns the shadow caster groups.
func (r *Renderer) ShadowGroups() *shadow.GroupManager { return r.shadows.Groups() }

// Registry returns the transient resource registry.
func (r *Renderer) Registry() *rendergraph.Registry { return r.registry }

// Materials returns the light material cache.
func (r *Renderer) Materials() *lighting.MaterialCache { return r.materials }

// SortingLayers returns the sorting layers in draw order.
func (r *Renderer) SortingLayers() []lighting.SortingLayer { return r.layers }

// SetSortingLayers replaces the sorting layers. With none, every renderer
// is drawn on DefaultSortingLayer.
func (r *Renderer) SetSortingLayers(layers ...lighting.SortingLayer) {
	if len(layers) == 0 {
		layers = []lighting.SortingLayer{DefaultSortingLayer}
	}
	r.layers = lighting.SortLayers(layers)
}

// Stats returns renderer statistics.
func (r *Renderer) Stats() Stats {
	s := r.stats
	cs := r.cameras.Stats()
	s.Cameras = cs.Len
	s.Evicted = cs.Evictions
	s.Registry = r.registry.Stats()
	return s
}

// Render records one lit frame for frame.Camera into cmd.
//
// Resources are drawn from the registry's pools and returned to them before
// Render returns. On error the frame is abandoned: every transient resource
// is reclaimed, and the error is returned to the caller.
func (r *Renderer) Render(cmd gpucore.CommandBuffer, frame Frame) error {
	if r.closed {
		return ErrClosed
	}
	cam := frame.Camera
	if cam == nil {
		return fmt.Errorf("%w: nil camera", ErrInvalidCamera)
	}
	if cam.Width <= 0 || cam.Height <= 0 {
		return fmt.Errorf("%w: camera %q is %dx%d", ErrInvalidCamera, cam.Name, cam.Width, cam.Height)
	}

	r.executions++
	if err := r.registry.BeginRender(r.executions, frame.Index); err != nil {
		return err
	}
	state := r.cameras.GetOrCreate(cam.ID, func() *cameraState {
		return &cameraState{
			cull: light.NewCullResult(r.lights),
			pass: lighting.NewPass(r.lightCfg, r.registry, r.materials, r.shadows),
		}
	})
	state.frames++
	state.cull.SetupCulling(cam.Culling, cam)

	var err error
	if state.cull.IsSceneLit() {
		err = r.renderLit(cmd, cam, state)
	} else {
		r.renderUnlit(cmd, cam)
	}
	if err != nil {
		state.pass.Abort()
		if cerr := r.registry.EndRender(true); cerr != nil {
			Logger().Warn("light2d: resources reclaimed after failed frame", "camera", cam.Name, "err", cerr)
		}
		r.stats.Aborted++
		return fmt.Errorf("light2d: camera %q: %w", cam.Name, err)
	}
	r.stats.Frames++
	return r.registry.EndRender(false)
}

func (r *Renderer) renderUnlit(cmd gpucore.CommandBuffer, cam *gpucore.Camera) {
	cmd.SetGlobalFloat(gpucore.PropertyUseSceneLighting, 0)
	cmd.SetRenderTarget(cam.Target)
	cmd.DrawRenderers(gpucore.DrawSettings{
		Camera: cam,
		Pass:   gpucore.PassUniversal2D,
		Layers: gpucore.LayerRange{Lower: r.layers[0].Value, Upper: r.layers[len(r.layers)-1].Value},
	})
	r.stats.UnlitFrames++
}

func (r *Renderer) renderLit(cmd gpucore.CommandBuffer, cam *gpucore.Camera, state *cameraState) error {
	pass := state.pass
	if err := pass.BeginFrame(cmd, cam, state.cull, r.layers); err != nil {
		return err
	}
	batches := lighting.ComputeBatches(r.layers, state.cull)
	Logger().Debug("light2d: layer batches", "camera", cam.Name, "layers", len(r.layers), "batches", len(batches))

	for i := range batches {
		if err := r.renderBatch(cmd, pass, &batches[i]); err != nil {
			return err
		}
	}
	if err := pass.EndFrame(cmd); err != nil {
		return err
	}
	r.stats.Batches = len(batches)
	r.stats.Lighting = pass.Stats()
	return nil
}

func (r *Renderer) renderBatch(cmd gpucore.CommandBuffer, pass *lighting.Pass, batch *lighting.LayerBatch) error {
	if err := pass.CreateTargets(cmd, batch); err != nil {
		return err
	}
	pass.SetKeywords(cmd, batch)
	normals, hasNormals, err := pass.RenderNormals(cmd, batch)
	if err != nil {
		return err
	}
	if err := pass.RenderLights(cmd, batch); err != nil {
		return err
	}
	if err := pass.BindLightTextures(cmd); err != nil {
		return err
	}
	pass.DrawLayers(cmd, batch)
	if err := pass.RenderLightVolumes(cmd, batch); err != nil {
		return err
	}
	if hasNormals {
		return pass.ReleaseNormals(cmd, normals)
	}
	return nil
}

// ForgetCamera drops the state kept for a camera. It reports whether the
// camera had state.
func (r *Renderer) ForgetCamera(id gpucore.CameraID) bool {
	return r.cameras.Delete(id)
}

// Close destroys every pooled resource. The renderer cannot be used
// afterwards.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.cameras.Clear()
	r.materials.Clear()
	r.registry.Cleanup()
	Logger().Info("light2d: renderer closed", "frames", r.stats.Frames)
}
