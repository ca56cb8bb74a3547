package lighting

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
	"github.com/gogpu/light2d/rendergraph"
	"github.com/gogpu/light2d/shadow"
)

// Config is the lighting configuration shared by every camera.
type Config struct {
	BlendStyles []light.BlendStyle

	LightFormat   gputypes.TextureFormat
	NormalsFormat gputypes.TextureFormat
	ShadowFormat  gputypes.TextureFormat
	DepthFormat   gputypes.TextureFormat

	// ShadowRenderScale sizes the shadow mask relative to the camera.
	ShadowRenderScale float32

	// HDREmulationScale divides light intensity so values above one
	// survive low precision targets.
	HDREmulationScale float32

	// FastMemory places light targets in fast memory where supported.
	FastMemory rendergraph.FastMemoryDesc
}

// DefaultConfig returns the configuration a renderer starts with.
func DefaultConfig() Config {
	return Config{
		BlendStyles:       light.DefaultBlendStyles(),
		LightFormat:       gputypes.TextureFormatRGBA16Float,
		NormalsFormat:     gputypes.TextureFormatRGBA8Unorm,
		ShadowFormat:      gputypes.TextureFormatRGBA8Unorm,
		DepthFormat:       gputypes.TextureFormatDepth24PlusStencil8,
		ShadowRenderScale: 1,
		HDREmulationScale: 1,
	}
}

// normalsClearColor encodes an up-facing normal.
var normalsClearColor = gputypes.Color{R: 0.5, G: 0.5, B: 1, A: 1}

// minFalloffSpan bounds the inner radius multiplier when the inner radius
// reaches the outer one.
const minFalloffSpan = 1e-4

// VolumeDraw records one light volume draw.
type VolumeDraw struct {
	Light *light.Light
	Layer int32
}

// FrameStats counts the work recorded for one camera frame.
type FrameStats struct {
	LightsDrawn     int
	LightsSkipped   int
	ShadowPasses    int
	NormalsPasses   int
	TargetClears    int
	FallbackBinds   int
	TargetsRealized int
	Volumes         []VolumeDraw
}

// Pass holds one camera's light accumulation state. Handles are only valid
// between BeginFrame and EndFrame; the Pass itself is reused across frames.
type Pass struct {
	cfg       Config
	registry  *rendergraph.Registry
	materials *MaterialCache
	shadows   *shadow.Renderer

	camera *gpucore.Camera
	cull   *light.CullResult
	layers []SortingLayer

	targets   [light.MaxBlendStyles]rendergraph.ResourceHandle
	hasTarget [light.MaxBlendStyles]bool
	dirty     [light.MaxBlendStyles]bool

	shadowMask  rendergraph.ResourceHandle
	shadowDepth rendergraph.ResourceHandle
	hasShadow   bool

	black    gpucore.Texture
	stats    FrameStats
	inFrame  bool
	batchIdx int
}

// NewPass returns a pass drawing through registry with materials from
// materials and shadows from shadows.
func NewPass(cfg Config, registry *rendergraph.Registry, materials *MaterialCache, shadows *shadow.Renderer) *Pass {
	if len(cfg.BlendStyles) > light.MaxBlendStyles {
		cfg.BlendStyles = cfg.BlendStyles[:light.MaxBlendStyles]
	}
	return &Pass{cfg: cfg, registry: registry, materials: materials, shadows: shadows}
}

// Config returns the pass configuration.
func (p *Pass) Config() Config { return p.cfg }

// Stats returns the counters of the current or last frame.
func (p *Pass) Stats() FrameStats { return p.stats }

// BeginFrame prepares the pass for a camera frame. The registry must be
// rendering. It imports the black fallback texture and sets the blend style
// globals.
func (p *Pass) BeginFrame(cmd gpucore.CommandBuffer, camera *gpucore.Camera, cull *light.CullResult, layers []SortingLayer) error {
	if p.inFrame {
		return fmt.Errorf("lighting: BeginFrame called twice for camera %q", camera.Name)
	}
	p.camera, p.cull, p.layers = camera, cull, layers
	p.hasTarget = [light.MaxBlendStyles]bool{}
	p.dirty = [light.MaxBlendStyles]bool{}
	p.hasShadow = false
	p.stats = FrameStats{}
	p.batchIdx = 0

	black, err := p.registry.ImportBlackTexture(cmd)
	if err != nil {
		return err
	}
	if p.black, err = p.registry.Texture(black); err != nil {
		return err
	}
	p.inFrame = true

	p.setShapeLightGlobals(cmd)
	return nil
}

func (p *Pass) setShapeLightGlobals(cmd gpucore.CommandBuffer) {
	for i, style := range p.cfg.BlendStyles {
		f := style.Factors()
		cmd.SetGlobalFloat(gpucore.PropertyBlendFactorMultiplicative0+gpucore.Property(i), f.Multiplicative)
		cmd.SetGlobalFloat(gpucore.PropertyBlendFactorAdditive0+gpucore.Property(i), f.Additive)
		cmd.SetGlobalVector(gpucore.PropertyMaskFilter0+gpucore.Property(i), style.MaskFilter())
		cmd.SetGlobalVector(gpucore.PropertyInvertedFilter0+gpucore.Property(i), style.InvertedFilter())
	}
	scale := p.cfg.HDREmulationScale
	if scale <= 0 {
		scale = 1
	}
	cmd.SetGlobalFloat(gpucore.PropertyHDREmulationScale, scale)
	cmd.SetGlobalFloat(gpucore.PropertyInverseHDREmulationScale, 1/scale)
	cmd.SetGlobalFloat(gpucore.PropertyUseSceneLighting, 1)
}

// CreateTargets realizes an accumulation target for every blend style the
// batch uses that does not have one yet this frame.
func (p *Pass) CreateTargets(cmd gpucore.CommandBuffer, batch *LayerBatch) error {
	for i := range p.cfg.BlendStyles {
		if !batch.Stats.UsesBlendStyle(i) || p.hasTarget[i] {
			continue
		}
		style := p.cfg.BlendStyles[i]
		w, h := scaled(p.camera.Width, style.RenderScale), scaled(p.camera.Height, style.RenderScale)
		handle, err := p.registry.CreateTexture(rendergraph.TextureDesc{
			Name:            fmt.Sprintf("_ShapeLightTexture%d", i),
			Width:           w,
			Height:          h,
			Format:          p.cfg.LightFormat,
			ClearBuffer:     true,
			ClearColor:      gputypes.ColorBlack,
			FallbackToBlack: true,
			FastMemory:      p.cfg.FastMemory,
		}, -1)
		if err != nil {
			return err
		}
		if err := p.registry.RealizeTexture(cmd, handle); err != nil {
			return err
		}
		p.targets[i] = handle
		p.hasTarget[i] = true
		p.stats.TargetsRealized++
	}
	return nil
}

// SetKeywords enables the light texture keyword of each blend style the
// batch uses and disables the rest.
func (p *Pass) SetKeywords(cmd gpucore.CommandBuffer, batch *LayerBatch) {
	for i := 0; i < light.MaxBlendStyles; i++ {
		k := gpucore.ShapeLightKeyword(i)
		if i < len(p.cfg.BlendStyles) && batch.Stats.UsesBlendStyle(i) {
			cmd.EnableKeyword(k)
		} else {
			cmd.DisableKeyword(k)
		}
	}
}

// RenderNormals draws the batch's renderers with the normals pass into a
// transient normals target when any light in the batch uses normal maps.
// The returned handle must be passed to ReleaseNormals after the batch.
func (p *Pass) RenderNormals(cmd gpucore.CommandBuffer, batch *LayerBatch) (rendergraph.ResourceHandle, bool, error) {
	if !batch.Stats.UsesNormalMap() {
		return rendergraph.ResourceHandle{}, false, nil
	}
	h, err := p.registry.CreateTexture(rendergraph.TextureDesc{
		Name:   "_NormalMap",
		Width:  p.camera.Width,
		Height: p.camera.Height,
		Format: p.cfg.NormalsFormat,
	}, p.batchIdx)
	if err != nil {
		return h, false, err
	}
	if err := p.registry.RealizeTexture(cmd, h); err != nil {
		return h, false, err
	}
	tex, err := p.registry.Texture(h)
	if err != nil {
		return h, true, err
	}
	cmd.SetRenderTarget(gpucore.RenderTarget{Color: tex, Depth: p.camera.Target.Depth})
	cmd.ClearRenderTarget(gpucore.ClearColor, normalsClearColor)
	cmd.DrawRenderers(gpucore.DrawSettings{Camera: p.camera, Pass: gpucore.PassNormalsRendering, Layers: batch.Range})
	cmd.SetGlobalTexture(gpucore.SlotNormalMap, tex)
	p.stats.NormalsPasses++
	return h, true, p.registry.IncrementWriteCount(h)
}

// ReleaseNormals returns a normals target from RenderNormals to the pool.
func (p *Pass) ReleaseNormals(cmd gpucore.CommandBuffer, h rendergraph.ResourceHandle) error {
	return p.registry.ReleaseTexture(cmd, h)
}

// RenderLights accumulates the batch's lights. A target is cleared when it
// holds contribution from an earlier batch or the layer has a global light
// color for its style; the target stays dirty when it was cleared or drawn
// to. Dirty targets of styles the batch does not use are cleared to black.
func (p *Pass) RenderLights(cmd gpucore.CommandBuffer, batch *LayerBatch) error {
	layer := batch.StartLayer()
	for i := range p.cfg.BlendStyles {
		if !p.hasTarget[i] {
			continue
		}
		if !batch.Stats.UsesBlendStyle(i) {
			if err := p.clearStale(cmd, i); err != nil {
				return err
			}
			continue
		}
		target, err := p.registry.Texture(p.targets[i])
		if err != nil {
			return err
		}
		cmd.SetRenderTarget(gpucore.RenderTarget{Color: target})

		clearColor, hasGlobal := p.cull.GlobalColor(layer, i)
		cleared := p.dirty[i] || hasGlobal
		if cleared {
			cmd.ClearRenderTarget(gpucore.ClearColor, clearColor)
			p.stats.TargetClears++
		}

		drew, err := p.renderLightSet(cmd, i, layer, target)
		if err != nil {
			return err
		}
		if cleared || drew {
			if err := p.registry.IncrementWriteCount(p.targets[i]); err != nil {
				return err
			}
		}
		p.dirty[i] = cleared || drew
	}
	p.batchIdx++
	return nil
}

// clearStale clears style i's target to black when it still holds light
// from an earlier batch that the current batch does not use.
func (p *Pass) clearStale(cmd gpucore.CommandBuffer, i int) error {
	if !p.dirty[i] {
		return nil
	}
	target, err := p.registry.Texture(p.targets[i])
	if err != nil {
		return err
	}
	cmd.SetRenderTarget(gpucore.RenderTarget{Color: target})
	cmd.ClearRenderTarget(gpucore.ClearColor, gputypes.ColorBlack)
	p.stats.TargetClears++
	p.dirty[i] = false
	return nil
}

func (p *Pass) renderLightSet(cmd gpucore.CommandBuffer, style int, layer int32, target gpucore.Texture) (bool, error) {
	drew := false
	for _, l := range p.cull.VisibleLights() {
		if l.Type() == light.TypeGlobal || l.BlendStyle() != style || !l.IsLitLayer(layer) {
			continue
		}
		mesh := l.Mesh()
		if mesh == nil {
			p.stats.LightsSkipped++
			slogger().Warn("lighting: skipping light without mesh", "type", l.Type(), "layer", layer)
			continue
		}
		mat, err := p.materials.Get(KeyForLight(l, false))
		if err != nil {
			p.stats.LightsSkipped++
			continue
		}

		shadowed, err := p.renderShadows(cmd, l, layer, l.ShadowIntensity())
		if err != nil {
			return drew, err
		}
		if shadowed {
			cmd.SetRenderTarget(gpucore.RenderTarget{Color: target})
		}

		p.setLightGlobals(cmd, l, shadowed)
		cmd.DrawMesh(mesh, l.Transform(), mat)
		p.stats.LightsDrawn++
		drew = true
	}
	return drew, nil
}

// renderShadows draws l's shadow mask and binds it. It reports whether a
// mask was bound.
func (p *Pass) renderShadows(cmd gpucore.CommandBuffer, l *light.Light, layer int32, intensity float32) (bool, error) {
	if p.shadows == nil || l.Type() == light.TypeGlobal || intensity <= 0 {
		return false, nil
	}
	if err := p.ensureShadowTargets(cmd); err != nil {
		return false, err
	}
	mask, err := p.registry.Texture(p.shadowMask)
	if err != nil {
		return false, err
	}
	depth, err := p.registry.Texture(p.shadowDepth)
	if err != nil {
		return false, err
	}
	if !p.shadows.RenderShadows(cmd, l, layer, intensity, l.ShadowVolumeIntensity(),
		gpucore.RenderTarget{Color: mask, Depth: depth}) {
		return false, nil
	}
	p.stats.ShadowPasses++
	cmd.SetGlobalTexture(gpucore.SlotShadowTexture, mask)
	return true, p.registry.IncrementWriteCount(p.shadowMask)
}

func (p *Pass) ensureShadowTargets(cmd gpucore.CommandBuffer) error {
	if p.hasShadow {
		return nil
	}
	w := scaled(p.camera.Width, p.cfg.ShadowRenderScale)
	h := scaled(p.camera.Height, p.cfg.ShadowRenderScale)
	mask, err := p.registry.CreateTexture(rendergraph.TextureDesc{
		Name: "_ShadowTex", Width: w, Height: h, Format: p.cfg.ShadowFormat,
	}, -1)
	if err != nil {
		return err
	}
	depth, err := p.registry.CreateTexture(rendergraph.TextureDesc{
		Name: "_ShadowDepth", Width: w, Height: h, Format: p.cfg.DepthFormat,
		Usage: gputypes.TextureUsageRenderAttachment,
	}, -1)
	if err != nil {
		return err
	}
	if err := p.registry.RealizeTexture(cmd, mask); err != nil {
		return err
	}
	if err := p.registry.RealizeTexture(cmd, depth); err != nil {
		return err
	}
	p.shadowMask, p.shadowDepth, p.hasShadow = mask, depth, true
	return nil
}

func (p *Pass) setLightGlobals(cmd gpucore.CommandBuffer, l *light.Light, shadowed bool) {
	pos := l.Position()
	cmd.SetGlobalVector(gpucore.PropertyLightPosition, mgl32.Vec4{pos.X(), pos.Y(), l.NormalMapDistance(), l.BoundingSphere().Radius})
	cmd.SetGlobalColor(gpucore.PropertyLightColor, l.FinalColor())
	cmd.SetGlobalFloat(gpucore.PropertyFalloffIntensity, l.FalloffIntensity())
	cmd.SetGlobalFloat(gpucore.PropertyVolumeOpacity, l.VolumeIntensity())
	if l.Type() == light.TypePoint {
		inner, outer := l.PointRadius()
		innerAngle, outerAngle := l.PointAngles()
		innerMult := float32(1)
		if outer > 0 {
			innerMult = 1 / max(1-inner/outer, minFalloffSpan)
		}
		cmd.SetGlobalFloat(gpucore.PropertyInnerRadiusMult, innerMult)
		cmd.SetGlobalFloat(gpucore.PropertyInnerAngle, innerAngle/360)
		cmd.SetGlobalFloat(gpucore.PropertyOuterAngle, outerAngle/360)
	}
	if !shadowed {
		cmd.SetGlobalFloat(gpucore.PropertyShadowIntensity, 0)
	}
	if l.HasCookie() {
		cmd.SetGlobalTexture(gpucore.SlotCookieTexture, l.Cookie())
	}
}

// BindLightTextures binds every blend style's accumulation target for the
// geometry pass. Styles without a target, or whose target was never
// written this frame, get the black texture.
func (p *Pass) BindLightTextures(cmd gpucore.CommandBuffer) error {
	for i := 0; i < light.MaxBlendStyles; i++ {
		tex := p.black
		if p.hasTarget[i] && !p.registry.NeedsFallback(p.targets[i]) {
			t, err := p.registry.Texture(p.targets[i])
			if err != nil {
				return err
			}
			tex = t
		} else {
			p.stats.FallbackBinds++
		}
		cmd.SetGlobalTexture(gpucore.ShapeLightSlot(i), tex)
	}
	return nil
}

// DrawLayers draws the batch's renderers into the camera target.
func (p *Pass) DrawLayers(cmd gpucore.CommandBuffer, batch *LayerBatch) {
	cmd.SetRenderTarget(p.camera.Target)
	cmd.DrawRenderers(gpucore.DrawSettings{Camera: p.camera, Pass: gpucore.PassUniversal2D, Layers: batch.Range})
}

// RenderLightVolumes draws the volumes of lights whose topmost lit layer is
// the batch's last layer, so each volume is drawn once per frame.
func (p *Pass) RenderLightVolumes(cmd gpucore.CommandBuffer, batch *LayerBatch) error {
	if !batch.Stats.UsesVolumes() {
		return nil
	}
	end := batch.EndLayer()
	for _, l := range p.cull.VisibleLights() {
		if !l.HasVolume() || !l.IsLitLayer(end) {
			continue
		}
		if top, ok := TopMostLitLayer(l, p.layers); !ok || top != end {
			continue
		}
		mesh := l.Mesh()
		if mesh == nil {
			continue
		}
		mat, err := p.materials.Get(KeyForLight(l, true))
		if err != nil {
			continue
		}
		shadowed, err := p.renderShadows(cmd, l, end, l.ShadowVolumeIntensity())
		if err != nil {
			return err
		}
		cmd.SetRenderTarget(p.camera.Target)
		p.setLightGlobals(cmd, l, shadowed)
		cmd.DrawMesh(mesh, l.Transform(), mat)
		p.stats.Volumes = append(p.stats.Volumes, VolumeDraw{Light: l, Layer: end})
	}
	return nil
}

// EndFrame releases every target realized during the frame.
func (p *Pass) EndFrame(cmd gpucore.CommandBuffer) error {
	if !p.inFrame {
		return nil
	}
	p.inFrame = false
	var errs []error
	for i := range p.targets {
		if p.hasTarget[i] {
			errs = append(errs, p.registry.ReleaseTexture(cmd, p.targets[i]))
			p.hasTarget[i] = false
		}
	}
	if p.hasShadow {
		errs = append(errs,
			p.registry.ReleaseTexture(cmd, p.shadowMask),
			p.registry.ReleaseTexture(cmd, p.shadowDepth))
		p.hasShadow = false
	}
	return errors.Join(errs...)
}

// Abort forgets the frame's handles without releasing them. The registry's
// exception-path EndRender reclaims the resources.
func (p *Pass) Abort() {
	p.inFrame = false
	p.hasTarget = [light.MaxBlendStyles]bool{}
	p.hasShadow = false
}

// Dirty reports whether blend style i's target holds light from an
// earlier batch of this frame.
func (p *Pass) Dirty(i int) bool { return p.dirty[i] }

func scaled(size int, scale float32) int {
	if scale <= 0 {
		scale = 1
	}
	return max(1, int(math32.Ceil(float32(size)*scale)))
}
