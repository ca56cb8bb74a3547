package light

import (
	"cmp"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// LayerStats aggregates the visible lights affecting one sorting layer.
type LayerStats struct {
	TotalLights          int
	TotalNormalMapUsage  int
	TotalVolumetricUsage int

	// BlendStylesUsed has bit i set when a non-global light with blend style
	// i affects the layer.
	BlendStylesUsed uint32

	// GlobalBlendStyles has bit i set when a global light with blend style i
	// affects the layer. Such styles still need a cleared target even when
	// no shaped light draws into them.
	GlobalBlendStyles uint32
}

// UsesBlendStyle reports whether style i needs an accumulation target.
func (s LayerStats) UsesBlendStyle(i int) bool {
	return (s.BlendStylesUsed|s.GlobalBlendStyles)&(1<<uint(i)) != 0
}

// UsesNormalMap reports whether any light on the layer shades normals.
func (s LayerStats) UsesNormalMap() bool { return s.TotalNormalMapUsage > 0 }

// UsesVolumes reports whether any light on the layer draws a volume.
func (s LayerStats) UsesVolumes() bool { return s.TotalVolumetricUsage > 0 }

// CullResult is the per-camera visible light list. The zero value is empty
// and ready for SetupCulling.
type CullResult struct {
	manager *Manager
	camera  *gpucore.Camera
	visible []*Light
}

// NewCullResult returns a cull result over the manager's lights.
func NewCullResult(m *Manager) *CullResult {
	return &CullResult{manager: m}
}

// SetupCulling rebuilds the visible light list for camera. Global lights
// are always visible. Other lights must be on an object layer the culling
// mask accepts and not be excluded by any culling plane. The result is
// stably sorted by light order.
func (c *CullResult) SetupCulling(params gpucore.CullingParameters, camera *gpucore.Camera) {
	c.camera = camera
	c.visible = c.visible[:0]
	if c.manager == nil {
		return
	}
	for _, l := range c.manager.lights {
		if l.typ == TypeGlobal {
			c.visible = append(c.visible, l)
			continue
		}
		if !params.LayerVisible(l.objectLayer) {
			continue
		}
		if culledByPlanes(params.Planes, l.BoundingSphere()) {
			continue
		}
		c.visible = append(c.visible, l)
	}
	slices.SortStableFunc(c.visible, func(a, b *Light) int { return cmp.Compare(a.order, b.order) })
}

func culledByPlanes(planes []gpucore.Plane, s gpucore.Sphere) bool {
	for _, p := range planes {
		if p.Excludes(s) {
			return true
		}
	}
	return false
}

// Camera returns the camera of the last SetupCulling.
func (c *CullResult) Camera() *gpucore.Camera { return c.camera }

// VisibleLights returns the lights that passed culling in draw order. The
// slice is reused by the next SetupCulling.
func (c *CullResult) VisibleLights() []*Light { return c.visible }

// LightStatsByLayer aggregates the visible lights that affect layer.
// It has no side effects and may be called any number of times.
func (c *CullResult) LightStatsByLayer(layer int32) LayerStats {
	var s LayerStats
	for _, l := range c.visible {
		if !l.IsLitLayer(layer) {
			continue
		}
		if l.typ == TypeGlobal {
			s.GlobalBlendStyles |= 1 << uint(l.blendStyle)
			continue
		}
		s.TotalLights++
		if l.UsesNormalMap() {
			s.TotalNormalMapUsage++
		}
		if l.HasVolume() {
			s.TotalVolumetricUsage++
		}
		s.BlendStylesUsed |= 1 << uint(l.blendStyle)
	}
	return s
}

// IsSceneLit reports whether lighting must run at all: some light is
// visible, or a global light is registered.
func (c *CullResult) IsSceneLit() bool {
	if len(c.visible) > 0 {
		return true
	}
	return c.manager != nil && c.manager.HasGlobalLight()
}

// GlobalColor returns the ambient color a blend style target is cleared to
// for layer: the color of the last global light in draw order that affects
// the layer with that blend style, or black if there is none.
func (c *CullResult) GlobalColor(layer int32, style int) (gputypes.Color, bool) {
	color, found := gputypes.ColorBlack, false
	for _, l := range c.visible {
		if l.typ != TypeGlobal || l.blendStyle != style || !l.IsLitLayer(layer) {
			continue
		}
		color, found = l.FinalColor(), true
	}
	return color, found
}
