package shadow

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
)

// shadowShader is the host program that extrudes shadow meshes.
var shadowShader = &gpucore.ShaderModule{Name: "Hidden/ShadowGroup2D"}

// shadowBlend accumulates shadow into the mask.
var shadowBlend = gputypes.BlendState{
	Color: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOne,
		Operation: gputypes.BlendOperationAdd,
	},
	Alpha: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOne,
		Operation: gputypes.BlendOperationAdd,
	},
}

// shadowChannel selects the mask channel the light shader samples.
var shadowChannel = mgl32.Vec4{1, 0, 0, 0}

// removeBlend zeroes the mask under a caster.
var removeBlend = gputypes.BlendState{
	Color: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorZero,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	},
	Alpha: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorZero,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	},
}

// Stats describes the most recent RenderShadows call.
type Stats struct {
	Groups         int
	StencilIndices int
	ShadowDraws    int
	RemoveSelf     int
	Silhouettes    int
}

// Renderer draws shadow casters into a light's shadow mask. Materials are
// created once per stencil index and reused across lights and frames.
type Renderer struct {
	groups *GroupManager

	shadowMats map[uint32]*gpucore.Material
	removeMats map[uint32]*gpucore.Material

	stats Stats
}

// NewRenderer returns a renderer over groups.
func NewRenderer(groups *GroupManager) *Renderer {
	return &Renderer{
		groups:     groups,
		shadowMats: make(map[uint32]*gpucore.Material),
		removeMats: make(map[uint32]*gpucore.Material),
	}
}

// Groups returns the group manager.
func (r *Renderer) Groups() *GroupManager { return r.groups }

// Stats returns the counters of the last RenderShadows call.
func (r *Renderer) Stats() Stats { return r.stats }

// MaterialCount returns the number of cached shadow materials.
func (r *Renderer) MaterialCount() int { return len(r.shadowMats) + len(r.removeMats) }

// ShadowMaterial returns the material drawing casters of stencil index i.
// It passes where the stencil does not yet hold i and then writes i, so a
// group contributes at most once per pixel.
func (r *Renderer) ShadowMaterial(i uint32) *gpucore.Material {
	if m, ok := r.shadowMats[i]; ok {
		return m
	}
	m := &gpucore.Material{
		Name:   fmt.Sprintf("ShadowMaterial_%d", i),
		Shader: shadowShader,
		Blend:  shadowBlend,
		Stencil: gputypes.StencilFaceState{
			Compare:     gputypes.CompareFunctionNotEqual,
			FailOp:      gputypes.StencilOperationKeep,
			DepthFailOp: gputypes.StencilOperationKeep,
			PassOp:      gputypes.StencilOperationReplace,
		},
		StencilRef: i,
		WriteMask:  gputypes.ColorWriteMaskAll,
	}
	r.shadowMats[i] = m
	return m
}

// RemoveSelfShadowMaterial returns the material that clears the mask under
// a caster of stencil index i.
func (r *Renderer) RemoveSelfShadowMaterial(i uint32) *gpucore.Material {
	if m, ok := r.removeMats[i]; ok {
		return m
	}
	m := &gpucore.Material{
		Name:   fmt.Sprintf("RemoveSelfShadowMaterial_%d", i),
		Shader: shadowShader,
		Blend:  removeBlend,
		Stencil: gputypes.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      gputypes.StencilOperationKeep,
			DepthFailOp: gputypes.StencilOperationKeep,
			PassOp:      gputypes.StencilOperationReplace,
		},
		StencilRef: i,
		WriteMask:  gputypes.ColorWriteMaskAll,
	}
	r.removeMats[i] = m
	return m
}

// RenderShadows renders the shadow mask of l for sorting layer layer into
// target. It reports whether the mask was written; with zero intensity
// nothing is recorded and the light should be drawn unshadowed.
func (r *Renderer) RenderShadows(cmd gpucore.CommandBuffer, l *light.Light, layer int32,
	intensity, volumeIntensity float32, target gpucore.RenderTarget) bool {
	r.stats = Stats{}
	if intensity <= 0 || l == nil || r.groups == nil {
		return false
	}

	cmd.SetRenderTarget(target)
	cmd.ClearRenderTarget(gpucore.ClearAll, gputypes.ColorTransparent)

	lightBounds := l.BoundingSphere()
	cmd.SetGlobalVector(gpucore.PropertyLightPosition, l.Position().Vec4(lightBounds.Radius))
	cmd.SetGlobalFloat(gpucore.PropertyShadowIntensity, 1-intensity)
	cmd.SetGlobalFloat(gpucore.PropertyShadowVolumeIntensity, 1-volumeIntensity)
	cmd.SetGlobalVector(gpucore.PropertyShadowColorMask, shadowChannel)

	var (
		stencil  uint32
		lastID   uint32
		haveLast bool
	)
	for _, g := range r.groups.Groups() {
		if g.id == 0 || !haveLast || g.id != lastID {
			stencil++
		}
		lastID, haveLast = g.id, true
		r.stats.Groups++

		shadowMat := r.ShadowMaterial(stencil)
		var lit []*Caster
		for _, c := range g.casters {
			if !c.castsShadows || !c.IsShadowedLayer(layer) || !overlaps(c.BoundingSphere(), lightBounds) {
				continue
			}
			mesh := c.Mesh()
			if mesh == nil {
				slogger().Warn("shadow: skipping caster with degenerate outline", "group", g.id)
				continue
			}
			cmd.DrawMesh(mesh, c.Transform(), shadowMat)
			r.stats.ShadowDraws++
			lit = append(lit, c)
		}
		for _, c := range lit {
			switch {
			case c.silhouette && c.renderer != nil:
				mat := shadowMat
				if !c.selfShadows {
					mat = r.RemoveSelfShadowMaterial(stencil)
					r.stats.RemoveSelf++
				}
				cmd.DrawRenderer(c.renderer, mat)
				r.stats.Silhouettes++
			case !c.selfShadows:
				cmd.DrawMesh(c.Mesh(), c.Transform(), r.RemoveSelfShadowMaterial(stencil))
				r.stats.RemoveSelf++
			}
		}
	}
	r.stats.StencilIndices = int(stencil)
	slogger().Debug("shadow: rendered",
		"layer", layer,
		"groups", r.stats.Groups,
		"stencil_indices", r.stats.StencilIndices,
		"draws", r.stats.ShadowDraws)
	return true
}

func overlaps(a, b gpucore.Sphere) bool {
	r := a.Radius + b.Radius
	d := a.Center.Sub(b.Center)
	return d.Dot(d) <= r*r
}
