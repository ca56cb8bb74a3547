package gpucore

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Keyword is a global shader feature toggled per layer batch.
type Keyword uint8

// Global keywords. One per blend style light texture.
const (
	KeywordShapeLightType0 Keyword = iota
	KeywordShapeLightType1
	KeywordShapeLightType2
	KeywordShapeLightType3

	keywordCount
)

var keywordNames = [...]string{
	KeywordShapeLightType0: "USE_SHAPE_LIGHT_TYPE_0",
	KeywordShapeLightType1: "USE_SHAPE_LIGHT_TYPE_1",
	KeywordShapeLightType2: "USE_SHAPE_LIGHT_TYPE_2",
	KeywordShapeLightType3: "USE_SHAPE_LIGHT_TYPE_3",
}

// String returns the shader-side keyword name.
func (k Keyword) String() string {
	if k < keywordCount {
		return keywordNames[k]
	}
	return "Unknown"
}

// ShapeLightKeyword returns the keyword for blend style index i.
func ShapeLightKeyword(i int) Keyword {
	return KeywordShapeLightType0 + Keyword(i)
}

// TextureSlot is a global texture binding.
type TextureSlot uint8

// Texture slots.
const (
	SlotShapeLightTexture0 TextureSlot = iota
	SlotShapeLightTexture1
	SlotShapeLightTexture2
	SlotShapeLightTexture3
	SlotNormalMap
	SlotShadowTexture
	SlotFalloffLookup
	SlotLightLookup
	SlotCookieTexture

	slotCount
)

var slotNames = [...]string{
	SlotShapeLightTexture0: "_ShapeLightTexture0",
	SlotShapeLightTexture1: "_ShapeLightTexture1",
	SlotShapeLightTexture2: "_ShapeLightTexture2",
	SlotShapeLightTexture3: "_ShapeLightTexture3",
	SlotNormalMap:          "_NormalMap",
	SlotShadowTexture:      "_ShadowTex",
	SlotFalloffLookup:      "_FalloffLookup",
	SlotLightLookup:        "_LightLookup",
	SlotCookieTexture:      "_CookieTex",
}

// String returns the shader-side texture name.
func (s TextureSlot) String() string {
	if s < slotCount {
		return slotNames[s]
	}
	return "Unknown"
}

// ShapeLightSlot returns the light texture slot for blend style index i.
func ShapeLightSlot(i int) TextureSlot {
	return SlotShapeLightTexture0 + TextureSlot(i)
}

// Property is a global shader constant.
type Property uint8

// Global properties.
const (
	PropertyBlendFactorMultiplicative0 Property = iota
	PropertyBlendFactorMultiplicative1
	PropertyBlendFactorMultiplicative2
	PropertyBlendFactorMultiplicative3
	PropertyBlendFactorAdditive0
	PropertyBlendFactorAdditive1
	PropertyBlendFactorAdditive2
	PropertyBlendFactorAdditive3
	PropertyMaskFilter0
	PropertyMaskFilter1
	PropertyMaskFilter2
	PropertyMaskFilter3
	PropertyInvertedFilter0
	PropertyInvertedFilter1
	PropertyInvertedFilter2
	PropertyInvertedFilter3
	PropertyHDREmulationScale
	PropertyInverseHDREmulationScale
	PropertyUseSceneLighting
	PropertyLightPosition
	PropertyLightColor
	PropertyFalloffIntensity
	PropertyVolumeOpacity
	PropertyShadowIntensity
	PropertyShadowVolumeIntensity
	PropertyShadowColorMask
	PropertyInnerRadiusMult
	PropertyInnerAngle
	PropertyOuterAngle

	propertyCount
)

var propertyNames = [...]string{
	PropertyBlendFactorMultiplicative0: "_ShapeLightBlendFactors0.x",
	PropertyBlendFactorMultiplicative1: "_ShapeLightBlendFactors1.x",
	PropertyBlendFactorMultiplicative2: "_ShapeLightBlendFactors2.x",
	PropertyBlendFactorMultiplicative3: "_ShapeLightBlendFactors3.x",
	PropertyBlendFactorAdditive0:       "_ShapeLightBlendFactors0.y",
	PropertyBlendFactorAdditive1:       "_ShapeLightBlendFactors1.y",
	PropertyBlendFactorAdditive2:       "_ShapeLightBlendFactors2.y",
	PropertyBlendFactorAdditive3:       "_ShapeLightBlendFactors3.y",
	PropertyMaskFilter0:                "_ShapeLightMaskFilter0",
	PropertyMaskFilter1:                "_ShapeLightMaskFilter1",
	PropertyMaskFilter2:                "_ShapeLightMaskFilter2",
	PropertyMaskFilter3:                "_ShapeLightMaskFilter3",
	PropertyInvertedFilter0:            "_ShapeLightInvertedFilter0",
	PropertyInvertedFilter1:            "_ShapeLightInvertedFilter1",
	PropertyInvertedFilter2:            "_ShapeLightInvertedFilter2",
	PropertyInvertedFilter3:            "_ShapeLightInvertedFilter3",
	PropertyHDREmulationScale:          "_HDREmulationScale",
	PropertyInverseHDREmulationScale:   "_InverseHDREmulationScale",
	PropertyUseSceneLighting:           "_UseSceneLighting",
	PropertyLightPosition:              "_LightPos",
	PropertyLightColor:                 "_LightColor",
	PropertyFalloffIntensity:           "_FalloffIntensity",
	PropertyVolumeOpacity:              "_VolumeOpacity",
	PropertyShadowIntensity:            "_ShadowIntensity",
	PropertyShadowVolumeIntensity:      "_ShadowVolumeIntensity",
	PropertyShadowColorMask:            "_ShadowColorMask",
	PropertyInnerRadiusMult:            "_InnerRadiusMult",
	PropertyInnerAngle:                 "_InnerAngle",
	PropertyOuterAngle:                 "_OuterAngle",
}

// String returns the shader-side property name.
func (p Property) String() string {
	if p < propertyCount {
		return propertyNames[p]
	}
	return "Unknown"
}

// CommandBuffer records rendering work. Calls are synchronous and only
// append to the stream; nothing executes until the host submits it.
type CommandBuffer interface {
	SetRenderTarget(target RenderTarget)
	ClearRenderTarget(flags ClearFlags, color gputypes.Color)

	EnableKeyword(k Keyword)
	DisableKeyword(k Keyword)

	SetGlobalTexture(slot TextureSlot, tex Texture)
	SetGlobalFloat(p Property, v float32)
	SetGlobalColor(p Property, c gputypes.Color)
	SetGlobalVector(p Property, v mgl32.Vec4)

	// DrawMesh draws mesh with the given object-to-world transform.
	DrawMesh(mesh *Mesh, transform mgl32.Mat4, material *Material)

	// DrawRenderer draws a single renderer's geometry with an override
	// material.
	DrawRenderer(r Renderer, material *Material)

	// DrawRenderers draws every host renderer matching settings.
	DrawRenderers(settings DrawSettings)

	// SwitchIntoFastMemory moves residency fraction of tex into fast memory.
	SwitchIntoFastMemory(tex Texture, flags FastMemoryFlags, residency float32, copyContents bool)
}
