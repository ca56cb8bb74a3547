package lighting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
)

// ErrShaderCompile is returned when a light shader variant fails to compile.
var ErrShaderCompile = errors.New("lighting: shader compilation failed")

// MaterialKey packs every light property that selects a distinct light
// material.
type MaterialKey uint32

const (
	keyVolume MaterialKey = 1 << iota
	keyPoint
	keyAlphaBlend
	keyCookie
	keyFastQuality
	keyNormalMap

	keyTypeShift = iota
	keyTypeMask  = 0x7
)

// NewMaterialKey builds a key from its fields.
func NewMaterialKey(volume, point, alphaBlend bool, typ light.Type, cookie, fastQuality, normalMap bool) MaterialKey {
	var k MaterialKey
	set := func(on bool, bit MaterialKey) {
		if on {
			k |= bit
		}
	}
	set(volume, keyVolume)
	set(point, keyPoint)
	set(alphaBlend, keyAlphaBlend)
	set(cookie, keyCookie)
	set(fastQuality, keyFastQuality)
	set(normalMap, keyNormalMap)
	k |= MaterialKey(typ&keyTypeMask) << keyTypeShift
	return k
}

// KeyForLight returns the key of the material that draws l, or its volume
// when volume is set.
func KeyForLight(l *light.Light, volume bool) MaterialKey {
	return NewMaterialKey(
		volume,
		l.Type() == light.TypePoint,
		l.AlphaBlendOnOverlap(),
		l.Type(),
		l.HasCookie(),
		l.NormalMapQuality() == light.NormalMapFast,
		l.UsesNormalMap(),
	)
}

func (k MaterialKey) Volume() bool          { return k&keyVolume != 0 }
func (k MaterialKey) Point() bool           { return k&keyPoint != 0 }
func (k MaterialKey) AlphaBlend() bool      { return k&keyAlphaBlend != 0 }
func (k MaterialKey) Cookie() bool          { return k&keyCookie != 0 }
func (k MaterialKey) FastQuality() bool     { return k&keyFastQuality != 0 }
func (k MaterialKey) NormalMap() bool       { return k&keyNormalMap != 0 }
func (k MaterialKey) LightType() light.Type { return light.Type(k >> keyTypeShift & keyTypeMask) }

// Variant returns the shader features the key needs. Blend mode and the
// parametric/freeform distinction do not affect the shader.
func (k MaterialKey) Variant() Variant {
	var v Variant
	if k.Volume() {
		v |= VariantVolume
	}
	if k.Point() {
		v |= VariantPoint
	}
	if k.LightType() == light.TypeSprite {
		v |= VariantSprite
	}
	if k.Cookie() {
		v |= VariantCookie
	}
	if k.FastQuality() {
		v |= VariantFastQuality
	}
	if k.NormalMap() {
		v |= VariantNormalMap
	}
	return v
}

// String describes the key for material names and logs.
func (k MaterialKey) String() string {
	parts := []string{k.LightType().String()}
	if k.Volume() {
		parts = append(parts, "Volume")
	}
	if k.AlphaBlend() {
		parts = append(parts, "AlphaBlend")
	} else {
		parts = append(parts, "Additive")
	}
	if k.Cookie() {
		parts = append(parts, "Cookie")
	}
	if k.NormalMap() {
		if k.FastQuality() {
			parts = append(parts, "NormalFast")
		} else {
			parts = append(parts, "NormalAccurate")
		}
	}
	return strings.Join(parts, "_")
}

var (
	additiveBlend = gputypes.BlendState{
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
	volumeBlend = gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorZero,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationAdd,
		},
	}
)

// MaterialCache memoizes light materials by MaterialKey and compiled shader
// modules by Variant. A variant that failed to compile is remembered and
// not retried until Clear.
type MaterialCache struct {
	compiler ShaderCompiler

	materials map[MaterialKey]*gpucore.Material
	shaders   map[Variant]*gpucore.ShaderModule
	failed    map[Variant]error
	compiles  int
}

// NewMaterialCache returns an empty cache. With a nil compiler shader
// modules carry only their variant and the host supplies the program.
func NewMaterialCache(compiler ShaderCompiler) *MaterialCache {
	return &MaterialCache{
		compiler:  compiler,
		materials: make(map[MaterialKey]*gpucore.Material),
		shaders:   make(map[Variant]*gpucore.ShaderModule),
		failed:    make(map[Variant]error),
	}
}

// Get returns the material for key, creating it on first use.
func (c *MaterialCache) Get(key MaterialKey) (*gpucore.Material, error) {
	if m, ok := c.materials[key]; ok {
		return m, nil
	}
	shader, err := c.shader(key.Variant())
	if err != nil {
		return nil, err
	}
	m := &gpucore.Material{
		Name:      "Light2D_" + key.String(),
		Shader:    shader,
		Blend:     additiveBlend,
		Stencil:   gputypes.DefaultStencilFaceState(),
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	switch {
	case key.Volume():
		m.Blend = volumeBlend
	case key.AlphaBlend():
		m.Blend = gputypes.BlendStateAlpha()
	}
	c.materials[key] = m
	return m, nil
}

func (c *MaterialCache) shader(v Variant) (*gpucore.ShaderModule, error) {
	if s, ok := c.shaders[v]; ok {
		return s, nil
	}
	if err, ok := c.failed[v]; ok {
		return nil, err
	}
	s := &gpucore.ShaderModule{Name: "Light2D/" + v.String(), Variant: uint32(v)}
	if c.compiler != nil {
		c.compiles++
		code, err := c.compiler.Compile(v.Source())
		if err != nil {
			err = fmt.Errorf("%w: variant %s: %w", ErrShaderCompile, v, err)
			c.failed[v] = err
			slogger().Warn("lighting: light shader variant failed to compile", "variant", v.String(), "err", err)
			return nil, err
		}
		s.Code = code
	}
	c.shaders[v] = s
	return s, nil
}

// Len returns the number of cached materials.
func (c *MaterialCache) Len() int { return len(c.materials) }

// ShaderCount returns the number of compiled shader variants.
func (c *MaterialCache) ShaderCount() int { return len(c.shaders) }

// Compiles returns how many times the compiler has been invoked.
func (c *MaterialCache) Compiles() int { return c.compiles }

// Clear drops every material, shader and remembered failure.
func (c *MaterialCache) Clear() {
	clear(c.materials)
	clear(c.shaders)
	clear(c.failed)
}
