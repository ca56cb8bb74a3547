package lighting

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

//go:embed shaders/light2d.wgsl
var lightShaderTemplate string

// Variant is a set of light shader features. Each distinct Variant is a
// separately compiled shader module.
type Variant uint32

// Shader features.
const (
	VariantVolume Variant = 1 << iota
	VariantPoint
	VariantSprite
	VariantCookie
	VariantFastQuality
	VariantNormalMap

	variantBits = iota
)

// variantDefines maps each feature bit to the WGSL constant that enables it.
var variantDefines = [variantBits]string{
	"VOLUME",
	"POINT_LIGHT",
	"SPRITE_LIGHT",
	"USE_COOKIE",
	"LIGHT_QUALITY_FAST",
	"USE_NORMAL_MAP",
}

// Has reports whether all features in f are set.
func (v Variant) Has(f Variant) bool { return v&f == f }

// Defines returns the names of the enabled features in bit order.
func (v Variant) Defines() []string {
	var out []string
	for i, name := range variantDefines {
		if v&(1<<uint(i)) != 0 {
			out = append(out, name)
		}
	}
	return out
}

// String returns the enabled feature names joined by '|'.
func (v Variant) String() string {
	d := v.Defines()
	if len(d) == 0 {
		return "BASE"
	}
	return strings.Join(d, "|")
}

// Source returns the WGSL for the variant: one boolean constant per
// feature followed by the light shader template.
func (v Variant) Source() string {
	var b strings.Builder
	for i, name := range variantDefines {
		fmt.Fprintf(&b, "const %s: bool = %t;\n", name, v&(1<<uint(i)) != 0)
	}
	b.WriteString(lightShaderTemplate)
	return b.String()
}

// ShaderCompiler turns WGSL into SPIR-V words.
type ShaderCompiler interface {
	Compile(wgsl string) ([]uint32, error)
}

// NagaCompiler compiles WGSL with the pure Go naga compiler.
type NagaCompiler struct{}

// Compile implements ShaderCompiler.
func (NagaCompiler) Compile(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
