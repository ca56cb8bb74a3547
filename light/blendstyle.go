package light

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxBlendStyles is the number of light blend styles a renderer supports.
// Each one maps to a shader keyword and a light texture slot.
const MaxBlendStyles = 4

// BlendMode is how a blend style's light texture combines with the sprite
// color.
type BlendMode uint8

// Blend modes.
const (
	BlendMultiply BlendMode = iota
	BlendAdditive
	BlendSubtractive
	BlendCustom
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendMultiply:
		return "Multiply"
	case BlendAdditive:
		return "Additive"
	case BlendSubtractive:
		return "Subtractive"
	case BlendCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// ParseBlendMode parses a blend mode name as written by String.
func ParseBlendMode(s string) (BlendMode, error) {
	for m := BlendMultiply; m <= BlendCustom; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("light: unknown blend mode %q", s)
}

// BlendFactors weights the light texture: final = sprite * (multiplicative
// * light) + additive * light.
type BlendFactors struct {
	Multiplicative float32
	Additive       float32
}

// MaskChannel selects the sprite mask channel a blend style is restricted
// to.
type MaskChannel uint8

// Mask channels.
const (
	MaskNone MaskChannel = iota
	MaskR
	MaskG
	MaskB
	MaskA
)

// BlendStyle is one independently accumulated lighting channel.
type BlendStyle struct {
	Name        string
	Mask        MaskChannel
	Mode        BlendMode
	Custom      BlendFactors
	RenderScale float32
}

// DefaultBlendStyles returns the four blend styles a new renderer starts
// with.
func DefaultBlendStyles() []BlendStyle {
	return []BlendStyle{
		{Name: "Multiply", Mode: BlendMultiply, RenderScale: 1},
		{Name: "Additive", Mode: BlendAdditive, RenderScale: 1},
		{Name: "Multiply with Mask (R)", Mode: BlendMultiply, Mask: MaskR, RenderScale: 1},
		{Name: "Additive with Mask (R)", Mode: BlendAdditive, Mask: MaskR, RenderScale: 1},
	}
}

// Factors returns the blend factors for the style's mode.
func (b BlendStyle) Factors() BlendFactors {
	switch b.Mode {
	case BlendAdditive:
		return BlendFactors{Multiplicative: 0, Additive: 1}
	case BlendSubtractive:
		return BlendFactors{Multiplicative: 0, Additive: -1}
	case BlendCustom:
		return b.Custom
	default:
		return BlendFactors{Multiplicative: 1, Additive: 0}
	}
}

// MaskFilter returns the channel selector for the mask texture.
func (b BlendStyle) MaskFilter() mgl32.Vec4 {
	switch b.Mask {
	case MaskR:
		return mgl32.Vec4{1, 0, 0, 0}
	case MaskG:
		return mgl32.Vec4{0, 1, 0, 0}
	case MaskB:
		return mgl32.Vec4{0, 0, 1, 0}
	case MaskA:
		return mgl32.Vec4{0, 0, 0, 1}
	default:
		return mgl32.Vec4{}
	}
}

// InvertedFilter returns 1 - MaskFilter for masked styles and zero
// otherwise.
func (b BlendStyle) InvertedFilter() mgl32.Vec4 {
	if b.Mask == MaskNone {
		return mgl32.Vec4{}
	}
	return mgl32.Vec4{1, 1, 1, 1}.Sub(b.MaskFilter())
}
