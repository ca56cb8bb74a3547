package light

// Type is the shape family of a light.
type Type uint8

// Light types.
const (
	TypeParametric Type = iota
	TypeFreeform
	TypeSprite
	TypePoint
	TypeGlobal
)

var typeNames = [...]string{
	TypeParametric: "Parametric",
	TypeFreeform:   "Freeform",
	TypeSprite:     "Sprite",
	TypePoint:      "Point",
	TypeGlobal:     "Global",
}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// NormalMapQuality selects how lights shade normal-mapped sprites.
type NormalMapQuality uint8

// Normal map qualities.
const (
	NormalMapDisabled NormalMapQuality = iota
	NormalMapFast
	NormalMapAccurate
)

// String returns the quality name.
func (q NormalMapQuality) String() string {
	switch q {
	case NormalMapDisabled:
		return "Disabled"
	case NormalMapFast:
		return "Fast"
	case NormalMapAccurate:
		return "Accurate"
	default:
		return "Unknown"
	}
}

// OverlapOperation decides how a light combines with lights drawn before
// it in the same blend style.
type OverlapOperation uint8

// Overlap operations.
const (
	OverlapAdditive OverlapOperation = iota
	OverlapAlphaBlend
)
