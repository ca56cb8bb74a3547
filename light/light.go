package light

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// Light is a 2D light.
//
// Setters that change the light's shape advance its shape generation; setters
// that move it advance its transform generation. Mesh and BoundingSphere
// compare those generations against the ones their cached artifact was built
// from and rebuild only on mismatch.
//
// A Light is not safe for concurrent use.
type Light struct {
	typ        Type
	blendStyle int
	color      gputypes.Color
	intensity  float32

	falloffIntensity      float32
	falloffDistance       float32
	shadowIntensity       float32
	shadowVolumeIntensity float32
	volumeIntensity       float32

	order       int
	objectLayer int
	position    mgl32.Vec3
	rotation    float32

	// Parametric.
	radius float32
	sides  int
	angle  float32

	// Freeform.
	shapePath []mgl32.Vec2

	// Sprite.
	spriteSize  mgl32.Vec2
	spritePivot mgl32.Vec2

	// Point.
	innerRadius float32
	outerRadius float32
	innerAngle  float32
	outerAngle  float32

	cookie        gpucore.Texture
	normalQuality NormalMapQuality
	normalDist    float32
	overlap       OverlapOperation
	targetLayers  []int32

	shapeGen     uint64
	transformGen uint64

	mesh        *gpucore.Mesh
	meshGen     uint64
	meshBuilt   bool
	meshBuilds  int
	bounds      gpucore.Sphere
	boundsShape uint64
	boundsXform uint64
	boundsBuilt bool

	manager *Manager
}

// Option configures a Light.
type Option func(*Light)

// WithBlendStyle sets the blend style index, clamped to [0, MaxBlendStyles).
func WithBlendStyle(i int) Option {
	return func(l *Light) { l.blendStyle = clampStyle(i) }
}

// WithColor sets the light color.
func WithColor(c gputypes.Color) Option {
	return func(l *Light) { l.color = c }
}

// WithIntensity sets the light intensity.
func WithIntensity(v float32) Option {
	return func(l *Light) { l.intensity = max(v, 0) }
}

// WithFalloffIntensity sets how quickly the light fades toward its edge,
// in [0, 1].
func WithFalloffIntensity(v float32) Option {
	return func(l *Light) { l.falloffIntensity = clamp01(v) }
}

// WithFalloffDistance sets the width of the soft edge for parametric and
// freeform lights.
func WithFalloffDistance(v float32) Option {
	return func(l *Light) { l.falloffDistance = max(v, 0) }
}

// WithShadowIntensity sets the shadow strength in [0, 1]. Zero disables
// shadows for the light.
func WithShadowIntensity(v float32) Option {
	return func(l *Light) { l.shadowIntensity = clamp01(v) }
}

// WithShadowVolumeIntensity sets the shadow strength applied to the light's
// volume.
func WithShadowVolumeIntensity(v float32) Option {
	return func(l *Light) { l.shadowVolumeIntensity = clamp01(v) }
}

// WithVolumeIntensity sets the volumetric opacity. Zero disables the volume.
func WithVolumeIntensity(v float32) Option {
	return func(l *Light) { l.volumeIntensity = clamp01(v) }
}

// WithOrder sets the light order used to sort visible lights.
func WithOrder(order int) Option {
	return func(l *Light) { l.order = order }
}

// WithObjectLayer sets the object layer tested against the camera culling
// mask.
func WithObjectLayer(layer int) Option {
	return func(l *Light) { l.objectLayer = layer }
}

// WithPosition sets the world position.
func WithPosition(p mgl32.Vec3) Option {
	return func(l *Light) { l.position = p }
}

// WithRotation sets the rotation around Z in radians.
func WithRotation(r float32) Option {
	return func(l *Light) { l.rotation = r }
}

// WithParametric sets the radius, side count and angular offset of a
// parametric light.
func WithParametric(radius float32, sides int, angle float32) Option {
	return func(l *Light) {
		l.radius = max(radius, 0)
		l.sides = max(sides, 3)
		l.angle = angle
	}
}

// WithShapePath sets the outline of a freeform light.
func WithShapePath(path []mgl32.Vec2) Option {
	return func(l *Light) { l.shapePath = slices.Clone(path) }
}

// WithSprite sets the size and normalized pivot of a sprite light.
func WithSprite(size, pivot mgl32.Vec2) Option {
	return func(l *Light) {
		l.spriteSize = size
		l.spritePivot = pivot
	}
}

// WithPointRadius sets the inner and outer radius of a point light.
func WithPointRadius(inner, outer float32) Option {
	return func(l *Light) {
		l.outerRadius = max(outer, 0)
		l.innerRadius = min(max(inner, 0), l.outerRadius)
	}
}

// WithPointAngles sets the inner and outer cone angles of a point light in
// degrees.
func WithPointAngles(inner, outer float32) Option {
	return func(l *Light) {
		l.outerAngle = min(max(outer, 0), 360)
		l.innerAngle = min(max(inner, 0), l.outerAngle)
	}
}

// WithCookie sets the cookie texture of a sprite or point light.
func WithCookie(tex gpucore.Texture) Option {
	return func(l *Light) { l.cookie = tex }
}

// WithNormalMap sets the normal map quality and the light's distance from
// the sprite plane.
func WithNormalMap(q NormalMapQuality, distance float32) Option {
	return func(l *Light) {
		l.normalQuality = q
		l.normalDist = max(distance, 0)
	}
}

// WithOverlap sets how the light combines with earlier lights.
func WithOverlap(op OverlapOperation) Option {
	return func(l *Light) { l.overlap = op }
}

// WithTargetSortingLayers sets the sorting layer IDs the light affects.
func WithTargetSortingLayers(ids ...int32) Option {
	return func(l *Light) { l.targetLayers = slices.Clone(ids) }
}

// New returns a light of the given type.
func New(typ Type, opts ...Option) *Light {
	l := &Light{
		typ:              typ,
		color:            gputypes.ColorWhite,
		intensity:        1,
		falloffIntensity: 0.5,
		falloffDistance:  0.5,
		shadowIntensity:  0.75,
		radius:           1,
		sides:            6,
		spriteSize:       mgl32.Vec2{1, 1},
		spritePivot:      mgl32.Vec2{0.5, 0.5},
		outerRadius:      1,
		outerAngle:       360,
		innerAngle:       360,
		normalDist:       3,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.shapeGen = 1
	l.transformGen = 1
	return l
}

// Type returns the light type.
func (l *Light) Type() Type { return l.typ }

// BlendStyle returns the blend style index.
func (l *Light) BlendStyle() int { return l.blendStyle }

// Color returns the light color.
func (l *Light) Color() gputypes.Color { return l.color }

// Intensity returns the light intensity.
func (l *Light) Intensity() float32 { return l.intensity }

// FinalColor returns the color premultiplied by intensity.
func (l *Light) FinalColor() gputypes.Color {
	i := float64(l.intensity)
	return gputypes.Color{R: l.color.R * i, G: l.color.G * i, B: l.color.B * i, A: l.color.A}
}

func (l *Light) FalloffIntensity() float32      { return l.falloffIntensity }
func (l *Light) FalloffDistance() float32       { return l.falloffDistance }
func (l *Light) ShadowIntensity() float32       { return l.shadowIntensity }
func (l *Light) ShadowVolumeIntensity() float32 { return l.shadowVolumeIntensity }
func (l *Light) VolumeIntensity() float32       { return l.volumeIntensity }
func (l *Light) Order() int                     { return l.order }
func (l *Light) ObjectLayer() int               { return l.objectLayer }
func (l *Light) Position() mgl32.Vec3           { return l.position }
func (l *Light) Rotation() float32              { return l.rotation }
func (l *Light) Cookie() gpucore.Texture        { return l.cookie }
func (l *Light) Overlap() OverlapOperation      { return l.overlap }

// PointRadius returns the inner and outer radius of a point light.
func (l *Light) PointRadius() (inner, outer float32) { return l.innerRadius, l.outerRadius }

// PointAngles returns the inner and outer cone angles in degrees.
func (l *Light) PointAngles() (inner, outer float32) { return l.innerAngle, l.outerAngle }

// NormalMapQuality returns the normal map quality.
func (l *Light) NormalMapQuality() NormalMapQuality { return l.normalQuality }

// NormalMapDistance returns the light's distance from the sprite plane.
func (l *Light) NormalMapDistance() float32 { return l.normalDist }

// UsesNormalMap reports whether the light shades normal-mapped sprites.
func (l *Light) UsesNormalMap() bool { return l.normalQuality != NormalMapDisabled }

// AlphaBlendOnOverlap reports whether the light alpha-blends over earlier
// lights instead of adding to them.
func (l *Light) AlphaBlendOnOverlap() bool { return l.overlap == OverlapAlphaBlend }

// HasCookie reports whether the light samples a cookie texture.
func (l *Light) HasCookie() bool {
	return l.cookie != nil && (l.typ == TypeSprite || l.typ == TypePoint)
}

// HasVolume reports whether the light draws a volume.
func (l *Light) HasVolume() bool { return l.typ != TypeGlobal && l.volumeIntensity > 0 }

// CastsShadows reports whether the light renders shadows.
func (l *Light) CastsShadows() bool { return l.typ != TypeGlobal && l.shadowIntensity > 0 }

// TargetSortingLayers returns the sorting layer IDs the light affects.
// The slice must not be modified.
func (l *Light) TargetSortingLayers() []int32 { return l.targetLayers }

// IsLitLayer reports whether the light affects the sorting layer id.
func (l *Light) IsLitLayer(id int32) bool {
	return slices.Contains(l.targetLayers, id)
}

// SetBlendStyle changes the blend style index.
func (l *Light) SetBlendStyle(i int) { l.blendStyle = clampStyle(i) }

// SetColor changes the light color.
func (l *Light) SetColor(c gputypes.Color) { l.color = c }

// SetIntensity changes the light intensity.
func (l *Light) SetIntensity(v float32) { l.intensity = max(v, 0) }

// SetShadowIntensity changes the shadow strength.
func (l *Light) SetShadowIntensity(v float32) { l.shadowIntensity = clamp01(v) }

// SetVolumeIntensity changes the volumetric opacity.
func (l *Light) SetVolumeIntensity(v float32) { l.volumeIntensity = clamp01(v) }

// SetOrder changes the light order.
func (l *Light) SetOrder(order int) { l.order = order }

// SetTargetSortingLayers replaces the affected sorting layers.
func (l *Light) SetTargetSortingLayers(ids ...int32) { l.targetLayers = slices.Clone(ids) }

// SetPosition moves the light.
func (l *Light) SetPosition(p mgl32.Vec3) {
	if p == l.position {
		return
	}
	l.position = p
	l.transformGen++
}

// SetRotation rotates the light around Z.
func (l *Light) SetRotation(r float32) {
	if r == l.rotation {
		return
	}
	l.rotation = r
	l.transformGen++
}

// SetParametric changes the parametric shape.
func (l *Light) SetParametric(radius float32, sides int, angle float32) {
	WithParametric(radius, sides, angle)(l)
	l.shapeGen++
}

// SetShapePath replaces the freeform outline.
func (l *Light) SetShapePath(path []mgl32.Vec2) {
	l.shapePath = slices.Clone(path)
	l.shapeGen++
}

// SetSprite changes the sprite size and pivot.
func (l *Light) SetSprite(size, pivot mgl32.Vec2) {
	l.spriteSize = size
	l.spritePivot = pivot
	l.shapeGen++
}

// SetPointRadius changes the point light radii.
func (l *Light) SetPointRadius(inner, outer float32) {
	WithPointRadius(inner, outer)(l)
	l.shapeGen++
}

// SetFalloffDistance changes the soft edge width.
func (l *Light) SetFalloffDistance(v float32) {
	l.falloffDistance = max(v, 0)
	l.shapeGen++
}

// Transform returns the object-to-world matrix.
func (l *Light) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(l.position.X(), l.position.Y(), l.position.Z()).
		Mul4(mgl32.HomogRotate3DZ(l.rotation))
}

// Mesh returns the light mesh in object space, rebuilding it if the shape
// changed since the last call. Global lights have no mesh.
func (l *Light) Mesh() *gpucore.Mesh {
	if l.meshBuilt && l.meshGen == l.shapeGen {
		return l.mesh
	}
	l.mesh = buildMesh(l)
	l.meshGen = l.shapeGen
	l.meshBuilt = true
	l.meshBuilds++
	return l.mesh
}

// MeshBuilds returns how many times the mesh has been generated.
func (l *Light) MeshBuilds() int { return l.meshBuilds }

// BoundingSphere returns the world-space bounding sphere. Global lights
// report an infinite radius.
func (l *Light) BoundingSphere() gpucore.Sphere {
	if l.boundsBuilt && l.boundsShape == l.shapeGen && l.boundsXform == l.transformGen {
		return l.bounds
	}
	l.bounds = computeBounds(l)
	l.boundsShape = l.shapeGen
	l.boundsXform = l.transformGen
	l.boundsBuilt = true
	return l.bounds
}

// Destroy removes the light from its manager.
func (l *Light) Destroy() {
	if l.manager != nil {
		l.manager.Deregister(l)
	}
}

func clampStyle(i int) int {
	return min(max(i, 0), MaxBlendStyles-1)
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
