package shadow

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/light2d/gpucore"
)

// Caster is a shape that blocks light.
type Caster struct {
	shape    []mgl32.Vec2
	position mgl32.Vec3

	castsShadows bool
	selfShadows  bool
	silhouette   bool
	renderer     gpucore.Renderer
	layers       []int32

	shapeGen   uint64
	meshGen    uint64
	mesh       *gpucore.Mesh
	meshBuilds int
}

// CasterOption configures a Caster.
type CasterOption func(*Caster)

// WithSelfShadows lets the caster shadow its own area.
func WithSelfShadows(on bool) CasterOption {
	return func(c *Caster) { c.selfShadows = on }
}

// WithRendererSilhouette draws r's own geometry into the stencil in place
// of the extruded outline's fill.
func WithRendererSilhouette(r gpucore.Renderer) CasterOption {
	return func(c *Caster) {
		c.renderer = r
		c.silhouette = r != nil
	}
}

// WithShadowedLayers restricts the sorting layers the caster shadows. A
// caster without restriction shadows every layer.
func WithShadowedLayers(ids ...int32) CasterOption {
	return func(c *Caster) { c.layers = slices.Clone(ids) }
}

// WithCasterPosition sets the world position.
func WithCasterPosition(p mgl32.Vec3) CasterOption {
	return func(c *Caster) { c.position = p }
}

// NewCaster returns a shadow-casting outline in object space.
func NewCaster(shape []mgl32.Vec2, opts ...CasterOption) *Caster {
	c := &Caster{
		shape:        slices.Clone(shape),
		castsShadows: true,
		shapeGen:     1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetShape replaces the outline.
func (c *Caster) SetShape(shape []mgl32.Vec2) {
	c.shape = slices.Clone(shape)
	c.shapeGen++
}

// SetPosition moves the caster.
func (c *Caster) SetPosition(p mgl32.Vec3) { c.position = p }

// SetCastsShadows enables or disables the caster.
func (c *Caster) SetCastsShadows(on bool) { c.castsShadows = on }

func (c *Caster) CastsShadows() bool          { return c.castsShadows }
func (c *Caster) SelfShadows() bool           { return c.selfShadows }
func (c *Caster) UseRendererSilhouette() bool { return c.silhouette }
func (c *Caster) Renderer() gpucore.Renderer  { return c.renderer }
func (c *Caster) Position() mgl32.Vec3        { return c.position }
func (c *Caster) MeshBuilds() int             { return c.meshBuilds }
func (c *Caster) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(c.position.X(), c.position.Y(), c.position.Z())
}
func (c *Caster) ShadowedLayers() []int32 { return c.layers }

// IsShadowedLayer reports whether the caster shadows lights on sorting
// layer id.
func (c *Caster) IsShadowedLayer(id int32) bool {
	return len(c.layers) == 0 || slices.Contains(c.layers, id)
}

// Mesh returns the shadow mesh, rebuilding it after SetShape.
func (c *Caster) Mesh() *gpucore.Mesh {
	if c.meshGen != c.shapeGen {
		c.mesh = GenerateShadowMesh(c.shape)
		c.meshGen = c.shapeGen
		c.meshBuilds++
	}
	return c.mesh
}

// BoundingSphere returns the world-space bounds of the caster's outline.
func (c *Caster) BoundingSphere() gpucore.Sphere {
	m := c.Mesh()
	if m == nil {
		return gpucore.Sphere{Center: c.position}
	}
	return gpucore.Sphere{
		Center: m.Bounds.Center().Add(c.position),
		Radius: m.Bounds.Extents().Len(),
	}
}

// Group is a set of casters sharing one stencil index. Group id 0 means
// ungrouped: it never shares an index with the group before it.
type Group struct {
	id       uint32
	priority int
	casters  []*Caster
}

// NewGroup returns a group.
func NewGroup(id uint32, priority int, casters ...*Caster) *Group {
	return &Group{id: id, priority: priority, casters: slices.Clone(casters)}
}

// ID returns the group id.
func (g *Group) ID() uint32 { return g.id }

// Priority returns the group's sort priority.
func (g *Group) Priority() int { return g.priority }

// Casters returns the casters. The slice must not be modified.
func (g *Group) Casters() []*Caster { return g.casters }

// Add appends casters.
func (g *Group) Add(casters ...*Caster) { g.casters = append(g.casters, casters...) }

// Remove drops a caster and reports whether it was present.
func (g *Group) Remove(c *Caster) bool {
	i := slices.Index(g.casters, c)
	if i < 0 {
		return false
	}
	g.casters = slices.Delete(g.casters, i, i+1)
	return true
}

// GroupManager keeps the active groups ordered by priority. Groups with
// equal priority keep their registration order.
type GroupManager struct {
	groups []*Group
}

// NewGroupManager returns an empty manager.
func NewGroupManager() *GroupManager { return &GroupManager{} }

// Register adds g after every group of lower or equal priority.
func (m *GroupManager) Register(g *Group) {
	if g == nil || slices.Contains(m.groups, g) {
		return
	}
	i := slices.IndexFunc(m.groups, func(o *Group) bool { return o.priority > g.priority })
	if i < 0 {
		m.groups = append(m.groups, g)
		return
	}
	m.groups = slices.Insert(m.groups, i, g)
}

// Deregister removes g and reports whether it was registered.
func (m *GroupManager) Deregister(g *Group) bool {
	i := slices.Index(m.groups, g)
	if i < 0 {
		return false
	}
	m.groups = slices.Delete(m.groups, i, i+1)
	return true
}

// Groups returns the groups in traversal order.
func (m *GroupManager) Groups() []*Group { return m.groups }
