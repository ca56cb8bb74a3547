// Package shadow builds 2D shadow-volume meshes and composites stencil
// grouped shadow casters into a light's shadow mask.
//
// # Shadow meshes
//
// [GenerateShadowMesh] fills a caster outline and hands the triangles to
// [ExtrudeBoundary], which finds silhouette edges by edge uniqueness: every
// triangle edge is keyed by its (min, max) vertex pair so an interior edge
// shared by two triangles produces the same key twice. After sorting, a key
// that matches neither neighbour is a boundary edge, and each one gains a
// wall triangle whose two new vertices carry the extrusion data in their
// tangents. The vertex shader pushes those vertices away from the light.
//
// # Rendering
//
// [Renderer.RenderShadows] walks the active [Group]s in priority order and
// assigns stencil indices: a new index whenever the group id changes, and
// always for id 0. Casters in one group share an index so overlapping
// shadows within the group do not darken twice.
package shadow
