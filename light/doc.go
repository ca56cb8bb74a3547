// Package light models 2D lights, their blend styles and per-camera
// visibility.
//
// A [Light] owns its derived geometry: the light mesh and bounding sphere
// are rebuilt lazily, only when a shape or transform setter has advanced the
// light's generation counters since the artifact was last built.
//
// Lights register with a [Manager], which is the set of lights a renderer
// considers each frame. [CullResult] filters that set for one camera and
// answers per-sorting-layer statistics queries used to batch layers.
package light
