// Package lighting renders 2D light accumulation for one camera.
//
// Sorting layers are grouped into batches of adjacent layers that the same
// set of lights affects ([ComputeBatches]). For each batch a [Pass]
// realizes one accumulation target per active blend style through the
// frame's resource registry, clears it to the layer's global light color,
// draws every matching visible light into it (after rendering the light's
// shadow mask), and binds the results for the geometry pass. Light volumes
// are drawn once per light, in the batch ending at the light's topmost lit
// layer.
//
// Light materials are cached at two levels. A [MaterialKey] captures every
// light property that changes fixed-function state or shader features and
// maps to one *gpucore.Material. The shader features alone form a
// [Variant], and each variant is compiled once through a [ShaderCompiler].
package lighting
