// Package gpucore defines the contracts between the 2D lighting pipeline and
// the host engine that embeds it.
//
// The lighting code never talks to a GPU API directly. It records work onto a
// [CommandBuffer], obtains backing memory from an [Allocator], and reads scene
// data (cameras, culling planes, meshes, renderers) through the plain types in
// this package. Hosts adapt these interfaces to their own device; the
// recording package provides a replayable in-memory CommandBuffer and the
// backend packages provide allocators.
//
// # Closed feature sets
//
// Shader keywords, global texture slots and global properties are closed
// enums ([Keyword], [TextureSlot], [Property]) rather than strings, so an
// unknown name is a compile error instead of a silent mismatch at draw time.
//
//	cmd.EnableKeyword(gpucore.KeywordShapeLightType0)
//	cmd.SetGlobalTexture(gpucore.SlotShapeLightTexture0, tex)
//	cmd.SetGlobalFloat(gpucore.PropertyShadowIntensity, 0.5)
package gpucore
