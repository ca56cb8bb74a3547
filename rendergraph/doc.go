// Package rendergraph manages frame-scoped GPU resources for render passes.
//
// A [Registry] hands out [ResourceHandle] values for textures and buffers
// that passes declare during a frame. Declared resources get backing memory
// only when realized, and return it to a descriptor-keyed pool when
// released, so identical requests in later frames reuse the same native
// objects.
//
// # Frame lifecycle
//
//	reg.BeginRender(executionCount, frameIndex)
//	h, _ := reg.CreateTexture(desc, passIndex)
//	_ = reg.RealizeTexture(cmd, h)
//	... record passes that write h, then reg.IncrementWriteCount(h) ...
//	_ = reg.ReleaseTexture(cmd, h)
//	err := reg.EndRender(false)
//
// Handles carry a validity generation derived from the execution count.
// A handle minted in one frame fails IsValid in any later frame, even when
// the later frame reuses the same slot index.
//
// Usage errors (realizing a resource twice, releasing a resource that was
// never realized, out-of-range handles, leaked allocations) are returned as
// wrapped sentinel errors. Callers treat them as fatal for the frame and
// unwind with EndRender(true).
package rendergraph
