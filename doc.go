// Package light2d renders deferred 2D lighting on top of a frame-scoped
// transient resource registry.
//
// # Overview
//
// A frame is drawn in sorting layer batches. Adjacent sorting layers lit by
// the same set of lights share one batch; for each batch light2d
//
//   - creates a light accumulation texture per blend style in use,
//   - renders the batch's normals when a light samples them,
//   - accumulates every visible light (with its shadows) into the blend
//     style textures,
//   - draws the batch's renderers sampling those textures, and
//   - draws light volumes on the topmost layer each light affects.
//
// Light textures, normals and shadow masks are transient: they come from
// the [rendergraph.Registry], which pools GPU textures by descriptor across
// frames and reports any resource a frame forgot to release.
//
// # Quick Start
//
//	lights := light.NewManager()
//	lights.Register(
//	    light.New(light.TypeGlobal, light.WithColor(gputypes.Color{R: 0.2, G: 0.2, B: 0.3, A: 1}),
//	        light.WithTargetSortingLayers(0)),
//	    light.New(light.TypePoint, light.WithPointRadius(0, 4),
//	        light.WithTargetSortingLayers(0)),
//	)
//
//	r, err := light2d.NewRenderer(lights)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	err = r.Render(cmd, light2d.Frame{Camera: cam, Index: frameIndex})
//
// # Architecture
//
// The module is organized into:
//   - light2d (root): Renderer, Settings, frame orchestration
//   - light: lights, blend styles, light registry, culling results
//   - lighting: layer batching, light material cache, accumulation pass
//   - shadow: shadow casters, shadow meshes, stencil shadow rendering
//   - rendergraph: resource handles, registry and pools
//   - backend: allocator backends (software, native via gogpu/wgpu)
//   - recording: replayable command buffer
//   - gpucore: interfaces shared with the host engine
//
// # Configuration
//
// Settings can be authored as TOML and loaded with [LoadSettings]; see
// [Settings] for the keys.
package light2d
