package light2d

import (
	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/lighting"
	"github.com/gogpu/light2d/shadow"
)

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	// Software allocator, no shader compilation
//	r, err := light2d.NewRenderer(lights)
//
//	// Native allocator with compiled light shaders
//	r, err := light2d.NewRenderer(lights,
//	    light2d.WithBackend(backend.Native),
//	    light2d.WithShaderCompiler(lighting.NagaCompiler{}))
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	allocator   gpucore.Allocator
	backendName string
	compiler    lighting.ShaderCompiler
	settings    Settings
	groups      *shadow.GroupManager
	layers      []lighting.SortingLayer
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		settings: DefaultSettings(),
	}
}

// WithAllocator sets the allocator transient textures are created with.
// It takes precedence over WithBackend.
func WithAllocator(a gpucore.Allocator) RendererOption {
	return func(o *rendererOptions) {
		o.allocator = a
	}
}

// WithBackend selects a registered allocator backend by name. An empty name
// selects the highest priority backend available.
func WithBackend(name string) RendererOption {
	return func(o *rendererOptions) {
		o.backendName = name
	}
}

// WithShaderCompiler sets the compiler used for light shader variants.
// Without one, materials carry variant masks only and the host supplies the
// programs.
func WithShaderCompiler(c lighting.ShaderCompiler) RendererOption {
	return func(o *rendererOptions) {
		o.compiler = c
	}
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) RendererOption {
	return func(o *rendererOptions) {
		o.settings = s
	}
}

// WithShadowGroups sets the shadow caster groups lights are shadowed by.
func WithShadowGroups(g *shadow.GroupManager) RendererOption {
	return func(o *rendererOptions) {
		o.groups = g
	}
}

// WithSortingLayers sets the sorting layers. Order of the slice does not
// matter; layers are drawn by Value.
func WithSortingLayers(layers ...lighting.SortingLayer) RendererOption {
	return func(o *rendererOptions) {
		o.layers = layers
	}
}
