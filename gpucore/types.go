package gpucore

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Texture is a backing texture owned by an Allocator or imported from the
// host. Implementations must be comparable (pointer types) because pools
// track textures by identity.
type Texture interface {
	gpucontext.Texture

	// Label returns the debug name given at creation.
	Label() string

	// Format returns the pixel format.
	Format() gputypes.TextureFormat
}

// Buffer is a backing GPU buffer.
type Buffer interface {
	// Label returns the debug name given at creation.
	Label() string

	// Size returns the buffer size in bytes.
	Size() uint64
}

// Allocator creates and destroys backing resources.
//
// Allocators are used from the single rendering goroutine and need not be
// safe for concurrent use.
type Allocator interface {
	CreateTexture(desc *gputypes.TextureDescriptor) (Texture, error)
	DestroyTexture(tex Texture)
	CreateBuffer(desc *gputypes.BufferDescriptor) (Buffer, error)
	DestroyBuffer(buf Buffer)
}

// RenderTarget is a color attachment with an optional depth-stencil
// attachment.
type RenderTarget struct {
	Color Texture
	Depth Texture
}

// ClearFlags selects which attachments ClearRenderTarget clears.
type ClearFlags uint8

// Clear flags.
const (
	ClearNone    ClearFlags = 0
	ClearColor   ClearFlags = 1 << 0
	ClearDepth   ClearFlags = 1 << 1
	ClearStencil ClearFlags = 1 << 2
	ClearAll                = ClearColor | ClearDepth | ClearStencil
)

// Has reports whether all bits of flag are set.
func (f ClearFlags) Has(flag ClearFlags) bool { return f&flag == flag }

// FastMemoryFlags controls how a texture spills when only part of it fits in
// fast (tile or scratch) memory.
type FastMemoryFlags uint8

// Fast memory flags.
const (
	FastMemoryNone FastMemoryFlags = iota
	FastMemorySpillTop
	FastMemorySpillBottom
)

// ShaderPass selects which pass of the renderers' shaders DrawRenderers uses.
type ShaderPass uint8

// Shader passes.
const (
	PassUniversal2D ShaderPass = iota
	PassNormalsRendering
	PassUnlit
)

var shaderPassNames = [...]string{
	PassUniversal2D:      "Universal2D",
	PassNormalsRendering: "NormalsRendering",
	PassUnlit:            "Unlit",
}

// String returns the shader pass tag.
func (p ShaderPass) String() string {
	if int(p) < len(shaderPassNames) {
		return shaderPassNames[p]
	}
	return "Unknown"
}

// LayerRange is an inclusive range of sorting layer values.
type LayerRange struct {
	Lower int32
	Upper int32
}

// Contains reports whether value lies inside the range.
func (r LayerRange) Contains(value int32) bool {
	return value >= r.Lower && value <= r.Upper
}

// DrawSettings describes a DrawRenderers call.
type DrawSettings struct {
	Camera *Camera
	Pass   ShaderPass
	Layers LayerRange
}

// Renderer is a host-owned drawable (sprite, tilemap, mesh renderer).
type Renderer interface {
	Name() string
}

// ShaderModule is a compiled shader variant.
type ShaderModule struct {
	Name string

	// Variant is the feature mask the module was compiled with.
	Variant uint32

	// Code holds SPIR-V words. It may be empty when the host supplies the
	// program itself and only the variant mask is needed.
	Code []uint32
}

// Material couples a shader variant with its fixed-function state.
type Material struct {
	Name       string
	Shader     *ShaderModule
	Blend      gputypes.BlendState
	Stencil    gputypes.StencilFaceState
	StencilRef uint32
	WriteMask  gputypes.ColorWriteMask
}
