package backend

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

func init() {
	Register(Software, func() gpucore.Allocator { return NewSoftwareAllocator() })
}

// SoftwareTexture is a texture stored in host memory.
type SoftwareTexture struct {
	label  string
	width  int
	height int
	layers int
	format gputypes.TextureFormat
	usage  gputypes.TextureUsage
	pixels []byte
}

func (t *SoftwareTexture) Width() int                     { return t.width }
func (t *SoftwareTexture) Height() int                    { return t.height }
func (t *SoftwareTexture) Label() string                  { return t.label }
func (t *SoftwareTexture) Format() gputypes.TextureFormat { return t.format }
func (t *SoftwareTexture) Usage() gputypes.TextureUsage   { return t.usage }
func (t *SoftwareTexture) Pixels() []byte                 { return t.pixels }
func (t *SoftwareTexture) String() string                 { return t.label }

// SoftwareBuffer is a buffer stored in host memory.
type SoftwareBuffer struct {
	label string
	data  []byte
}

func (b *SoftwareBuffer) Label() string { return b.label }
func (b *SoftwareBuffer) Size() uint64  { return uint64(len(b.data)) }
func (b *SoftwareBuffer) Bytes() []byte { return b.data }

// SoftwareAllocator allocates textures and buffers as byte slices. It is
// the fallback when no GPU device is registered and the allocator used by
// tests and headless tools.
type SoftwareAllocator struct {
	liveTextures int
	liveBuffers  int
	liveBytes    uint64
}

// NewSoftwareAllocator creates an empty software allocator.
func NewSoftwareAllocator() *SoftwareAllocator {
	return &SoftwareAllocator{}
}

// CreateTexture allocates zeroed pixel storage for desc.
func (a *SoftwareAllocator) CreateTexture(desc *gputypes.TextureDescriptor) (gpucore.Texture, error) {
	if desc == nil || desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("backend: software texture needs a non-empty size")
	}
	layers := max(int(desc.Size.DepthOrArrayLayers), 1)
	size := int(desc.Size.Width) * int(desc.Size.Height) * layers * BytesPerPixel(desc.Format)
	t := &SoftwareTexture{
		label:  desc.Label,
		width:  int(desc.Size.Width),
		height: int(desc.Size.Height),
		layers: layers,
		format: desc.Format,
		usage:  desc.Usage,
		pixels: make([]byte, size),
	}
	a.liveTextures++
	a.liveBytes += uint64(size)
	return t, nil
}

// DestroyTexture releases a texture created by this allocator.
func (a *SoftwareAllocator) DestroyTexture(tex gpucore.Texture) {
	t, ok := tex.(*SoftwareTexture)
	if !ok || t.pixels == nil {
		return
	}
	a.liveTextures--
	a.liveBytes -= uint64(len(t.pixels))
	t.pixels = nil
}

// CreateBuffer allocates zeroed buffer storage.
func (a *SoftwareAllocator) CreateBuffer(desc *gputypes.BufferDescriptor) (gpucore.Buffer, error) {
	if desc == nil || desc.Size == 0 {
		return nil, fmt.Errorf("backend: software buffer needs a non-zero size")
	}
	b := &SoftwareBuffer{label: desc.Label, data: make([]byte, desc.Size)}
	a.liveBuffers++
	a.liveBytes += desc.Size
	return b, nil
}

// DestroyBuffer releases a buffer created by this allocator.
func (a *SoftwareAllocator) DestroyBuffer(buf gpucore.Buffer) {
	b, ok := buf.(*SoftwareBuffer)
	if !ok || b.data == nil {
		return
	}
	a.liveBuffers--
	a.liveBytes -= uint64(len(b.data))
	b.data = nil
}

// LiveTextures returns the number of textures not yet destroyed.
func (a *SoftwareAllocator) LiveTextures() int { return a.liveTextures }

// LiveBuffers returns the number of buffers not yet destroyed.
func (a *SoftwareAllocator) LiveBuffers() int { return a.liveBuffers }

// LiveBytes returns the bytes held by live resources.
func (a *SoftwareAllocator) LiveBytes() uint64 { return a.liveBytes }

// BytesPerPixel returns the storage size of one texel of f. Formats the
// software allocator does not special-case are assumed to be 4 bytes.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatR16Float:
		return 2
	case gputypes.TextureFormatRGBA16Float:
		return 8
	default:
		return 4
	}
}
