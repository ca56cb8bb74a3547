// Package native allocates render graph resources on a gogpu/wgpu HAL
// device.
package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/light2d/backend"
	"github.com/gogpu/light2d/gpucore"
)

// ErrNilDevice is returned when creating an allocator without a device.
var ErrNilDevice = errors.New("native: HAL device is nil")

// Texture is a HAL texture with the metadata the render graph needs.
type Texture struct {
	raw    hal.Texture
	label  string
	width  int
	height int
	format gputypes.TextureFormat
	usage  gputypes.TextureUsage
}

func (t *Texture) Width() int                     { return t.width }
func (t *Texture) Height() int                    { return t.height }
func (t *Texture) Label() string                  { return t.label }
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Usage returns the usage flags the texture was created with.
func (t *Texture) Usage() gputypes.TextureUsage { return t.usage }

// Raw returns the underlying HAL texture.
func (t *Texture) Raw() hal.Texture { return t.raw }

// Buffer is a HAL buffer with its size and label.
type Buffer struct {
	raw   hal.Buffer
	label string
	size  uint64
}

func (b *Buffer) Label() string { return b.label }
func (b *Buffer) Size() uint64  { return b.size }

// Raw returns the underlying HAL buffer.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Allocator creates textures and buffers on a HAL device.
//
// Allocator is not safe for concurrent use; the render graph drives it from
// the rendering goroutine.
type Allocator struct {
	device       hal.Device
	liveTextures int
	liveBuffers  int
}

// NewAllocator creates an allocator for device.
func NewAllocator(device hal.Device) (*Allocator, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &Allocator{device: device}, nil
}

// Register makes device available as the "native" allocator. Every
// backend.Get call returns the same allocator instance.
func Register(device hal.Device) error {
	a, err := NewAllocator(device)
	if err != nil {
		return err
	}
	backend.Register(backend.Native, func() gpucore.Allocator { return a })
	return nil
}

// CreateTexture creates a HAL texture from desc.
func (a *Allocator) CreateTexture(desc *gputypes.TextureDescriptor) (gpucore.Texture, error) {
	if desc == nil {
		return nil, fmt.Errorf("native: texture descriptor is nil")
	}
	raw, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: max(desc.Size.DepthOrArrayLayers, 1),
		},
		MipLevelCount: max(desc.MipLevelCount, 1),
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
		ViewFormats:   desc.ViewFormats,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	a.liveTextures++
	return &Texture{
		raw:    raw,
		label:  desc.Label,
		width:  int(desc.Size.Width),
		height: int(desc.Size.Height),
		format: desc.Format,
		usage:  desc.Usage,
	}, nil
}

// DestroyTexture destroys a texture created by this allocator.
func (a *Allocator) DestroyTexture(tex gpucore.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t.raw == nil {
		return
	}
	a.device.DestroyTexture(t.raw)
	t.raw = nil
	a.liveTextures--
}

// CreateBuffer creates a HAL buffer from desc.
func (a *Allocator) CreateBuffer(desc *gputypes.BufferDescriptor) (gpucore.Buffer, error) {
	if desc == nil {
		return nil, fmt.Errorf("native: buffer descriptor is nil")
	}
	raw, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage,
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer %q: %w", desc.Label, err)
	}
	a.liveBuffers++
	return &Buffer{raw: raw, label: desc.Label, size: desc.Size}, nil
}

// DestroyBuffer destroys a buffer created by this allocator.
func (a *Allocator) DestroyBuffer(buf gpucore.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok || b.raw == nil {
		return
	}
	a.device.DestroyBuffer(b.raw)
	b.raw = nil
	a.liveBuffers--
}

// LiveTextures returns the number of textures not yet destroyed.
func (a *Allocator) LiveTextures() int { return a.liveTextures }

// LiveBuffers returns the number of buffers not yet destroyed.
func (a *Allocator) LiveBuffers() int { return a.liveBuffers }
