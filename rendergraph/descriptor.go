package rendergraph

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// FastMemoryDesc requests that part of a texture live in fast memory.
type FastMemoryDesc struct {
	InFastMemory bool
	Flags        gpucore.FastMemoryFlags

	// ResidencyFraction is the fraction of the texture, in [0,1], to place
	// in fast memory.
	ResidencyFraction float32
}

// TextureDesc describes a transient texture.
//
// Only the allocation-relevant fields participate in Hash. Name, clear
// settings and fallback policy may differ between requests that share a
// pooled texture.
type TextureDesc struct {
	Name        string
	Width       int
	Height      int
	Slices      int
	Format      gputypes.TextureFormat
	Dimension   gputypes.TextureDimension
	Usage       gputypes.TextureUsage
	MipCount    int
	SampleCount int

	ClearBuffer bool
	ClearColor  gputypes.Color

	// FallbackToBlack substitutes the black texture when the resource is
	// read without ever being written.
	FallbackToBlack bool

	FastMemory FastMemoryDesc
}

// withDefaults fills zero fields with single-slice, single-mip 2D defaults.
func (d TextureDesc) withDefaults() TextureDesc {
	if d.Slices <= 0 {
		d.Slices = 1
	}
	if d.MipCount <= 0 {
		d.MipCount = 1
	}
	if d.SampleCount <= 0 {
		d.SampleCount = 1
	}
	if d.Dimension == gputypes.TextureDimensionUndefined {
		d.Dimension = gputypes.TextureDimension2D
	}
	if d.Format == gputypes.TextureFormatUndefined {
		d.Format = gputypes.TextureFormatRGBA8Unorm
	}
	if d.Usage == gputypes.TextureUsageNone {
		d.Usage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding
	}
	return d
}

func (d TextureDesc) validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: texture %q has size %dx%d", ErrInvalidDescriptor, d.Name, d.Width, d.Height)
	}
	return nil
}

// Hash returns a key identifying textures that can stand in for each other.
func (d TextureDesc) Hash() uint64 {
	d = d.withDefaults()
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range [...]uint64{
		uint64(d.Width),
		uint64(d.Height),
		uint64(d.Slices),
		uint64(d.Format),
		uint64(d.Dimension),
		uint64(d.Usage),
		uint64(d.MipCount),
		uint64(d.SampleCount),
	} {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:]) // fnv.Write never returns an error
	}
	return h.Sum64()
}

// descriptor converts d into an allocator request.
func (d TextureDesc) descriptor(label string) *gputypes.TextureDescriptor {
	d = d.withDefaults()
	return &gputypes.TextureDescriptor{
		Label: label,
		Size: gputypes.Extent3D{
			Width:              uint32(d.Width),
			Height:             uint32(d.Height),
			DepthOrArrayLayers: uint32(d.Slices),
		},
		MipLevelCount: uint32(d.MipCount),
		SampleCount:   uint32(d.SampleCount),
		Dimension:     d.Dimension,
		Format:        d.Format,
		Usage:         d.Usage,
	}
}

// BufferDesc describes a transient buffer of Count elements of Stride bytes.
type BufferDesc struct {
	Name   string
	Count  int
	Stride int
	Usage  gputypes.BufferUsage
}

// Size returns the buffer size in bytes.
func (d BufferDesc) Size() uint64 { return uint64(d.Count) * uint64(d.Stride) }

func (d BufferDesc) validate() error {
	if d.Count <= 0 || d.Stride <= 0 {
		return fmt.Errorf("%w: buffer %q has %d elements of %d bytes", ErrInvalidDescriptor, d.Name, d.Count, d.Stride)
	}
	return nil
}

// Hash returns a key identifying buffers that can stand in for each other.
func (d BufferDesc) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range [...]uint64{uint64(d.Count), uint64(d.Stride), uint64(d.Usage)} {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func (d BufferDesc) descriptor(label string) *gputypes.BufferDescriptor {
	usage := d.Usage
	if usage == gputypes.BufferUsageNone {
		usage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	}
	return &gputypes.BufferDescriptor{
		Label: label,
		Size:  d.Size(),
		Usage: usage,
	}
}
