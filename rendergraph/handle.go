package rendergraph

import "fmt"

// ResourceType distinguishes the resource tables of a registry.
type ResourceType uint8

// Resource types.
const (
	ResourceTypeTexture ResourceType = iota
	ResourceTypeBuffer

	resourceTypeCount
)

// String returns the resource type name.
func (t ResourceType) String() string {
	switch t {
	case ResourceTypeTexture:
		return "texture"
	case ResourceTypeBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

const (
	indexMask    uint32 = 0xFFFF
	validityMask uint32 = 0xFFFF0000

	// sharedValidity is reserved for resources that outlive a frame and is
	// never handed out as a per-frame generation.
	sharedValidity uint32 = 0x7FFF << 16

	// maxResources is the number of slots addressable by a handle index.
	maxResources = int(indexMask) + 1
)

// ResourceHandle identifies a resource slot for one frame.
//
// The low 16 bits hold the slot index and the high 16 bits hold the
// validity generation of the frame that minted it. The zero value is never
// valid.
type ResourceHandle struct {
	value uint32
	typ   ResourceType
}

func newHandle(index int, typ ResourceType, generation uint32) ResourceHandle {
	return ResourceHandle{value: uint32(index)&indexMask | generation, typ: typ}
}

// Index returns the slot index.
func (h ResourceHandle) Index() int { return int(h.value & indexMask) }

// Type returns the resource type.
func (h ResourceHandle) Type() ResourceType { return h.typ }

// IsZero reports whether h is the zero handle.
func (h ResourceHandle) IsZero() bool { return h.value == 0 }

func (h ResourceHandle) generation() uint32 { return h.value & validityMask }

// String returns a debug representation.
func (h ResourceHandle) String() string {
	return fmt.Sprintf("%s#%d@%04x", h.typ, h.Index(), h.generation()>>16)
}

// generation tracks the validity bits of the current and previous frame.
type generation struct {
	current  uint32
	previous uint32
}

// advance derives the validity bits for a new frame from its execution
// count. The mix spreads consecutive counts across the 16-bit space; the
// fallback path guarantees the result is never 0, never the shared value
// and never equal to the previous frame.
func (g *generation) advance(executionCount int) {
	g.previous = g.current
	e := uint32(executionCount)
	next := ((e >> 16) ^ (e&0xFFFF)*58546883) << 16
	if next == 0 || next == sharedValidity || next == g.previous {
		v := uint32(1)
		for v<<16 == g.previous || v<<16 == sharedValidity {
			v++
		}
		next = v << 16
	}
	g.current = next
}
