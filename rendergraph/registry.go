package rendergraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// DefaultPurgeInterval is how many frames pass between automatic pool purges.
const DefaultPurgeInterval = 4

// Config controls registry debugging and pool retention.
type Config struct {
	// ClearOnCreate clears every realized texture, using magenta when the
	// descriptor did not ask for a clear itself.
	ClearOnCreate bool

	// ClearOnRelease clears textures to magenta before returning them to
	// the pool, exposing passes that read released memory.
	ClearOnRelease bool

	// StaleLifetime is the number of frames an idle pooled resource survives.
	StaleLifetime int

	// PurgeInterval is the number of frames between automatic purges.
	PurgeInterval int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		StaleLifetime: DefaultStaleLifetime,
		PurgeInterval: DefaultPurgeInterval,
	}
}

// Stats reports registry activity.
type Stats struct {
	// Textures and Buffers count slots declared in the current frame.
	Textures int
	Buffers  int

	// TexturesAllocated and BuffersAllocated count allocator calls over the
	// registry's lifetime.
	TexturesAllocated int
	BuffersAllocated  int

	// PoolHits counts realizations served from a pool.
	PoolHits int

	// Purged counts resources destroyed by purges.
	Purged int

	// PooledTextures and PooledBuffers count idle pooled resources.
	PooledTextures int
	PooledBuffers  int
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("RenderGraph[%d textures, %d buffers, %d/%d allocated, %d pool hits, %d purged, %d/%d pooled]",
		s.Textures, s.Buffers, s.TexturesAllocated, s.BuffersAllocated,
		s.PoolHits, s.Purged, s.PooledTextures, s.PooledBuffers)
}

// resourceState is the bookkeeping shared by every resource slot.
type resourceState struct {
	imported           bool
	hash               uint64
	transientPassIndex int
	writeCount         uint32
	requestFallback    bool
}

type textureEntry struct {
	resourceState
	desc    TextureDesc
	texture gpucore.Texture
}

func (e *textureEntry) name() string {
	if e.desc.Name != "" {
		return e.desc.Name
	}
	if e.texture != nil {
		return e.texture.Label()
	}
	return "<unnamed texture>"
}

type bufferEntry struct {
	resourceState
	desc   BufferDesc
	buffer gpucore.Buffer
}

func (e *bufferEntry) name() string {
	if e.desc.Name != "" {
		return e.desc.Name
	}
	if e.buffer != nil {
		return e.buffer.Label()
	}
	return "<unnamed buffer>"
}

// Registry is the frame-scoped table of textures and buffers declared by
// render passes.
//
// A Registry is owned by one renderer and used from a single goroutine.
// Unlike a process-wide table, each Registry has its own generation so
// handles from one renderer never validate against another.
type Registry struct {
	allocator gpucore.Allocator
	cfg       Config

	gen        generation
	frameIndex int
	rendering  bool

	textures []textureEntry
	buffers  []bufferEntry

	texturePool *resourcePool[gpucore.Texture]
	bufferPool  *resourcePool[gpucore.Buffer]

	// Monotonic counters for debug names.
	textureSerial int
	bufferSerial  int

	framesSincePurge int
	defaults         defaultResources
	stats            Stats
}

// NewRegistry creates a registry that allocates through allocator.
func NewRegistry(allocator gpucore.Allocator, cfg Config) *Registry {
	if cfg.StaleLifetime <= 0 {
		cfg.StaleLifetime = DefaultStaleLifetime
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = DefaultPurgeInterval
	}
	return &Registry{
		allocator:   allocator,
		cfg:         cfg,
		texturePool: newResourcePool("texture", cfg.StaleLifetime, allocator.DestroyTexture),
		bufferPool:  newResourcePool("buffer", cfg.StaleLifetime, allocator.DestroyBuffer),
	}
}

// BeginRender opens a frame. executionCount seeds the handle generation and
// frameIndex stamps pooled resources for purging.
func (r *Registry) BeginRender(executionCount, frameIndex int) error {
	if r.rendering {
		return ErrAlreadyRendering
	}
	r.gen.advance(executionCount)
	r.frameIndex = frameIndex
	r.rendering = true
	return nil
}

// FrameIndex returns the index passed to the last BeginRender.
func (r *Registry) FrameIndex() int { return r.frameIndex }

// Rendering reports whether a frame is open.
func (r *Registry) Rendering() bool { return r.rendering }

// ImportTexture wraps an externally owned texture. The registry never
// realizes, releases or destroys it.
func (r *Registry) ImportTexture(tex gpucore.Texture) (ResourceHandle, error) {
	if !r.rendering {
		return ResourceHandle{}, ErrNotRendering
	}
	if tex == nil {
		return ResourceHandle{}, fmt.Errorf("%w: cannot import a nil texture", ErrInvalidDescriptor)
	}
	if len(r.textures) >= maxResources {
		return ResourceHandle{}, fmt.Errorf("%w: more than %d textures", ErrHandleOutOfRange, maxResources)
	}
	r.textures = append(r.textures, textureEntry{
		resourceState: resourceState{imported: true, transientPassIndex: -1},
		desc: TextureDesc{
			Name:   tex.Label(),
			Width:  tex.Width(),
			Height: tex.Height(),
			Format: tex.Format(),
		},
		texture: tex,
	})
	return newHandle(len(r.textures)-1, ResourceTypeTexture, r.gen.current), nil
}

// ImportBuffer wraps an externally owned buffer.
func (r *Registry) ImportBuffer(buf gpucore.Buffer) (ResourceHandle, error) {
	if !r.rendering {
		return ResourceHandle{}, ErrNotRendering
	}
	if buf == nil {
		return ResourceHandle{}, fmt.Errorf("%w: cannot import a nil buffer", ErrInvalidDescriptor)
	}
	if len(r.buffers) >= maxResources {
		return ResourceHandle{}, fmt.Errorf("%w: more than %d buffers", ErrHandleOutOfRange, maxResources)
	}
	r.buffers = append(r.buffers, bufferEntry{
		resourceState: resourceState{imported: true, transientPassIndex: -1},
		desc:          BufferDesc{Name: buf.Label(), Count: int(buf.Size()), Stride: 1},
		buffer:        buf,
	})
	return newHandle(len(r.buffers)-1, ResourceTypeBuffer, r.gen.current), nil
}

// CreateTexture declares a transient texture. No memory is allocated until
// RealizeTexture. transientPassIndex is the pass that owns the texture, or
// -1 when it spans several passes.
func (r *Registry) CreateTexture(desc TextureDesc, transientPassIndex int) (ResourceHandle, error) {
	if !r.rendering {
		return ResourceHandle{}, ErrNotRendering
	}
	if err := desc.validate(); err != nil {
		return ResourceHandle{}, err
	}
	if len(r.textures) >= maxResources {
		return ResourceHandle{}, fmt.Errorf("%w: more than %d textures", ErrHandleOutOfRange, maxResources)
	}
	desc = desc.withDefaults()
	r.textures = append(r.textures, textureEntry{
		resourceState: resourceState{
			hash:               desc.Hash(),
			transientPassIndex: transientPassIndex,
			requestFallback:    desc.FallbackToBlack,
		},
		desc: desc,
	})
	return newHandle(len(r.textures)-1, ResourceTypeTexture, r.gen.current), nil
}

// CreateBuffer declares a transient buffer.
func (r *Registry) CreateBuffer(desc BufferDesc, transientPassIndex int) (ResourceHandle, error) {
	if !r.rendering {
		return ResourceHandle{}, ErrNotRendering
	}
	if err := desc.validate(); err != nil {
		return ResourceHandle{}, err
	}
	if len(r.buffers) >= maxResources {
		return ResourceHandle{}, fmt.Errorf("%w: more than %d buffers", ErrHandleOutOfRange, maxResources)
	}
	r.buffers = append(r.buffers, bufferEntry{
		resourceState: resourceState{hash: desc.Hash(), transientPassIndex: transientPassIndex},
		desc:          desc,
	})
	return newHandle(len(r.buffers)-1, ResourceTypeBuffer, r.gen.current), nil
}

// IsValid reports whether h was minted by this registry in the current frame.
func (r *Registry) IsValid(h ResourceHandle) bool {
	g := h.generation()
	return g != 0 && g == r.gen.current
}

// lookup validates h and returns its slot index.
func (r *Registry) lookup(h ResourceHandle, typ ResourceType) (int, error) {
	if h.typ != typ || !r.IsValid(h) {
		return 0, fmt.Errorf("%w: %v used as %s in frame %d", ErrInvalidHandle, h, typ, r.frameIndex)
	}
	n := len(r.textures)
	if typ == ResourceTypeBuffer {
		n = len(r.buffers)
	}
	if idx := h.Index(); idx < n {
		return idx, nil
	}
	return 0, fmt.Errorf("%w: %v, %d %ss declared", ErrHandleOutOfRange, h, n, typ)
}

func (r *Registry) state(h ResourceHandle) (*resourceState, error) {
	idx, err := r.lookup(h, h.typ)
	if err != nil {
		return nil, err
	}
	if h.typ == ResourceTypeBuffer {
		return &r.buffers[idx].resourceState, nil
	}
	return &r.textures[idx].resourceState, nil
}

// IsCreated reports whether h currently has backing memory.
func (r *Registry) IsCreated(h ResourceHandle) bool {
	idx, err := r.lookup(h, h.typ)
	if err != nil {
		return false
	}
	if h.typ == ResourceTypeBuffer {
		return r.buffers[idx].buffer != nil
	}
	return r.textures[idx].texture != nil
}

// IsImported reports whether h wraps an externally owned resource.
func (r *Registry) IsImported(h ResourceHandle) bool {
	s, err := r.state(h)
	return err == nil && s.imported
}

// NeedsFallback reports whether h asked for a fallback and was never
// written, in which case readers bind a placeholder instead.
func (r *Registry) NeedsFallback(h ResourceHandle) bool {
	s, err := r.state(h)
	return err == nil && s.requestFallback && s.writeCount == 0
}

// IncrementWriteCount records a pass writing h.
func (r *Registry) IncrementWriteCount(h ResourceHandle) error {
	s, err := r.state(h)
	if err != nil {
		return err
	}
	s.writeCount++
	return nil
}

// WriteCount returns how many passes wrote h this frame.
func (r *Registry) WriteCount(h ResourceHandle) uint32 {
	s, err := r.state(h)
	if err != nil {
		return 0
	}
	return s.writeCount
}

// TransientPassIndex returns the pass index h was created for.
func (r *Registry) TransientPassIndex(h ResourceHandle) int {
	s, err := r.state(h)
	if err != nil {
		return -1
	}
	return s.transientPassIndex
}

// Texture returns the backing texture of h, or nil if it is not realized.
func (r *Registry) Texture(h ResourceHandle) (gpucore.Texture, error) {
	idx, err := r.lookup(h, ResourceTypeTexture)
	if err != nil {
		return nil, err
	}
	return r.textures[idx].texture, nil
}

// TextureDesc returns the descriptor h was declared with.
func (r *Registry) TextureDesc(h ResourceHandle) (TextureDesc, error) {
	idx, err := r.lookup(h, ResourceTypeTexture)
	if err != nil {
		return TextureDesc{}, err
	}
	return r.textures[idx].desc, nil
}

// Buffer returns the backing buffer of h, or nil if it is not realized.
func (r *Registry) Buffer(h ResourceHandle) (gpucore.Buffer, error) {
	idx, err := r.lookup(h, ResourceTypeBuffer)
	if err != nil {
		return nil, err
	}
	return r.buffers[idx].buffer, nil
}

// RealizeTexture gives h backing memory, reusing a pooled texture with an
// identical descriptor hash when one is idle. Clears and fast-memory moves
// are recorded on cmd.
func (r *Registry) RealizeTexture(cmd gpucore.CommandBuffer, h ResourceHandle) error {
	idx, err := r.lookup(h, ResourceTypeTexture)
	if err != nil {
		return err
	}
	e := &r.textures[idx]
	if e.imported {
		return fmt.Errorf("%w: cannot realize %s", ErrImportedResource, e.name())
	}
	if e.texture != nil {
		return fmt.Errorf("%w: texture %s was realized twice; it is probably declared for writing more than once in the same pass",
			ErrResourceAlreadyCreated, e.name())
	}

	tex, ok := r.texturePool.tryGet(e.hash)
	if ok {
		r.stats.PoolHits++
	} else {
		r.textureSerial++
		label := fmt.Sprintf("RenderGraphTexture_%d", r.textureSerial)
		tex, err = r.allocator.CreateTexture(e.desc.descriptor(label))
		if err != nil {
			return fmt.Errorf("rendergraph: allocate texture %s: %w", e.name(), err)
		}
		r.stats.TexturesAllocated++
		slogger().Debug("rendergraph: allocated texture",
			"name", e.desc.Name, "label", label,
			"width", e.desc.Width, "height", e.desc.Height, "format", e.desc.Format)
	}
	e.texture = tex
	r.texturePool.registerAllocation(tex, e.hash, e.name())

	debugClear := r.cfg.ClearOnCreate && !e.desc.ClearBuffer
	if (e.desc.ClearBuffer || debugClear) && cmd != nil {
		color := e.desc.ClearColor
		if debugClear {
			color = gputypes.ColorMagenta
		}
		clearTexture(cmd, tex, color)
	}

	if fm := e.desc.FastMemory; fm.InFastMemory && cmd != nil {
		cmd.SwitchIntoFastMemory(tex, fm.Flags, fm.ResidencyFraction, false)
	}
	return nil
}

// ReleaseTexture returns the backing texture of h to the pool.
func (r *Registry) ReleaseTexture(cmd gpucore.CommandBuffer, h ResourceHandle) error {
	idx, err := r.lookup(h, ResourceTypeTexture)
	if err != nil {
		return err
	}
	e := &r.textures[idx]
	if e.imported {
		return fmt.Errorf("%w: cannot release %s", ErrImportedResource, e.name())
	}
	if e.texture == nil {
		return fmt.Errorf("%w: tried to release texture %s; check that at least one pass writes to it",
			ErrResourceNeverCreated, e.name())
	}
	if r.cfg.ClearOnRelease && cmd != nil {
		clearTexture(cmd, e.texture, gputypes.ColorMagenta)
	}
	r.texturePool.unregisterAllocation(e.texture)
	r.texturePool.release(e.hash, e.texture, r.frameIndex)
	e.texture = nil
	return nil
}

// RealizeBuffer gives h backing memory.
func (r *Registry) RealizeBuffer(h ResourceHandle) error {
	idx, err := r.lookup(h, ResourceTypeBuffer)
	if err != nil {
		return err
	}
	e := &r.buffers[idx]
	if e.imported {
		return fmt.Errorf("%w: cannot realize %s", ErrImportedResource, e.name())
	}
	if e.buffer != nil {
		return fmt.Errorf("%w: buffer %s was realized twice", ErrResourceAlreadyCreated, e.name())
	}

	buf, ok := r.bufferPool.tryGet(e.hash)
	if ok {
		r.stats.PoolHits++
	} else {
		r.bufferSerial++
		label := fmt.Sprintf("RenderGraphBuffer_%d", r.bufferSerial)
		buf, err = r.allocator.CreateBuffer(e.desc.descriptor(label))
		if err != nil {
			return fmt.Errorf("rendergraph: allocate buffer %s: %w", e.name(), err)
		}
		r.stats.BuffersAllocated++
		slogger().Debug("rendergraph: allocated buffer", "name", e.desc.Name, "label", label, "size", e.desc.Size())
	}
	e.buffer = buf
	r.bufferPool.registerAllocation(buf, e.hash, e.name())
	return nil
}

// ReleaseBuffer returns the backing buffer of h to the pool.
func (r *Registry) ReleaseBuffer(h ResourceHandle) error {
	idx, err := r.lookup(h, ResourceTypeBuffer)
	if err != nil {
		return err
	}
	e := &r.buffers[idx]
	if e.imported {
		return fmt.Errorf("%w: cannot release %s", ErrImportedResource, e.name())
	}
	if e.buffer == nil {
		return fmt.Errorf("%w: tried to release buffer %s", ErrResourceNeverCreated, e.name())
	}
	r.bufferPool.unregisterAllocation(e.buffer)
	r.bufferPool.release(e.hash, e.buffer, r.frameIndex)
	e.buffer = nil
	return nil
}

// Clear resets the frame's resource table. Resources still checked out are
// returned to their pools; unless onException is set, that is reported as
// ErrResourceLeak.
func (r *Registry) Clear(onException bool) error {
	err := errors.Join(
		r.texturePool.checkFrameAllocations(onException, r.frameIndex),
		r.bufferPool.checkFrameAllocations(onException, r.frameIndex),
	)
	clear(r.textures)
	r.textures = r.textures[:0]
	clear(r.buffers)
	r.buffers = r.buffers[:0]
	return err
}

// EndRender closes the frame opened by BeginRender. It clears the resource
// table and purges the pools every PurgeInterval frames.
func (r *Registry) EndRender(onException bool) error {
	err := r.Clear(onException)
	r.rendering = false

	r.framesSincePurge++
	if r.framesSincePurge >= r.cfg.PurgeInterval {
		r.PurgeUnused()
	}
	return err
}

// PurgeUnused destroys pooled resources idle for longer than the stale
// lifetime and returns how many were destroyed.
func (r *Registry) PurgeUnused() int {
	r.framesSincePurge = 0
	n := r.texturePool.purge(r.frameIndex) + r.bufferPool.purge(r.frameIndex)
	if n > 0 {
		r.stats.Purged += n
		slogger().Debug("rendergraph: purged unused resources", "count", n, "frame", r.frameIndex)
	}
	return n
}

// Cleanup destroys every pooled resource and the default resources.
func (r *Registry) Cleanup() {
	r.texturePool.cleanup()
	r.bufferPool.cleanup()
	r.defaults.cleanup(r.allocator)
	r.textures = nil
	r.buffers = nil
}

// Stats returns a snapshot of registry activity.
func (r *Registry) Stats() Stats {
	s := r.stats
	s.Textures = len(r.textures)
	s.Buffers = len(r.buffers)
	s.PooledTextures = r.texturePool.len()
	s.PooledBuffers = r.bufferPool.len()
	return s
}

func clearTexture(cmd gpucore.CommandBuffer, tex gpucore.Texture, color gputypes.Color) {
	if tex.Format().IsDepthStencil() {
		cmd.SetRenderTarget(gpucore.RenderTarget{Depth: tex})
		cmd.ClearRenderTarget(gpucore.ClearDepth|gpucore.ClearStencil, color)
		return
	}
	cmd.SetRenderTarget(gpucore.RenderTarget{Color: tex})
	cmd.ClearRenderTarget(gpucore.ClearColor, color)
}
