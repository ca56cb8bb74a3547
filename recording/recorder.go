package recording

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// Recorder captures CommandBuffer calls as commands. Use FinishRecording
// to obtain the Recording.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	commands []Command
	target   gpucore.RenderTarget
	keywords map[gpucore.Keyword]bool
}

var _ gpucore.CommandBuffer = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		commands: make([]Command, 0, 256),
		keywords: make(map[gpucore.Keyword]bool),
	}
}

// Reset discards recorded commands and state so the recorder can be reused
// for the next frame.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.target = gpucore.RenderTarget{}
	clear(r.keywords)
}

// Len returns the number of recorded commands.
func (r *Recorder) Len() int { return len(r.commands) }

// Target returns the currently bound render target.
func (r *Recorder) Target() gpucore.RenderTarget { return r.target }

// KeywordEnabled reports whether k is enabled at the end of the stream.
func (r *Recorder) KeywordEnabled(k gpucore.Keyword) bool { return r.keywords[k] }

// FinishRecording returns a Recording holding a copy of the commands
// recorded so far.
func (r *Recorder) FinishRecording() *Recording {
	cmds := make([]Command, len(r.commands))
	copy(cmds, r.commands)
	return &Recording{commands: cmds}
}

func (r *Recorder) add(c Command) { r.commands = append(r.commands, c) }

func (r *Recorder) SetRenderTarget(target gpucore.RenderTarget) {
	r.target = target
	r.add(SetRenderTargetCommand{Target: target})
}

func (r *Recorder) ClearRenderTarget(flags gpucore.ClearFlags, color gputypes.Color) {
	r.add(ClearRenderTargetCommand{Flags: flags, Color: color})
}

func (r *Recorder) EnableKeyword(k gpucore.Keyword) {
	r.keywords[k] = true
	r.add(EnableKeywordCommand{Keyword: k})
}

func (r *Recorder) DisableKeyword(k gpucore.Keyword) {
	delete(r.keywords, k)
	r.add(DisableKeywordCommand{Keyword: k})
}

func (r *Recorder) SetGlobalTexture(slot gpucore.TextureSlot, tex gpucore.Texture) {
	r.add(SetGlobalTextureCommand{Slot: slot, Texture: tex})
}

func (r *Recorder) SetGlobalFloat(p gpucore.Property, v float32) {
	r.add(SetGlobalFloatCommand{Property: p, Value: v})
}

func (r *Recorder) SetGlobalColor(p gpucore.Property, c gputypes.Color) {
	r.add(SetGlobalColorCommand{Property: p, Color: c})
}

func (r *Recorder) SetGlobalVector(p gpucore.Property, v mgl32.Vec4) {
	r.add(SetGlobalVectorCommand{Property: p, Vector: v})
}

func (r *Recorder) DrawMesh(mesh *gpucore.Mesh, transform mgl32.Mat4, material *gpucore.Material) {
	r.add(DrawMeshCommand{Mesh: mesh, Transform: transform, Material: material})
}

func (r *Recorder) DrawRenderer(renderer gpucore.Renderer, material *gpucore.Material) {
	r.add(DrawRendererCommand{Renderer: renderer, Material: material})
}

func (r *Recorder) DrawRenderers(settings gpucore.DrawSettings) {
	r.add(DrawRenderersCommand{Settings: settings})
}

func (r *Recorder) SwitchIntoFastMemory(tex gpucore.Texture, flags gpucore.FastMemoryFlags, residency float32, copyContents bool) {
	r.add(SwitchIntoFastMemoryCommand{Texture: tex, Flags: flags, Residency: residency, CopyContents: copyContents})
}

// Recording is an immutable list of recorded commands.
type Recording struct {
	commands []Command
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Count returns the number of commands of type t.
func (r *Recording) Count(t CommandType) int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// Filter returns the commands of type t in recording order.
func (r *Recording) Filter(t CommandType) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Type() == t {
			out = append(out, c)
		}
	}
	return out
}

// Histogram returns the number of commands per type.
func (r *Recording) Histogram() map[CommandType]int {
	h := make(map[CommandType]int)
	for _, c := range r.commands {
		h[c.Type()]++
	}
	return h
}

// Playback replays the recording onto cmd.
func (r *Recording) Playback(cmd gpucore.CommandBuffer) {
	for _, c := range r.commands {
		switch c := c.(type) {
		case SetRenderTargetCommand:
			cmd.SetRenderTarget(c.Target)
		case ClearRenderTargetCommand:
			cmd.ClearRenderTarget(c.Flags, c.Color)
		case EnableKeywordCommand:
			cmd.EnableKeyword(c.Keyword)
		case DisableKeywordCommand:
			cmd.DisableKeyword(c.Keyword)
		case SetGlobalTextureCommand:
			cmd.SetGlobalTexture(c.Slot, c.Texture)
		case SetGlobalFloatCommand:
			cmd.SetGlobalFloat(c.Property, c.Value)
		case SetGlobalColorCommand:
			cmd.SetGlobalColor(c.Property, c.Color)
		case SetGlobalVectorCommand:
			cmd.SetGlobalVector(c.Property, c.Vector)
		case DrawMeshCommand:
			cmd.DrawMesh(c.Mesh, c.Transform, c.Material)
		case DrawRendererCommand:
			cmd.DrawRenderer(c.Renderer, c.Material)
		case DrawRenderersCommand:
			cmd.DrawRenderers(c.Settings)
		case SwitchIntoFastMemoryCommand:
			cmd.SwitchIntoFastMemory(c.Texture, c.Flags, c.Residency, c.CopyContents)
		}
	}
}
