package recording

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// Target commands
	CmdSetRenderTarget   CommandType = iota // Bind color/depth attachments
	CmdClearRenderTarget                    // Clear bound attachments

	// State commands
	CmdEnableKeyword    // Enable a global shader keyword
	CmdDisableKeyword   // Disable a global shader keyword
	CmdSetGlobalTexture // Bind a global texture
	CmdSetGlobalFloat   // Set a global float
	CmdSetGlobalColor   // Set a global color
	CmdSetGlobalVector  // Set a global vector

	// Drawing commands
	CmdDrawMesh      // Draw a mesh with a material
	CmdDrawRenderer  // Draw one renderer with an override material
	CmdDrawRenderers // Draw host renderers for a layer range

	// Memory commands
	CmdSwitchIntoFastMemory // Move a texture into fast memory

	commandTypeCount
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdSetRenderTarget:      "SetRenderTarget",
	CmdClearRenderTarget:    "ClearRenderTarget",
	CmdEnableKeyword:        "EnableKeyword",
	CmdDisableKeyword:       "DisableKeyword",
	CmdSetGlobalTexture:     "SetGlobalTexture",
	CmdSetGlobalFloat:       "SetGlobalFloat",
	CmdSetGlobalColor:       "SetGlobalColor",
	CmdSetGlobalVector:      "SetGlobalVector",
	CmdDrawMesh:             "DrawMesh",
	CmdDrawRenderer:         "DrawRenderer",
	CmdDrawRenderers:        "DrawRenderers",
	CmdSwitchIntoFastMemory: "SwitchIntoFastMemory",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if c < commandTypeCount {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// SetRenderTargetCommand binds attachments for subsequent draws.
type SetRenderTargetCommand struct {
	Target gpucore.RenderTarget
}

// ClearRenderTargetCommand clears the bound attachments.
type ClearRenderTargetCommand struct {
	Flags gpucore.ClearFlags
	Color gputypes.Color
}

// EnableKeywordCommand enables a global keyword.
type EnableKeywordCommand struct {
	Keyword gpucore.Keyword
}

// DisableKeywordCommand disables a global keyword.
type DisableKeywordCommand struct {
	Keyword gpucore.Keyword
}

// SetGlobalTextureCommand binds a texture to a global slot.
type SetGlobalTextureCommand struct {
	Slot    gpucore.TextureSlot
	Texture gpucore.Texture
}

// SetGlobalFloatCommand sets a global float property.
type SetGlobalFloatCommand struct {
	Property gpucore.Property
	Value    float32
}

// SetGlobalColorCommand sets a global color property.
type SetGlobalColorCommand struct {
	Property gpucore.Property
	Color    gputypes.Color
}

// SetGlobalVectorCommand sets a global vector property.
type SetGlobalVectorCommand struct {
	Property gpucore.Property
	Vector   mgl32.Vec4
}

// DrawMeshCommand draws a mesh.
type DrawMeshCommand struct {
	Mesh      *gpucore.Mesh
	Transform mgl32.Mat4
	Material  *gpucore.Material
}

// DrawRendererCommand draws one renderer with an override material.
type DrawRendererCommand struct {
	Renderer gpucore.Renderer
	Material *gpucore.Material
}

// DrawRenderersCommand draws the host's renderers.
type DrawRenderersCommand struct {
	Settings gpucore.DrawSettings
}

// SwitchIntoFastMemoryCommand moves part of a texture into fast memory.
type SwitchIntoFastMemoryCommand struct {
	Texture      gpucore.Texture
	Flags        gpucore.FastMemoryFlags
	Residency    float32
	CopyContents bool
}

func (SetRenderTargetCommand) Type() CommandType      { return CmdSetRenderTarget }
func (ClearRenderTargetCommand) Type() CommandType    { return CmdClearRenderTarget }
func (EnableKeywordCommand) Type() CommandType        { return CmdEnableKeyword }
func (DisableKeywordCommand) Type() CommandType       { return CmdDisableKeyword }
func (SetGlobalTextureCommand) Type() CommandType     { return CmdSetGlobalTexture }
func (SetGlobalFloatCommand) Type() CommandType       { return CmdSetGlobalFloat }
func (SetGlobalColorCommand) Type() CommandType       { return CmdSetGlobalColor }
func (SetGlobalVectorCommand) Type() CommandType      { return CmdSetGlobalVector }
func (DrawMeshCommand) Type() CommandType             { return CmdDrawMesh }
func (DrawRendererCommand) Type() CommandType         { return CmdDrawRenderer }
func (DrawRenderersCommand) Type() CommandType        { return CmdDrawRenderers }
func (SwitchIntoFastMemoryCommand) Type() CommandType { return CmdSwitchIntoFastMemory }
