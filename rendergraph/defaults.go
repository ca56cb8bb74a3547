package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
)

// defaultResources holds the placeholder textures bound in place of
// resources that need a fallback.
type defaultResources struct {
	black gpucore.Texture
	white gpucore.Texture
}

func (d *defaultResources) cleanup(a gpucore.Allocator) {
	if d.black != nil {
		a.DestroyTexture(d.black)
		d.black = nil
	}
	if d.white != nil {
		a.DestroyTexture(d.white)
		d.white = nil
	}
}

func (r *Registry) defaultTexture(cmd gpucore.CommandBuffer, slot *gpucore.Texture, label string, color gputypes.Color) (ResourceHandle, error) {
	if *slot == nil {
		tex, err := r.allocator.CreateTexture(&gputypes.TextureDescriptor{
			Label:         label,
			Size:          gputypes.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			return ResourceHandle{}, fmt.Errorf("rendergraph: allocate %s: %w", label, err)
		}
		if cmd != nil {
			clearTexture(cmd, tex, color)
		}
		*slot = tex
	}
	return r.ImportTexture(*slot)
}

// ImportBlackTexture imports the shared 1x1 black texture, allocating and
// clearing it on first use. It is the placeholder for textures that need a
// fallback.
func (r *Registry) ImportBlackTexture(cmd gpucore.CommandBuffer) (ResourceHandle, error) {
	return r.defaultTexture(cmd, &r.defaults.black, "RenderGraphBlackTexture", gputypes.ColorBlack)
}

// ImportWhiteTexture imports the shared 1x1 white texture.
func (r *Registry) ImportWhiteTexture(cmd gpucore.CommandBuffer) (ResourceHandle, error) {
	return r.defaultTexture(cmd, &r.defaults.white, "RenderGraphWhiteTexture", gputypes.ColorWhite)
}
