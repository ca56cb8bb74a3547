package light2d

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
	"github.com/gogpu/light2d/lighting"
	"github.com/gogpu/light2d/rendergraph"
)

// ErrInvalidSettings is returned when settings fail validation or cannot be
// decoded.
var ErrInvalidSettings = errors.New("light2d: invalid settings")

// BlendStyleSettings is the file form of a light blend style.
type BlendStyleSettings struct {
	Name        string  `toml:"name"`
	Mode        string  `toml:"mode"`
	Mask        string  `toml:"mask"`
	RenderScale float32 `toml:"render_scale"` // 0 means 1

	// Multiplicative and Additive are only read for the Custom mode.
	Multiplicative float32 `toml:"multiplicative"`
	Additive       float32 `toml:"additive"`
}

// Settings holds the renderer configuration that is usually authored in a
// file rather than in code.
//
// A minimal settings file:
//
//	light_format = "RGBA16Float"
//	shadow_render_scale = 0.5
//
//	[[blend_styles]]
//	name = "Multiply"
//	mode = "Multiply"
//	render_scale = 0.5
type Settings struct {
	BlendStyles []BlendStyleSettings `toml:"blend_styles"`

	LightFormat       string  `toml:"light_format"`
	ShadowRenderScale float32 `toml:"shadow_render_scale"`
	HDREmulationScale float32 `toml:"hdr_emulation_scale"`

	PoolStaleLifetime int `toml:"pool_stale_lifetime"`
	PoolPurgeInterval int `toml:"pool_purge_interval"`

	DebugClearOnCreate  bool `toml:"debug_clear_on_create"`
	DebugClearOnRelease bool `toml:"debug_clear_on_release"`

	UseFastMemory       bool    `toml:"use_fast_memory"`
	FastMemoryResidency float32 `toml:"fast_memory_residency"`

	// CameraCacheSize bounds the number of cameras whose lighting state is
	// kept between frames.
	CameraCacheSize int `toml:"camera_cache_size"`
}

// DefaultSettings returns the settings a renderer uses when none are given.
func DefaultSettings() Settings {
	styles := light.DefaultBlendStyles()
	s := Settings{
		BlendStyles:       make([]BlendStyleSettings, len(styles)),
		LightFormat:       gputypes.TextureFormatRGBA16Float.String(),
		ShadowRenderScale: 1,
		HDREmulationScale: 1,
		PoolStaleLifetime: rendergraph.DefaultStaleLifetime,
		PoolPurgeInterval: rendergraph.DefaultPurgeInterval,
		CameraCacheSize:   32,
	}
	for i, b := range styles {
		s.BlendStyles[i] = BlendStyleSettings{
			Name:        b.Name,
			Mode:        b.Mode.String(),
			Mask:        maskNames[b.Mask],
			RenderScale: b.RenderScale,
		}
	}
	return s
}

var maskNames = map[light.MaskChannel]string{
	light.MaskNone: "",
	light.MaskR:    "R",
	light.MaskG:    "G",
	light.MaskB:    "B",
	light.MaskA:    "A",
}

// lightFormats are the formats accepted for light accumulation targets.
var lightFormats = []gputypes.TextureFormat{
	gputypes.TextureFormatRGBA16Float,
	gputypes.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatRG11B10Ufloat,
	gputypes.TextureFormatRGB10A2Unorm,
}

func parseLightFormat(name string) (gputypes.TextureFormat, error) {
	for _, f := range lightFormats {
		if f.String() == name {
			return f, nil
		}
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("%w: unsupported light format %q", ErrInvalidSettings, name)
}

func parseMask(name string) (light.MaskChannel, error) {
	for m, n := range maskNames {
		if n == name {
			return m, nil
		}
	}
	return light.MaskNone, fmt.Errorf("%w: unknown mask channel %q", ErrInvalidSettings, name)
}

// Validate reports the first problem found in s.
func (s Settings) Validate() error {
	if len(s.BlendStyles) == 0 {
		return fmt.Errorf("%w: no blend styles", ErrInvalidSettings)
	}
	if len(s.BlendStyles) > light.MaxBlendStyles {
		return fmt.Errorf("%w: %d blend styles, at most %d supported",
			ErrInvalidSettings, len(s.BlendStyles), light.MaxBlendStyles)
	}
	if _, err := s.blendStyles(); err != nil {
		return err
	}
	if _, err := parseLightFormat(s.LightFormat); err != nil {
		return err
	}
	switch {
	case s.ShadowRenderScale <= 0 || s.ShadowRenderScale > 1:
		return fmt.Errorf("%w: shadow_render_scale %v outside (0,1]", ErrInvalidSettings, s.ShadowRenderScale)
	case s.HDREmulationScale < 1:
		return fmt.Errorf("%w: hdr_emulation_scale %v below 1", ErrInvalidSettings, s.HDREmulationScale)
	case s.PoolStaleLifetime < 1:
		return fmt.Errorf("%w: pool_stale_lifetime must be positive", ErrInvalidSettings)
	case s.PoolPurgeInterval < 1:
		return fmt.Errorf("%w: pool_purge_interval must be positive", ErrInvalidSettings)
	case s.FastMemoryResidency < 0 || s.FastMemoryResidency > 1:
		return fmt.Errorf("%w: fast_memory_residency %v outside [0,1]", ErrInvalidSettings, s.FastMemoryResidency)
	case s.CameraCacheSize < 1:
		return fmt.Errorf("%w: camera_cache_size must be positive", ErrInvalidSettings)
	}
	return nil
}

func (s Settings) blendStyles() ([]light.BlendStyle, error) {
	styles := make([]light.BlendStyle, len(s.BlendStyles))
	for i, b := range s.BlendStyles {
		mode, err := light.ParseBlendMode(b.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: blend style %d: %w", ErrInvalidSettings, i, err)
		}
		mask, err := parseMask(b.Mask)
		if err != nil {
			return nil, fmt.Errorf("blend style %d: %w", i, err)
		}
		if b.RenderScale == 0 {
			b.RenderScale = 1
		}
		if b.RenderScale < 0 || b.RenderScale > 1 {
			return nil, fmt.Errorf("%w: blend style %d render_scale %v outside (0,1]",
				ErrInvalidSettings, i, b.RenderScale)
		}
		styles[i] = light.BlendStyle{
			Name:        b.Name,
			Mask:        mask,
			Mode:        mode,
			Custom:      light.BlendFactors{Multiplicative: b.Multiplicative, Additive: b.Additive},
			RenderScale: b.RenderScale,
		}
	}
	return styles, nil
}

// lightingConfig converts validated settings.
func (s Settings) lightingConfig() (lighting.Config, error) {
	cfg := lighting.DefaultConfig()
	styles, err := s.blendStyles()
	if err != nil {
		return cfg, err
	}
	format, err := parseLightFormat(s.LightFormat)
	if err != nil {
		return cfg, err
	}
	cfg.BlendStyles = styles
	cfg.LightFormat = format
	cfg.ShadowRenderScale = s.ShadowRenderScale
	cfg.HDREmulationScale = s.HDREmulationScale
	if s.UseFastMemory {
		cfg.FastMemory = rendergraph.FastMemoryDesc{
			InFastMemory:      true,
			Flags:             gpucore.FastMemorySpillTop,
			ResidencyFraction: s.FastMemoryResidency,
		}
	}
	return cfg, nil
}

func (s Settings) registryConfig() rendergraph.Config {
	return rendergraph.Config{
		ClearOnCreate:  s.DebugClearOnCreate,
		ClearOnRelease: s.DebugClearOnRelease,
		StaleLifetime:  s.PoolStaleLifetime,
		PurgeInterval:  s.PoolPurgeInterval,
	}
}

// ParseSettings decodes TOML settings. Keys missing from data keep their
// default values; unknown keys are rejected.
func ParseSettings(data []byte) (Settings, error) {
	// A file listing blend styles replaces the default list.
	s := DefaultSettings()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Settings{}, fmt.Errorf("%w: %s", ErrInvalidSettings, strict.String())
		}
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettings reads and decodes a TOML settings file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("light2d: read settings: %w", err)
	}
	s, err := ParseSettings(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
