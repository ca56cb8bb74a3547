// Command light2d-demo renders a small lit 2D scene into a command
// recording and reports what was recorded.
//
// Usage:
//
//	light2d-demo -frames 8 -settings light2d.toml -backend native -naga
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/light2d"
	"github.com/gogpu/light2d/backend"
	"github.com/gogpu/light2d/backend/native"
	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
	"github.com/gogpu/light2d/lighting"
	"github.com/gogpu/light2d/recording"
	"github.com/gogpu/light2d/shadow"
)

// Sorting layer IDs of the demo scene.
const (
	layerBackground int32 = 1
	layerDefault    int32 = 0
	layerForeground int32 = 2
)

func main() {
	var (
		settingsPath = flag.String("settings", "", "TOML settings file")
		frames       = flag.Int("frames", 4, "number of frames to render")
		backendName  = flag.String("backend", "", "allocator backend (software, native); empty selects the best available")
		useNaga      = flag.Bool("naga", false, "compile light shader variants with naga")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	light2d.SetLogger(logger)

	if err := run(logger, *settingsPath, *frames, *backendName, *useNaga); err != nil {
		logger.Error("light2d-demo failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, settingsPath string, frames int, backendName string, useNaga bool) error {
	settings := light2d.DefaultSettings()
	if settingsPath != "" {
		var err error
		if settings, err = light2d.LoadSettings(settingsPath); err != nil {
			return err
		}
	}

	if backendName == backend.Native {
		cleanup, err := registerHeadlessDevice()
		if err != nil {
			return err
		}
		defer cleanup()
	}

	opts := []light2d.RendererOption{
		light2d.WithSettings(settings),
		light2d.WithBackend(backendName),
		light2d.WithShadowGroups(demoCasters()),
		light2d.WithSortingLayers(
			lighting.SortingLayer{ID: layerBackground, Name: "Background", Value: -10},
			lighting.SortingLayer{ID: layerDefault, Name: "Default", Value: 0},
			lighting.SortingLayer{ID: layerForeground, Name: "Foreground", Value: 10},
		),
	}
	if useNaga {
		opts = append(opts, light2d.WithShaderCompiler(lighting.NagaCompiler{}))
	}

	lights, orbiter := demoLights()
	r, err := light2d.NewRenderer(lights, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	cam := &gpucore.Camera{
		ID:      1,
		Name:    "Main Camera",
		Width:   1280,
		Height:  720,
		Culling: gpucore.CullingParameters{CullingMask: ^uint32(0), Planes: orthoPlanes(8, 4.5)},
	}

	rec := recording.NewRecorder()
	for i := 1; i <= frames; i++ {
		rec.Reset()
		// The point light orbits so culling and shadows change between frames.
		orbit := mgl32.Rotate2D(float32(i) * 0.4).Mul2x1(mgl32.Vec2{3, 0})
		orbiter.SetPosition(orbit.Vec3(0))

		if err := r.Render(rec, light2d.Frame{Camera: cam, Index: i}); err != nil {
			return err
		}
	}

	hist := rec.FinishRecording().Histogram()
	for t := recording.CmdSetRenderTarget; t <= recording.CmdSwitchIntoFastMemory; t++ {
		if n := hist[t]; n > 0 {
			logger.Info("recorded commands", "type", t, "count", n)
		}
	}
	s := r.Stats()
	logger.Info("render stats",
		"backend", r.Backend(),
		"frames", s.Frames,
		"batches", s.Batches,
		"lightsDrawn", s.Lighting.LightsDrawn,
		"volumes", len(s.Lighting.Volumes),
		"materials", r.Materials().Len(),
		"shaderVariants", r.Materials().ShaderCount())
	fmt.Println(s)
	return nil
}

// registerHeadlessDevice registers the native allocator on the noop HAL
// device, which accepts every call without a GPU.
func registerHeadlessDevice() (func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no adapters")
	}
	dev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	if err := native.Register(dev.Device); err != nil {
		dev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	return func() {
		backend.Unregister(backend.Native)
		dev.Device.Destroy()
		instance.Destroy()
	}, nil
}

func demoLights() (*light.Manager, *light.Light) {
	point := light.New(light.TypePoint,
		light.WithPointRadius(0.5, 4),
		light.WithPointAngles(360, 360),
		light.WithNormalMap(light.NormalMapAccurate, 1),
		light.WithShadowIntensity(0.8),
		light.WithVolumeIntensity(0.3),
		light.WithTargetSortingLayers(layerDefault, layerForeground))

	m := light.NewManager()
	m.Register(
		light.New(light.TypeGlobal,
			light.WithColor(gputypes.Color{R: 0.15, G: 0.15, B: 0.25, A: 1}),
			light.WithTargetSortingLayers(layerBackground, layerDefault, layerForeground)),
		point,
		light.New(light.TypeParametric,
			light.WithParametric(2, 5, 0),
			light.WithPosition(mgl32.Vec3{-5, 2, 0}),
			light.WithColor(gputypes.Color{R: 1, G: 0.6, B: 0.2, A: 1}),
			light.WithBlendStyle(1),
			light.WithTargetSortingLayers(layerDefault)),
		light.New(light.TypeFreeform,
			light.WithShapePath([]mgl32.Vec2{{-1, -1}, {2, -1}, {2, 1}, {0, 2}, {-1, 1}}),
			light.WithPosition(mgl32.Vec3{4, -2, 0}),
			light.WithFalloffDistance(0.5),
			light.WithTargetSortingLayers(layerBackground)),
		light.New(light.TypeSprite,
			light.WithSprite(mgl32.Vec2{2, 2}, mgl32.Vec2{0.5, 0.5}),
			light.WithPosition(mgl32.Vec3{0, 3, 0}),
			light.WithOverlap(light.OverlapAlphaBlend),
			light.WithTargetSortingLayers(layerForeground)),
	)
	return m, point
}

func demoCasters() *shadow.GroupManager {
	box := []mgl32.Vec2{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	tri := []mgl32.Vec2{{-0.5, -0.4}, {0.5, -0.4}, {0, 0.6}}

	groups := shadow.NewGroupManager()
	// Group 0 casters each get their own stencil index.
	groups.Register(shadow.NewGroup(0, 0,
		shadow.NewCaster(box, shadow.WithCasterPosition(mgl32.Vec3{1, 1, 0}), shadow.WithSelfShadows(true)),
		shadow.NewCaster(tri, shadow.WithCasterPosition(mgl32.Vec3{-1.5, 0, 0})),
	))
	groups.Register(shadow.NewGroup(7, 1,
		shadow.NewCaster(box, shadow.WithCasterPosition(mgl32.Vec3{0, -2, 0}), shadow.WithShadowedLayers(layerForeground)),
		shadow.NewCaster(box, shadow.WithCasterPosition(mgl32.Vec3{1, -2, 0}), shadow.WithShadowedLayers(layerForeground)),
	))
	return groups
}

// orthoPlanes returns the four side planes of an orthographic view with the
// given half extents centered on the origin.
func orthoPlanes(halfWidth, halfHeight float32) []gpucore.Plane {
	return []gpucore.Plane{
		{Normal: mgl32.Vec3{1, 0, 0}, Distance: halfWidth},
		{Normal: mgl32.Vec3{-1, 0, 0}, Distance: halfWidth},
		{Normal: mgl32.Vec3{0, 1, 0}, Distance: halfHeight},
		{Normal: mgl32.Vec3{0, -1, 0}, Distance: halfHeight},
	}
}
