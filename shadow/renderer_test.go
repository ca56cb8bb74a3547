package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
	"github.com/gogpu/light2d/recording"
)

type spriteRenderer string

func (s spriteRenderer) Name() string { return string(s) }

var box = []mgl32.Vec2{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}

func shadowDraws(rec *recording.Recording) []recording.DrawMeshCommand {
	var out []recording.DrawMeshCommand
	for _, c := range rec.Filter(recording.CmdDrawMesh) {
		out = append(out, c.(recording.DrawMeshCommand))
	}
	return out
}

func TestRenderShadowsZeroIntensity(t *testing.T) {
	gm := NewGroupManager()
	gm.Register(NewGroup(0, 0, NewCaster(box, WithSelfShadows(true))))
	r := NewRenderer(gm)

	rec := recording.NewRecorder()
	if r.RenderShadows(rec, light.New(light.TypePoint), 0, 0, 0, gpucore.RenderTarget{}) {
		t.Error("RenderShadows() = true at zero intensity")
	}
	if rec.Len() != 0 {
		t.Errorf("recorded %d commands at zero intensity", rec.Len())
	}
}

func TestRenderShadowsStencilIndices(t *testing.T) {
	gm := NewGroupManager()
	caster := func() *Caster { return NewCaster(box, WithSelfShadows(true)) }
	gm.Register(NewGroup(5, 0, caster()))
	gm.Register(NewGroup(5, 0, caster()))
	gm.Register(NewGroup(0, 0, caster()))
	gm.Register(NewGroup(0, 0, caster()))
	gm.Register(NewGroup(7, 0, caster(), caster()))
	r := NewRenderer(gm)
	l := light.New(light.TypePoint, light.WithPointRadius(0, 5))

	for frame := range 2 {
		rec := recording.NewRecorder()
		if !r.RenderShadows(rec, l, 0, 1, 1, gpucore.RenderTarget{}) {
			t.Fatal("RenderShadows() = false")
		}
		var refs []uint32
		for _, d := range shadowDraws(rec.FinishRecording()) {
			refs = append(refs, d.Material.StencilRef)
		}
		want := []uint32{1, 1, 2, 3, 4, 4}
		if len(refs) != len(want) {
			t.Fatalf("frame %d: stencil refs = %v, want %v", frame, refs, want)
		}
		for i := range want {
			if refs[i] != want[i] {
				t.Errorf("frame %d: stencil refs = %v, want %v", frame, refs, want)
				break
			}
		}
		if s := r.Stats(); s.StencilIndices != 4 || s.Groups != 5 {
			t.Errorf("frame %d: stats = %+v", frame, s)
		}
	}
	if r.MaterialCount() != 4 {
		t.Errorf("MaterialCount() = %d, want 4 cached shadow materials", r.MaterialCount())
	}
}

func TestRenderShadowsSelfShadowAndSilhouette(t *testing.T) {
	tests := []struct {
		name         string
		opts         []CasterOption
		meshDraws    int
		rendererDraw bool
		removeSelf   int
	}{
		{"self shadows", []CasterOption{WithSelfShadows(true)}, 1, false, 0},
		{"remove self shadow", nil, 2, false, 1},
		{"silhouette self shadows", []CasterOption{WithSelfShadows(true), WithRendererSilhouette(spriteRenderer("crate"))}, 1, true, 0},
		{"silhouette remove self", []CasterOption{WithRendererSilhouette(spriteRenderer("crate"))}, 1, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gm := NewGroupManager()
			gm.Register(NewGroup(0, 0, NewCaster(box, tt.opts...)))
			r := NewRenderer(gm)

			rec := recording.NewRecorder()
			r.RenderShadows(rec, light.New(light.TypePoint), 0, 1, 1, gpucore.RenderTarget{})
			out := rec.FinishRecording()

			if got := out.Count(recording.CmdDrawMesh); got != tt.meshDraws {
				t.Errorf("DrawMesh = %d, want %d", got, tt.meshDraws)
			}
			if got := out.Count(recording.CmdDrawRenderer) == 1; got != tt.rendererDraw {
				t.Errorf("DrawRenderer recorded = %v, want %v", got, tt.rendererDraw)
			}
			if got := r.Stats().RemoveSelf; got != tt.removeSelf {
				t.Errorf("RemoveSelf = %d, want %d", got, tt.removeSelf)
			}
		})
	}
}

func TestRenderShadowsFiltersCasters(t *testing.T) {
	gm := NewGroupManager()
	far := NewCaster(box, WithSelfShadows(true), WithCasterPosition(mgl32.Vec3{100, 0, 0}))
	otherLayer := NewCaster(box, WithSelfShadows(true), WithShadowedLayers(3))
	disabled := NewCaster(box, WithSelfShadows(true))
	disabled.SetCastsShadows(false)
	near := NewCaster(box, WithSelfShadows(true), WithShadowedLayers(1, 2))
	gm.Register(NewGroup(0, 0, far, otherLayer, disabled, near))

	r := NewRenderer(gm)
	rec := recording.NewRecorder()
	r.RenderShadows(rec, light.New(light.TypePoint), 2, 1, 1, gpucore.RenderTarget{})
	if got := r.Stats().ShadowDraws; got != 1 {
		t.Errorf("ShadowDraws = %d, want 1", got)
	}
}

func TestGroupManagerPriority(t *testing.T) {
	gm := NewGroupManager()
	a := NewGroup(1, 2)
	b := NewGroup(2, 0)
	c := NewGroup(3, 2)
	d := NewGroup(4, 1)
	for _, g := range []*Group{a, b, c, d, a} {
		gm.Register(g)
	}
	want := []*Group{b, d, a, c}
	got := gm.Groups()
	if len(got) != len(want) {
		t.Fatalf("groups = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("groups[%d] id = %d, want %d", i, got[i].ID(), want[i].ID())
		}
	}
	if !gm.Deregister(d) || gm.Deregister(d) {
		t.Error("Deregister did not report membership")
	}
}

func TestRenderShadowsSetsColorMask(t *testing.T) {
	gm := NewGroupManager()
	gm.Register(NewGroup(0, 0, NewCaster(box, WithSelfShadows(true))))
	r := NewRenderer(gm)

	rec := recording.NewRecorder()
	if !r.RenderShadows(rec, light.New(light.TypePoint), 0, 0.5, 0.25, gpucore.RenderTarget{}) {
		t.Fatal("RenderShadows() = false")
	}
	var (
		mask  mgl32.Vec4
		found bool
	)
	for _, c := range rec.FinishRecording().Filter(recording.CmdSetGlobalVector) {
		if v := c.(recording.SetGlobalVectorCommand); v.Property == gpucore.PropertyShadowColorMask {
			mask, found = v.Vector, true
		}
	}
	if !found {
		t.Fatal("_ShadowColorMask not set")
	}
	if want := (mgl32.Vec4{1, 0, 0, 0}); mask != want {
		t.Errorf("_ShadowColorMask = %v, want %v", mask, want)
	}
}
