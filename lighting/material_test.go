package lighting

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
)

type keyFields struct {
	volume, point, alpha bool
	typ                  light.Type
	cookie, fast, normal bool
}

func (f keyFields) key() MaterialKey {
	return NewMaterialKey(f.volume, f.point, f.alpha, f.typ, f.cookie, f.fast, f.normal)
}

func TestMaterialCacheDeterminism(t *testing.T) {
	c := NewMaterialCache(nil)
	base := keyFields{point: true, typ: light.TypePoint, normal: true}

	m1, err := c.Get(base.key())
	if err != nil {
		t.Fatal(err)
	}
	m2, _ := c.Get(base.key())
	if m1 != m2 {
		t.Fatal("identical keys resolved to different materials")
	}

	variants := map[string]func(*keyFields){
		"volume": func(f *keyFields) { f.volume = !f.volume },
		"point":  func(f *keyFields) { f.point = !f.point },
		"alpha":  func(f *keyFields) { f.alpha = !f.alpha },
		"type":   func(f *keyFields) { f.typ = light.TypeSprite },
		"cookie": func(f *keyFields) { f.cookie = !f.cookie },
		"fast":   func(f *keyFields) { f.fast = !f.fast },
		"normal": func(f *keyFields) { f.normal = !f.normal },
	}
	seen := map[*gpucore.Material]string{m1: "base"}
	for name, flip := range variants {
		t.Run(name, func(t *testing.T) {
			f := base
			flip(&f)
			m, err := c.Get(f.key())
			if err != nil {
				t.Fatal(err)
			}
			if prev, dup := seen[m]; dup {
				t.Errorf("material shared with %s", prev)
			}
			seen[m] = name
		})
	}
	if c.Len() != 1+len(variants) {
		t.Errorf("Len() = %d, want %d", c.Len(), 1+len(variants))
	}
}

func TestKeyForLight(t *testing.T) {
	a := light.New(light.TypePoint, light.WithNormalMap(light.NormalMapFast, 1))
	b := light.New(light.TypePoint, light.WithNormalMap(light.NormalMapFast, 5), light.WithIntensity(3))
	if KeyForLight(a, false) != KeyForLight(b, false) {
		t.Error("lights differing only in non-key properties got different keys")
	}
	k := KeyForLight(a, true)
	if !k.Volume() || !k.Point() || !k.FastQuality() || !k.NormalMap() || k.AlphaBlend() || k.LightType() != light.TypePoint {
		t.Errorf("key %v decoded wrongly", k)
	}
}

func TestMaterialsShareShaderVariants(t *testing.T) {
	c := NewMaterialCache(nil)
	para, _ := c.Get(NewMaterialKey(false, false, false, light.TypeParametric, false, false, false))
	free, _ := c.Get(NewMaterialKey(false, false, false, light.TypeFreeform, false, false, false))
	alpha, _ := c.Get(NewMaterialKey(false, false, true, light.TypeFreeform, false, false, false))

	if para == free || free == alpha {
		t.Fatal("distinct keys share a material")
	}
	if para.Shader != free.Shader || free.Shader != alpha.Shader {
		t.Error("materials with the same features compiled separate shaders")
	}
	if c.ShaderCount() != 1 {
		t.Errorf("ShaderCount() = %d, want 1", c.ShaderCount())
	}
	if alpha.Blend != gputypes.BlendStateAlpha() {
		t.Errorf("alpha blend material has blend %+v", alpha.Blend)
	}
}

type failingCompiler struct{ calls int }

func (f *failingCompiler) Compile(string) ([]uint32, error) {
	f.calls++
	return nil, errors.New("unsupported")
}

func TestMaterialCacheCompileFailure(t *testing.T) {
	fc := &failingCompiler{}
	c := NewMaterialCache(fc)
	key := NewMaterialKey(false, true, false, light.TypePoint, false, false, false)
	for range 3 {
		if _, err := c.Get(key); !errors.Is(err, ErrShaderCompile) {
			t.Fatalf("Get() error = %v, want ErrShaderCompile", err)
		}
	}
	if fc.calls != 1 {
		t.Errorf("compiler called %d times, want 1", fc.calls)
	}
	c.Clear()
	_, _ = c.Get(key)
	if fc.calls != 2 {
		t.Errorf("Clear did not forget the failure, calls = %d", fc.calls)
	}
}

func TestVariantSource(t *testing.T) {
	v := VariantPoint | VariantNormalMap
	if got := v.String(); got != "POINT_LIGHT|USE_NORMAL_MAP" {
		t.Errorf("String() = %q", got)
	}
	src := v.Source()
	for _, want := range []string{"const POINT_LIGHT: bool = true;", "const VOLUME: bool = false;", "fn fs_main"} {
		if !strings.Contains(src, want) {
			t.Errorf("Source() missing %q", want)
		}
	}
}

func TestNagaCompiler(t *testing.T) {
	code, err := NagaCompiler{}.Compile(Variant(0).Source())
	if err != nil {
		t.Skipf("naga cannot compile the light shader: %v", err)
	}
	const spirvMagic = 0x07230203
	if len(code) == 0 || code[0] != spirvMagic {
		t.Errorf("output does not start with the SPIR-V magic number")
	}
}
