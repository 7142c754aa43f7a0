package tonefx

import (
	"strings"
	"testing"
)

func allShaderIDs() []ShaderID {
	ids := []ShaderID{ShaderSharpenCAS, ShaderSharpenDLS}
	for op := TonemapNone; op < tonemapCount; op++ {
		ids = append(ids, TonemapShader(op))
	}
	return ids
}

func TestKageSourceForEveryShader(t *testing.T) {
	for _, id := range allShaderIDs() {
		src, ok := kageSource(id)
		if !ok {
			t.Errorf("no Kage source for %s", id)
			continue
		}
		s := string(src)
		if !strings.HasPrefix(s, "//kage:unit pixels") {
			t.Errorf("%s: missing pixel unit directive", id)
		}
		if strings.Count(s, "func Fragment(") != 1 {
			t.Errorf("%s: want exactly one Fragment", id)
		}
		if _, ok := cpuKernelFor(id); !ok {
			t.Errorf("no CPU kernel for %s", id)
		}
	}
	if _, ok := kageSource("sharpen/fsr"); ok {
		t.Error("unknown id has a source")
	}
}

func TestTonemapSourcesDefineCurve(t *testing.T) {
	for op := TonemapLinear; op < tonemapCount; op++ {
		s := string(tonemapSource(op))
		if !strings.Contains(s, "func tonemapCurve(") {
			t.Errorf("%s: no tonemapCurve", op)
		}
	}
	if s := string(tonemapSource(TonemapNone)); strings.Contains(s, "tonemapCurve") {
		t.Error("passthrough variant should not apply a curve")
	}
}

func TestTonemapSourcesReadOnlyTheirParams(t *testing.T) {
	for op := TonemapLinear; op < tonemapCount; op++ {
		curve := tonemapCurves[op]
		_, n := paramsFor(op, &Config{})
		for i, name := range []string{uniformParamA, uniformParamB, uniformParamC} {
			uses := strings.Contains(curve, name+".")
			if uses && i >= n {
				t.Errorf("%s curve reads %s but it is not uploaded", op, name)
			}
		}
	}
}

func TestUniformNamesDeclared(t *testing.T) {
	for _, name := range []string{
		uniformExposure, uniformSourceScale, uniformBloomEnabled, uniformGradeEnabled,
		uniformParamA, uniformParamB, uniformParamC, uniformLUTSize,
	} {
		if !strings.Contains(tonemapPrelude, "var "+name+" ") {
			t.Errorf("tonemap prelude does not declare %s", name)
		}
	}
	for _, name := range []string{uniformSharpness, uniformDenoise} {
		if !strings.Contains(sharpenPrelude, "var "+name+" ") {
			t.Errorf("sharpen prelude does not declare %s", name)
		}
	}
}
