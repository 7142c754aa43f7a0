package tonefx

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLookupSettings(t *testing.T) {
	src := MapSettings(map[string]string{
		KeyTonemap:    "lottes",
		KeyExposure:   "0.75",
		KeySharpen:    "dls",
		KeyLUT:        "luts/warm.png",
		KeyLottesA:    "1.2, 0.9, 6",
		KeyUnchartedC: "10,1,0",
	})
	cfg, err := src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if cfg.Tonemap != TonemapLottes || cfg.Sharpen != SharpenDLS {
		t.Errorf("enums = %v/%v", cfg.Tonemap, cfg.Sharpen)
	}
	if cfg.Exposure != 0.75 {
		t.Errorf("Exposure = %v, want 0.75", cfg.Exposure)
	}
	if cfg.LottesA != (Vec3{1.2, 0.9, 6}) {
		t.Errorf("LottesA = %v", cfg.LottesA)
	}
	if cfg.UnchartedC != (Vec3{10, 1, 0}) {
		t.Errorf("UnchartedC = %v", cfg.UnchartedC)
	}
	if cfg.LottesB != defaultLottesB {
		t.Errorf("absent key changed LottesB: %v", cfg.LottesB)
	}
	if cfg.ColorGradeLUT != "luts/warm.png" {
		t.Errorf("ColorGradeLUT = %q", cfg.ColorGradeLUT)
	}
}

func TestLookupSettingsUnknownOperator(t *testing.T) {
	cfg, err := MapSettings(map[string]string{KeyTonemap: "agx"}).Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if cfg.Tonemap != TonemapNone {
		t.Errorf("Tonemap = %v, want none", cfg.Tonemap)
	}
}

func TestLookupSettingsErrors(t *testing.T) {
	tests := []map[string]string{
		{KeyExposure: "bright"},
		{KeyUchimuraA: "1,2"},
		{KeyUnchartedB: "a,b,c"},
	}
	for _, m := range tests {
		if _, err := MapSettings(m).Snapshot(); err == nil {
			t.Errorf("Snapshot(%v) succeeded, want error", m)
		}
	}
}

func TestFileSettings(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := FileSettings{Fs: fs, Path: "fx.yaml"}

	cfg, err := src.Snapshot()
	if err != nil || cfg != DefaultConfig() {
		t.Fatalf("missing file: %+v, %v", cfg, err)
	}

	_ = afero.WriteFile(fs, "fx.yaml", []byte("tonemap: filmic\n"), 0o644)
	cfg, err = src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if cfg.Tonemap != TonemapFilmic {
		t.Errorf("Tonemap = %v, want filmic", cfg.Tonemap)
	}
}

func TestStaticSettings(t *testing.T) {
	want := DefaultConfig()
	want.Tonemap = TonemapUnreal
	got, err := StaticSettings(want).Snapshot()
	if err != nil || got != want {
		t.Errorf("Snapshot = %+v, %v", got, err)
	}
}

func TestVec3String(t *testing.T) {
	v := Vec3{1.5, 0, -2}
	got, err := parseVec3(v.String())
	if err != nil || got != v {
		t.Errorf("parseVec3(%q) = %v, %v", v.String(), got, err)
	}
}
