package tonefx

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is the tunable state of the post chain. The pipeline keeps its
// own copy; changes take effect only through RefreshState.
type Config struct {
	// Exposure scales linear radiance before the tonemap curve. Zero blacks
	// out the tonemapped image; negative values are replaced with 1.
	Exposure float64 `yaml:"exposure"`
	// ExposureFade is the duration in seconds over which an exposure change
	// is eased in. Zero applies the new value on the next frame.
	ExposureFade float64 `yaml:"exposure_fade,omitempty"`
	// SourceScale multiplies the decoded source and bloom before exposure,
	// for HDR data stored range-compressed in 8-bit targets.
	SourceScale float64 `yaml:"source_scale,omitempty"`

	Tonemap ToneMapper `yaml:"tonemap"`

	// Operator parameter vectors. Only the active operator's vectors are
	// uploaded; the rest are kept so switching back restores them.
	LottesA    Vec3 `yaml:"lottes_a"`   // contrast, shoulder, hdr max
	LottesB    Vec3 `yaml:"lottes_b"`   // mid in, mid out, unused
	UchimuraA  Vec3 `yaml:"uchimura_a"` // max brightness, contrast, linear start
	UchimuraB  Vec3 `yaml:"uchimura_b"` // linear length, black tightness, pedestal
	UnchartedA Vec3 `yaml:"uncharted_a"` // shoulder strength, linear strength, linear angle
	UnchartedB Vec3 `yaml:"uncharted_b"` // toe strength, toe numerator, toe denominator
	UnchartedC Vec3 `yaml:"uncharted_c"` // white point, exposure bias, unused

	// ColorGradeLUT is the path of a LUT strip image or .cube file. Empty
	// disables grading.
	ColorGradeLUT string `yaml:"color_grade_lut,omitempty"`

	Sharpen SharpenMethod `yaml:"sharpen"`
}

// Published defaults for the parameterized operators.
var (
	defaultLottesA    = Vec3{1.6, 0.977, 8.0}
	defaultLottesB    = Vec3{0.18, 0.267, 0}
	defaultUchimuraA  = Vec3{1.0, 1.0, 0.22}
	defaultUchimuraB  = Vec3{0.4, 1.33, 0.0}
	defaultUnchartedA = Vec3{0.15, 0.50, 0.10}
	defaultUnchartedB = Vec3{0.20, 0.02, 0.30}
	defaultUnchartedC = Vec3{11.2, 2.0, 0}
)

// DefaultConfig returns the state a new pipeline starts with: no tonemap,
// no sharpening, unit exposure.
func DefaultConfig() Config {
	return Config{
		Exposure:    1.0,
		SourceScale: 1.0,
		Tonemap:     TonemapNone,
		LottesA:     defaultLottesA,
		LottesB:     defaultLottesB,
		UchimuraA:   defaultUchimuraA,
		UchimuraB:   defaultUchimuraB,
		UnchartedA:  defaultUnchartedA,
		UnchartedB:  defaultUnchartedB,
		UnchartedC:  defaultUnchartedC,
		Sharpen:     SharpenNone,
	}
}

// normalize fills unset or unusable fields with defaults and maps invalid
// enum values to None. It returns the names of the fields it changed.
func (c *Config) normalize() []string {
	var fixed []string
	if c.Exposure < 0 || math.IsNaN(c.Exposure) || math.IsInf(c.Exposure, 0) {
		c.Exposure = 1.0
		fixed = append(fixed, "exposure")
	}
	if !(c.SourceScale > 0) || math.IsInf(c.SourceScale, 0) {
		c.SourceScale = 1.0
		fixed = append(fixed, "source_scale")
	}
	if c.ExposureFade < 0 || math.IsNaN(c.ExposureFade) {
		c.ExposureFade = 0
		fixed = append(fixed, "exposure_fade")
	}
	if !c.Tonemap.Valid() {
		c.Tonemap = TonemapNone
		fixed = append(fixed, "tonemap")
	}
	if !c.Sharpen.Valid() {
		c.Sharpen = SharpenNone
		fixed = append(fixed, "sharpen")
	}
	zero := Vec3{}
	if c.LottesA == zero {
		c.LottesA = defaultLottesA
	}
	if c.LottesB == zero {
		c.LottesB = defaultLottesB
	}
	if c.UchimuraA == zero {
		c.UchimuraA = defaultUchimuraA
	}
	if c.UchimuraB == zero {
		c.UchimuraB = defaultUchimuraB
	}
	if c.UnchartedA == zero {
		c.UnchartedA = defaultUnchartedA
	}
	if c.UnchartedB == zero {
		c.UnchartedB = defaultUnchartedB
	}
	if c.UnchartedC == zero {
		c.UnchartedC = defaultUnchartedC
	}
	return fixed
}

// LoadConfig reads a YAML config from fsys. A missing file yields
// DefaultConfig; a malformed file is an error.
func LoadConfig(fsys afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(fsys afero.Fs, path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
