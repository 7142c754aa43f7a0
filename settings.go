package tonefx

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"
)

// SettingsSource supplies configuration snapshots. Sources are polled by
// Pipeline.Reload; nothing is pushed.
type SettingsSource interface {
	Snapshot() (Config, error)
}

// StaticSettings is a SettingsSource that always returns the same Config.
type StaticSettings Config

// Snapshot returns the wrapped Config.
func (s StaticSettings) Snapshot() (Config, error) { return Config(s), nil }

// FileSettings reads a YAML config file on every Snapshot.
type FileSettings struct {
	Fs   afero.Fs
	Path string
}

// Snapshot loads the file. A missing file yields DefaultConfig.
func (s FileSettings) Snapshot() (Config, error) {
	fsys := s.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return LoadConfig(fsys, s.Path)
}

// Setting keys understood by LookupSettings.
const (
	KeyTonemap      = "tonemap"
	KeyExposure     = "exposure"
	KeyExposureFade = "exposure_fade"
	KeySourceScale  = "source_scale"
	KeySharpen      = "sharpen"
	KeyLUT          = "lut"
	KeyLottesA      = "lottes.a"
	KeyLottesB      = "lottes.b"
	KeyUchimuraA    = "uchimura.a"
	KeyUchimuraB    = "uchimura.b"
	KeyUnchartedA   = "uncharted.a"
	KeyUnchartedB   = "uncharted.b"
	KeyUnchartedC   = "uncharted.c"
)

// LookupSettings adapts a plain key/value lookup (os.LookupEnv, a flag set,
// a settings table) into a SettingsSource. Keys that are absent keep their
// default. Unknown enum names fall back to None; malformed numbers are
// errors.
type LookupSettings func(key string) (string, bool)

// Snapshot reads every known key.
func (l LookupSettings) Snapshot() (Config, error) {
	cfg := DefaultConfig()
	if v, ok := l(KeyTonemap); ok {
		cfg.Tonemap, _ = ParseToneMapper(v)
	}
	if v, ok := l(KeySharpen); ok {
		cfg.Sharpen, _ = ParseSharpenMethod(v)
	}
	if v, ok := l(KeyLUT); ok {
		cfg.ColorGradeLUT = v
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{KeyExposure, &cfg.Exposure},
		{KeyExposureFade, &cfg.ExposureFade},
		{KeySourceScale, &cfg.SourceScale},
	}
	for _, f := range floats {
		v, ok := l(f.key)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("setting %s: %w", f.key, err)
		}
		*f.dst = n
	}
	vecs := []struct {
		key string
		dst *Vec3
	}{
		{KeyLottesA, &cfg.LottesA},
		{KeyLottesB, &cfg.LottesB},
		{KeyUchimuraA, &cfg.UchimuraA},
		{KeyUchimuraB, &cfg.UchimuraB},
		{KeyUnchartedA, &cfg.UnchartedA},
		{KeyUnchartedB, &cfg.UnchartedB},
		{KeyUnchartedC, &cfg.UnchartedC},
	}
	for _, vv := range vecs {
		v, ok := l(vv.key)
		if !ok {
			continue
		}
		vec, err := parseVec3(v)
		if err != nil {
			return Config{}, fmt.Errorf("setting %s: %w", vv.key, err)
		}
		*vv.dst = vec
	}
	cfg.normalize()
	return cfg, nil
}

// MapSettings returns a LookupSettings backed by m.
func MapSettings(m map[string]string) LookupSettings {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
