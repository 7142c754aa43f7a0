package tonefx

import (
	"fmt"
	"strconv"
	"strings"
)

// Vec3 is a three-component parameter vector. Per-operator tonemap
// coefficients are stored and uploaded as Vec3 values.
type Vec3 struct {
	X, Y, Z float64
}

// Vec4 is a four-component vector, used for extent descriptors such as the
// color grade LUT size.
type Vec4 struct {
	X, Y, Z, W float64
}

func (v Vec3) f32() []float32 { return []float32{float32(v.X), float32(v.Y), float32(v.Z)} }

func (v Vec4) f32() []float32 {
	return []float32{float32(v.X), float32(v.Y), float32(v.Z), float32(v.W)}
}

// String formats the vector as "x,y,z", the form accepted by parseVec3.
func (v Vec3) String() string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}

func parseVec3(s string) (Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Vec3{}, fmt.Errorf("vec3 %q: want 3 components, got %d", s, len(parts))
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("vec3 %q: %w", s, err)
		}
		out[i] = v
	}
	return Vec3{out[0], out[1], out[2]}, nil
}

// ToneMapper selects the HDR-to-LDR transfer function applied by the
// tonemap stage.
type ToneMapper uint32

const (
	TonemapNone      ToneMapper = iota // identity passthrough
	TonemapLinear                      // exposure then clamp
	TonemapReinhard                    // x / (1 + x)
	TonemapReinhard2                   // extended Reinhard with a white point
	TonemapFilmic                      // Hejl-Burgess-Dawson filmic
	TonemapUnreal                      // Unreal Engine 3 fit
	TonemapACES                        // Hill's fitted ACES RRT+ODT
	TonemapUchimura                    // Gran Turismo (Uchimura)
	TonemapLottes                      // AMD (Lottes)
	TonemapUncharted                   // Uncharted 2 (Hable)
	tonemapCount
)

var tonemapNames = [tonemapCount]string{
	"none", "linear", "reinhard", "reinhard2", "filmic",
	"unreal", "aces", "uchimura", "lottes", "uncharted",
}

// Valid reports whether t is one of the defined operators.
func (t ToneMapper) Valid() bool { return t < tonemapCount }

// String returns the lower-case operator name.
func (t ToneMapper) String() string {
	if !t.Valid() {
		return "tonemap(" + strconv.FormatUint(uint64(t), 10) + ")"
	}
	return tonemapNames[t]
}

// ParseToneMapper parses an operator name or its numeric value. Unknown
// input returns TonemapNone and false.
func ParseToneMapper(s string) (ToneMapper, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range tonemapNames {
		if name == s {
			return ToneMapper(i), true
		}
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil && ToneMapper(n).Valid() {
		return ToneMapper(n), true
	}
	return TonemapNone, false
}

// MarshalText implements encoding.TextMarshaler.
func (t ToneMapper) MarshalText() ([]byte, error) {
	if !t.Valid() {
		t = TonemapNone
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode
// to TonemapNone rather than failing the whole config.
func (t *ToneMapper) UnmarshalText(b []byte) error {
	*t, _ = ParseToneMapper(string(b))
	return nil
}

// SharpenMethod selects the post-tonemap sharpening filter.
type SharpenMethod uint32

const (
	SharpenNone SharpenMethod = iota // passthrough copy
	SharpenCAS                       // contrast-adaptive sharpening
	SharpenDLS                       // denoised luma sharpening
	sharpenCount
)

var sharpenNames = [sharpenCount]string{"none", "cas", "dls"}

// Valid reports whether m is one of the defined methods.
func (m SharpenMethod) Valid() bool { return m < sharpenCount }

// String returns the lower-case method name.
func (m SharpenMethod) String() string {
	if !m.Valid() {
		return "sharpen(" + strconv.FormatUint(uint64(m), 10) + ")"
	}
	return sharpenNames[m]
}

// ParseSharpenMethod parses a method name or its numeric value. Unknown
// input returns SharpenNone and false.
func ParseSharpenMethod(s string) (SharpenMethod, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range sharpenNames {
		if name == s {
			return SharpenMethod(i), true
		}
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil && SharpenMethod(n).Valid() {
		return SharpenMethod(n), true
	}
	return SharpenNone, false
}

// MarshalText implements encoding.TextMarshaler.
func (m SharpenMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		m = SharpenNone
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SharpenMethod) UnmarshalText(b []byte) error {
	*m, _ = ParseSharpenMethod(string(b))
	return nil
}
