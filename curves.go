package tonefx

import "math"

// Reference implementations of the tonemap curves. The CPU device runs these
// directly; the Kage variants in shaders.go implement the same formulas.

// reinhard2White is the white point of the extended Reinhard operator.
const reinhard2White = 4.0

type rgb [3]float64

func (c rgb) each(f func(float64) float64) rgb {
	return rgb{f(c[0]), f(c[1]), f(c[2])}
}

// operatorParams holds the parameter vectors uploaded for one operator.
// Unused vectors are zero.
type operatorParams struct {
	A, B, C Vec3
}

// paramsFor returns the vectors the given operator consumes.
func paramsFor(op ToneMapper, cfg *Config) (operatorParams, int) {
	switch op {
	case TonemapLottes:
		return operatorParams{A: cfg.LottesA, B: cfg.LottesB}, 2
	case TonemapUchimura:
		return operatorParams{A: cfg.UchimuraA, B: cfg.UchimuraB}, 2
	case TonemapUncharted:
		return operatorParams{A: cfg.UnchartedA, B: cfg.UnchartedB, C: cfg.UnchartedC}, 3
	}
	return operatorParams{}, 0
}

// applyCurve maps exposed linear radiance through op. The result is linear
// and not yet clamped.
func applyCurve(op ToneMapper, x rgb, p operatorParams) rgb {
	switch op {
	case TonemapLinear:
		return x
	case TonemapReinhard:
		return x.each(func(v float64) float64 { return v / (1 + v) })
	case TonemapReinhard2:
		w2 := reinhard2White * reinhard2White
		return x.each(func(v float64) float64 { return v * (1 + v/w2) / (1 + v) })
	case TonemapFilmic:
		return x.each(filmic)
	case TonemapUnreal:
		return x.each(func(v float64) float64 {
			return math.Pow(v/(v+0.155)*1.019, 2.2)
		})
	case TonemapACES:
		return acesFitted(x)
	case TonemapUchimura:
		return x.each(func(v float64) float64 {
			return uchimura(v, p.A.X, p.A.Y, p.A.Z, p.B.X, p.B.Y, p.B.Z)
		})
	case TonemapLottes:
		return x.each(func(v float64) float64 {
			return lottes(v, p.A.X, p.A.Y, p.A.Z, p.B.X, p.B.Y)
		})
	case TonemapUncharted:
		return uncharted(x, p)
	}
	return x
}

// filmic is the Hejl-Burgess-Dawson curve, which bakes in a 1/2.2 gamma;
// the pow undoes it so every operator returns linear values.
func filmic(v float64) float64 {
	v = math.Max(0, v-0.004)
	r := (v * (6.2*v + 0.5)) / (v*(6.2*v+1.7) + 0.06)
	return math.Pow(r, 2.2)
}

// ACES input/output matrices from Stephen Hill's fit, column-major.
var (
	acesInput = [9]float64{
		0.59719, 0.07600, 0.02840,
		0.35458, 0.90834, 0.13383,
		0.04823, 0.01566, 0.83777,
	}
	acesOutput = [9]float64{
		1.60475, -0.10208, -0.00327,
		-0.53108, 1.10813, -0.07276,
		-0.07367, -0.00605, 1.07602,
	}
)

func mulMat3(m [9]float64, v rgb) rgb {
	return rgb{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}

func acesFitted(x rgb) rgb {
	v := mulMat3(acesInput, x)
	v = v.each(func(c float64) float64 {
		a := c*(c+0.0245786) - 0.000090537
		b := c*(0.983729*c+0.4329510) + 0.238081
		return a / b
	})
	return mulMat3(acesOutput, v)
}

// uchimura is the Gran Turismo operator: P max brightness, a contrast,
// m linear section start, l linear section length, c black tightness,
// b pedestal.
func uchimura(x, P, a, m, l, c, b float64) float64 {
	l0 := ((P - m) * l) / a
	S0 := m + l0
	S1 := m + a*l0
	C2 := (a * P) / (P - S1)
	CP := -C2 / P

	w0 := 1 - smoothstep(0, m, x)
	w2 := step(m+l0, x)
	w1 := 1 - w0 - w2

	T := m*math.Pow(x/m, c) + b
	S := P - (P-S1)*math.Exp(CP*(x-S0))
	L := m + a*(x-m)
	return T*w0 + L*w1 + S*w2
}

// lottes is AMD's operator: a contrast, d shoulder, hdrMax the input
// mapped to 1, midIn/midOut the anchored mid grey.
func lottes(x, a, d, hdrMax, midIn, midOut float64) float64 {
	ad := a * d
	denom := (math.Pow(hdrMax, ad) - math.Pow(midIn, ad)) * midOut
	b := (-math.Pow(midIn, a) + math.Pow(hdrMax, a)*midOut) / denom
	c := (math.Pow(hdrMax, ad)*math.Pow(midIn, a) - math.Pow(hdrMax, a)*math.Pow(midIn, ad)*midOut) / denom
	return math.Pow(x, a) / (math.Pow(x, ad)*b + c)
}

// hable is the Uncharted 2 partial curve.
func hable(x float64, p operatorParams) float64 {
	A, B, C := p.A.X, p.A.Y, p.A.Z
	D, E, F := p.B.X, p.B.Y, p.B.Z
	return ((x*(A*x+C*B) + D*E) / (x*(A*x+B) + D*F)) - E/F
}

func uncharted(x rgb, p operatorParams) rgb {
	white, bias := p.C.X, p.C.Y
	whiteScale := 1 / hable(white, p)
	return x.each(func(v float64) float64 {
		return hable(v*bias, p) * whiteScale
	})
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// linearToSRGB encodes a linear [0,1] value with the sRGB transfer function.
func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// srgbToLinear decodes an sRGB-encoded [0,1] value.
func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
