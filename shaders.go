package tonefx

import "strings"

// Uniform names shared by the Kage sources and the CPU kernels.
const (
	uniformExposure     = "Exposure"
	uniformSourceScale  = "SourceScale"
	uniformBloomEnabled = "BloomEnabled"
	uniformGradeEnabled = "GradeEnabled"
	uniformParamA       = "ParamA"
	uniformParamB       = "ParamB"
	uniformParamC       = "ParamC"
	uniformLUTSize      = "LUTSize"
	uniformSharpness    = "Sharpness"
	uniformDenoise      = "Denoise"
)

// Image slots of the tonemap pass.
const (
	slotSource = 0
	slotBloom  = 1
	slotLUT    = 2
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Ebitengine images are premultiplied;
// shaders un-premultiply before processing and re-premultiply the output.

// tonemapPrelude declares the uniforms every tonemap variant accepts and the
// shared sRGB and LUT helpers. Slot 0 is the HDR source, slot 1 bloom, slot
// 2 the LUT strip placed at the texture origin.
const tonemapPrelude = `//kage:unit pixels
package main

var Exposure float
var SourceScale float
var BloomEnabled float
var GradeEnabled float
var ParamA vec3
var ParamB vec3
var ParamC vec3
var LUTSize vec4

func unpremultiply(c vec4) vec4 {
	if c.a > 0 {
		c.rgb /= c.a
	}
	return c
}

func linearToSRGB(c vec3) vec3 {
	lo := c * 12.92
	hi := 1.055*pow(c, vec3(1.0/2.4)) - 0.055
	return mix(lo, hi, vec3(1)-step(c, vec3(0.0031308)))
}

func lutTexel(x, y float) vec3 {
	return imageSrc2UnsafeAt(imageSrc2Origin() + vec2(x+0.5, y+0.5)).rgb
}

func lutSlice(r, g, slice float) vec3 {
	n := LUTSize.w
	r0 := floor(r)
	g0 := floor(g)
	r1 := min(r0+1, n-1)
	g1 := min(g0+1, n-1)
	x := slice * n
	c00 := lutTexel(x+r0, g0)
	c10 := lutTexel(x+r1, g0)
	c01 := lutTexel(x+r0, g1)
	c11 := lutTexel(x+r1, g1)
	return mix(mix(c00, c10, r-r0), mix(c01, c11, r-r0), g-g0)
}

func grade(c vec3) vec3 {
	n := LUTSize.w
	p := clamp(c, vec3(0), vec3(1)) * (n - 1)
	b0 := floor(p.b)
	b1 := min(b0+1, n-1)
	return mix(lutSlice(p.r, p.g, b0), lutSlice(p.r, p.g, b1), p.b-b0)
}
`

const tonemapFragment = `
func Fragment(dst vec4, src vec2, color vec4) vec4 {
	s := unpremultiply(imageSrc0At(src))
	hdr := s.rgb * SourceScale
	if BloomEnabled > 0 {
		hdr += unpremultiply(imageSrc1At(src)).rgb * SourceScale
	}
	c := tonemapCurve(max(hdr*Exposure, vec3(0)))
	c = linearToSRGB(clamp(c, vec3(0), vec3(1)))
	if GradeEnabled > 0 {
		c = grade(c)
	}
	return vec4(c*s.a, s.a)
}
`

// passthroughFragment is the TonemapNone variant: bloom and grading only,
// no exposure, curve, or encoding.
const passthroughFragment = `
func Fragment(dst vec4, src vec2, color vec4) vec4 {
	s := unpremultiply(imageSrc0At(src))
	c := s.rgb
	if BloomEnabled > 0 {
		c += unpremultiply(imageSrc1At(src)).rgb
	}
	if GradeEnabled > 0 {
		c = grade(c)
	}
	return vec4(c*s.a, s.a)
}
`

var tonemapCurves = [tonemapCount]string{
	TonemapNone: ``,
	TonemapLinear: `
func tonemapCurve(x vec3) vec3 {
	return x
}
`,
	TonemapReinhard: `
func tonemapCurve(x vec3) vec3 {
	return x / (1.0 + x)
}
`,
	TonemapReinhard2: `
func tonemapCurve(x vec3) vec3 {
	w2 := 16.0
	return x * (1.0 + x/w2) / (1.0 + x)
}
`,
	TonemapFilmic: `
func tonemapCurve(x vec3) vec3 {
	v := max(vec3(0), x-0.004)
	r := (v * (6.2*v + 0.5)) / (v*(6.2*v+1.7) + 0.06)
	return pow(r, vec3(2.2))
}
`,
	TonemapUnreal: `
func tonemapCurve(x vec3) vec3 {
	return pow(x/(x+0.155)*1.019, vec3(2.2))
}
`,
	TonemapACES: `
func rrtAndODTFit(v vec3) vec3 {
	a := v*(v+0.0245786) - 0.000090537
	b := v*(0.983729*v+0.4329510) + 0.238081
	return a / b
}

func tonemapCurve(x vec3) vec3 {
	inMat := mat3(
		0.59719, 0.07600, 0.02840,
		0.35458, 0.90834, 0.13383,
		0.04823, 0.01566, 0.83777,
	)
	outMat := mat3(
		1.60475, -0.10208, -0.00327,
		-0.53108, 1.10813, -0.07276,
		-0.07367, -0.00605, 1.07602,
	)
	return outMat * rrtAndODTFit(inMat*x)
}
`,
	TonemapUchimura: `
func tonemapCurve(x vec3) vec3 {
	P := ParamA.x
	a := ParamA.y
	m := ParamA.z
	l := ParamB.x
	c := ParamB.y
	b := ParamB.z

	l0 := ((P - m) * l) / a
	S0 := m + l0
	S1 := m + a*l0
	C2 := (a * P) / (P - S1)
	CP := -C2 / P

	w0 := vec3(1) - smoothstep(vec3(0), vec3(m), x)
	w2 := step(vec3(m+l0), x)
	w1 := vec3(1) - w0 - w2

	T := m*pow(x/m, vec3(c)) + b
	S := P - (P-S1)*exp(CP*(x-S0))
	L := m + a*(x-m)
	return T*w0 + L*w1 + S*w2
}
`,
	TonemapLottes: `
func tonemapCurve(x vec3) vec3 {
	a := ParamA.x
	d := ParamA.y
	hdrMax := ParamA.z
	midIn := ParamB.x
	midOut := ParamB.y

	ad := a * d
	denom := (pow(hdrMax, ad) - pow(midIn, ad)) * midOut
	b := (-pow(midIn, a) + pow(hdrMax, a)*midOut) / denom
	c := (pow(hdrMax, ad)*pow(midIn, a) - pow(hdrMax, a)*pow(midIn, ad)*midOut) / denom
	return pow(x, vec3(a)) / (pow(x, vec3(ad))*b + c)
}
`,
	TonemapUncharted: `
func hable(x vec3) vec3 {
	A := ParamA.x
	B := ParamA.y
	C := ParamA.z
	D := ParamB.x
	E := ParamB.y
	F := ParamB.z
	return ((x*(A*x+C*B) + D*E) / (x*(A*x+B) + D*F)) - E/F
}

func tonemapCurve(x vec3) vec3 {
	return hable(x*ParamC.y) / hable(vec3(ParamC.x))
}
`,
}

// tonemapSource assembles the Kage source of one tonemap variant.
func tonemapSource(op ToneMapper) []byte {
	if !op.Valid() {
		op = TonemapNone
	}
	var b strings.Builder
	b.WriteString(tonemapPrelude)
	if op == TonemapNone {
		b.WriteString(passthroughFragment)
	} else {
		b.WriteString(tonemapCurves[op])
		b.WriteString(tonemapFragment)
	}
	return []byte(b.String())
}

// sharpenPrelude provides clamp-to-edge fetches from slot 0.
const sharpenPrelude = `//kage:unit pixels
package main

var Sharpness float
var Denoise float

func at(p vec2) vec3 {
	o := imageSrc0Origin()
	q := clamp(p, o+vec2(0.5), o+imageSrc0Size()-vec2(0.5))
	c := imageSrc0UnsafeAt(q)
	if c.a > 0 {
		c.rgb /= c.a
	}
	return c.rgb
}
`

const casShaderSrc = sharpenPrelude + `
func Fragment(dst vec4, src vec2, color vec4) vec4 {
	alpha := imageSrc0At(src).a
	a := at(src + vec2(-1, -1))
	b := at(src + vec2(0, -1))
	c := at(src + vec2(1, -1))
	d := at(src + vec2(-1, 0))
	e := at(src)
	f := at(src + vec2(1, 0))
	g := at(src + vec2(-1, 1))
	h := at(src + vec2(0, 1))
	i := at(src + vec2(1, 1))

	mn := min(min(min(d, e), min(f, b)), h)
	mn2 := min(mn, min(min(a, c), min(g, i)))
	mn += mn2
	mx := max(max(max(d, e), max(f, b)), h)
	mx2 := max(mx, max(max(a, c), max(g, i)))
	mx += mx2

	amp := clamp(min(mn, vec3(2)-mx)/max(mx, vec3(0.00001)), vec3(0), vec3(1))
	peak := -1.0 / mix(8.0, 5.0, Sharpness)
	w := sqrt(amp) * peak
	out := clamp(((b+d+f+h)*w+e)/(vec3(1)+4.0*w), vec3(0), vec3(1))
	return vec4(out*alpha, alpha)
}
`

const dlsShaderSrc = sharpenPrelude + `
func Fragment(dst vec4, src vec2, color vec4) vec4 {
	alpha := imageSrc0At(src).a
	e := at(src)
	blur := 4.0 * e
	blur += 2.0 * (at(src+vec2(0, -1)) + at(src+vec2(-1, 0)) + at(src+vec2(1, 0)) + at(src+vec2(0, 1)))
	blur += at(src+vec2(-1, -1)) + at(src+vec2(1, -1)) + at(src+vec2(-1, 1)) + at(src+vec2(1, 1))
	blur /= 16.0

	detail := dot(e-blur, vec3(0.2126, 0.7152, 0.0722)) * Sharpness
	detail -= clamp(detail, -Denoise, Denoise)
	out := clamp(e+vec3(detail), vec3(0), vec3(1))
	return vec4(out*alpha, alpha)
}
`

// kageSource returns the Kage source for id.
func kageSource(id ShaderID) ([]byte, bool) {
	switch id {
	case ShaderSharpenCAS:
		return []byte(casShaderSrc), true
	case ShaderSharpenDLS:
		return []byte(dlsShaderSrc), true
	}
	for op := TonemapNone; op < tonemapCount; op++ {
		if TonemapShader(op) == id {
			return tonemapSource(op), true
		}
	}
	return nil, false
}
