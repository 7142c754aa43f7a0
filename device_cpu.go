package tonefx

import (
	"fmt"
	"image"
	"math"
)

// CPUDevice runs every pass in software on *Canvas targets. It implements
// the same shader variants as EbitenDevice and is used for offline
// processing and tests.
type CPUDevice struct {
	// FailCompile, when set, is consulted before each Compile; a non-nil
	// error fails the compile.
	FailCompile func(id ShaderID) error

	res Resources
}

// NewCPUDevice returns a software device.
func NewCPUDevice() *CPUDevice { return &CPUDevice{} }

type cpuKernel func(p *cpuProgram, dst *Canvas, srcs []Target) error

type cpuProgram struct {
	dev      *CPUDevice
	id       ShaderID
	kernel   cpuKernel
	floats   map[string]float32
	vecs     map[string][]float32
	released bool
}

type cpuQuad struct {
	dev      *CPUDevice
	released bool
}

type cpuTexture struct {
	dev      *CPUDevice
	lut      *LUT
	released bool
}

// Compile implements Device.
func (d *CPUDevice) Compile(id ShaderID) (Program, error) {
	if d.FailCompile != nil {
		if err := d.FailCompile(id); err != nil {
			return nil, fmt.Errorf("compile %s: %w", id, err)
		}
	}
	k, ok := cpuKernelFor(id)
	if !ok {
		return nil, fmt.Errorf("compile %s: %w", id, ErrUnknownShader)
	}
	d.res.Programs++
	d.res.Compiles++
	return &cpuProgram{
		dev:    d,
		id:     id,
		kernel: k,
		floats: make(map[string]float32, 4),
		vecs:   make(map[string][]float32, 4),
	}, nil
}

// NewQuad implements Device.
func (d *CPUDevice) NewQuad() (Quad, error) {
	d.res.Quads++
	return &cpuQuad{dev: d}, nil
}

// NewLUTTexture implements Device.
func (d *CPUDevice) NewLUTTexture(lut *LUT) (Texture, error) {
	if lut == nil || lut.Size < 2 || len(lut.Data) != lut.Size*lut.Size*lut.Size*3 {
		return nil, fmt.Errorf("lut texture: malformed table")
	}
	d.res.Textures++
	return &cpuTexture{dev: d, lut: lut}, nil
}

// NewTarget implements Device.
func (d *CPUDevice) NewTarget(w, h int) (Target, error) {
	c := NewCanvas(w, h)
	c.dev = d
	d.res.Targets++
	return c, nil
}

// FreeTarget implements Device.
func (d *CPUDevice) FreeTarget(t Target) {
	c, ok := t.(*Canvas)
	if !ok || c.dev != d {
		return
	}
	c.dev = nil
	c.Pix = nil
	d.res.Targets--
}

// Copy implements Device.
func (d *CPUDevice) Copy(dst, src Target) error {
	dc, ok1 := dst.(*Canvas)
	sc, ok2 := src.(*Canvas)
	if !ok1 || !ok2 {
		return ErrForeignTarget
	}
	if dc.w != sc.w || dc.h != sc.h {
		return ErrSizeMismatch
	}
	copy(dc.Pix, sc.Pix)
	return nil
}

// Snapshot implements Device.
func (d *CPUDevice) Snapshot(t Target) (*image.NRGBA, error) {
	c, ok := t.(*Canvas)
	if !ok {
		return nil, ErrForeignTarget
	}
	return c.ToNRGBA(), nil
}

// Resources implements Device.
func (d *CPUDevice) Resources() Resources { return d.res }

func (p *cpuProgram) SetFloat(name string, v float32) { p.floats[name] = v }

func (p *cpuProgram) SetVec3(name string, v Vec3) { p.vecs[name] = v.f32() }

func (p *cpuProgram) SetVec4(name string, v Vec4) { p.vecs[name] = v.f32() }

func (p *cpuProgram) float(name string, def float32) float64 {
	if v, ok := p.floats[name]; ok {
		return float64(v)
	}
	return float64(def)
}

func (p *cpuProgram) vec3(name string) Vec3 {
	v := p.vecs[name]
	if len(v) < 3 {
		return Vec3{}
	}
	return Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (p *cpuProgram) Draw(quad Quad, dst Target, srcs ...Target) error {
	if p.released {
		return fmt.Errorf("draw %s: program released", p.id)
	}
	q, ok := quad.(*cpuQuad)
	if !ok || q == nil || q.released || q.dev != p.dev {
		return fmt.Errorf("draw %s: no vertex buffer", p.id)
	}
	dc, ok := dst.(*Canvas)
	if !ok {
		return ErrForeignTarget
	}
	for _, s := range srcs {
		switch s := s.(type) {
		case nil:
		case *Canvas:
			if s == nil {
				continue
			}
			if s.w != dc.w || s.h != dc.h {
				return ErrSizeMismatch
			}
		case *cpuTexture:
		default:
			return ErrForeignTarget
		}
	}
	return p.kernel(p, dc, srcs)
}

func (p *cpuProgram) Release() {
	if p.released {
		return
	}
	p.released = true
	p.dev.res.Programs--
}

func (q *cpuQuad) Release() {
	if q.released {
		return
	}
	q.released = true
	q.dev.res.Quads--
}

func (t *cpuTexture) Size() (int, int) { return t.lut.StripSize() }

// Fits is always true; kernels sample the table directly.
func (t *cpuTexture) Fits(w, h int) bool { return true }

func (t *cpuTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.dev.res.Textures--
}

// --- kernels ---

func cpuKernelFor(id ShaderID) (cpuKernel, bool) {
	switch id {
	case ShaderSharpenCAS:
		return casKernel, true
	case ShaderSharpenDLS:
		return dlsKernel, true
	}
	for op := TonemapNone; op < tonemapCount; op++ {
		if TonemapShader(op) == id {
			return tonemapKernel(op), true
		}
	}
	return nil, false
}

func canvasSlot(srcs []Target, i int) *Canvas {
	if i >= len(srcs) {
		return nil
	}
	c, _ := srcs[i].(*Canvas)
	return c
}

// tonemapKernel mirrors the Kage tonemap prelude: slot 0 source, slot 1
// bloom, slot 2 LUT.
func tonemapKernel(op ToneMapper) cpuKernel {
	return func(p *cpuProgram, dst *Canvas, srcs []Target) error {
		src := canvasSlot(srcs, 0)
		if src == nil {
			return fmt.Errorf("tonemap: missing source")
		}
		bloom := canvasSlot(srcs, 1)
		if p.float(uniformBloomEnabled, 0) == 0 {
			bloom = nil
		}
		var lut *LUT
		if len(srcs) > 2 && p.float(uniformGradeEnabled, 0) != 0 {
			if t, ok := srcs[2].(*cpuTexture); ok && t != nil && !t.released {
				lut = t.lut
			}
		}
		exposure := p.float(uniformExposure, 1)
		scale := p.float(uniformSourceScale, 1)
		params := operatorParams{
			A: p.vec3(uniformParamA),
			B: p.vec3(uniformParamB),
			C: p.vec3(uniformParamC),
		}
		for i := 0; i < len(dst.Pix); i += 4 {
			c := rgb{float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2])}
			a := src.Pix[i+3]
			if op == TonemapNone {
				if bloom != nil {
					c[0] += float64(bloom.Pix[i])
					c[1] += float64(bloom.Pix[i+1])
					c[2] += float64(bloom.Pix[i+2])
				}
			} else {
				for k := 0; k < 3; k++ {
					v := c[k] * scale
					if bloom != nil {
						v += float64(bloom.Pix[i+k]) * scale
					}
					c[k] = math.Max(v*exposure, 0)
				}
				c = applyCurve(op, c, params)
				c = c.each(func(v float64) float64 { return linearToSRGB(clamp01(v)) })
			}
			if lut != nil {
				c = lut.Sample(c)
			}
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = float32(c[0]), float32(c[1]), float32(c[2]), a
		}
		return nil
	}
}

// neighborhood returns the 3x3 block around (x, y) in row-major order.
func neighborhood(c *Canvas, x, y int) [9]rgb {
	var n [9]rgb
	k := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			n[k] = c.clampedAt(x+dx, y+dy)
			k++
		}
	}
	return n
}

func casKernel(p *cpuProgram, dst *Canvas, srcs []Target) error {
	src := canvasSlot(srcs, 0)
	if src == nil {
		return fmt.Errorf("cas: missing source")
	}
	sharpness := p.float(uniformSharpness, casSharpness)
	for y := 0; y < dst.h; y++ {
		for x := 0; x < dst.w; x++ {
			out := casPixel(neighborhood(src, x, y), sharpness)
			_, _, _, a := src.At(x, y)
			dst.Set(x, y, float32(out[0]), float32(out[1]), float32(out[2]), a)
		}
	}
	return nil
}

// casPixel is contrast-adaptive sharpening over a 3x3 block:
//
//	a b c
//	d e f
//	g h i
func casPixel(n [9]rgb, sharpness float64) rgb {
	a, b, c, d, e, f, g, h, i := n[0], n[1], n[2], n[3], n[4], n[5], n[6], n[7], n[8]
	peak := -1 / (8 + (5-8)*sharpness)
	var out rgb
	for k := 0; k < 3; k++ {
		mn := math.Min(math.Min(math.Min(d[k], e[k]), math.Min(f[k], b[k])), h[k])
		mn2 := math.Min(mn, math.Min(math.Min(a[k], c[k]), math.Min(g[k], i[k])))
		mn += mn2
		mx := math.Max(math.Max(math.Max(d[k], e[k]), math.Max(f[k], b[k])), h[k])
		mx2 := math.Max(mx, math.Max(math.Max(a[k], c[k]), math.Max(g[k], i[k])))
		mx += mx2

		amp := 0.0
		if mx > 0 {
			amp = clamp01(math.Min(mn, 2-mx) / mx)
		}
		w := math.Sqrt(amp) * peak
		window := b[k] + d[k] + f[k] + h[k]
		out[k] = clamp01((window*w + e[k]) / (1 + 4*w))
	}
	return out
}

func dlsKernel(p *cpuProgram, dst *Canvas, srcs []Target) error {
	src := canvasSlot(srcs, 0)
	if src == nil {
		return fmt.Errorf("dls: missing source")
	}
	sharpness := p.float(uniformSharpness, dlsSharpness)
	denoise := p.float(uniformDenoise, dlsDenoise)
	for y := 0; y < dst.h; y++ {
		for x := 0; x < dst.w; x++ {
			out := dlsPixel(neighborhood(src, x, y), sharpness, denoise)
			_, _, _, a := src.At(x, y)
			dst.Set(x, y, float32(out[0]), float32(out[1]), float32(out[2]), a)
		}
	}
	return nil
}

// dlsPixel adds back the luma detail lost to a 3x3 gaussian, minus a noise
// floor.
func dlsPixel(n [9]rgb, sharpness, denoise float64) rgb {
	e := n[4]
	var blur rgb
	weights := [9]float64{1, 2, 1, 2, 4, 2, 1, 2, 1}
	for j, w := range weights {
		for k := 0; k < 3; k++ {
			blur[k] += n[j][k] * w / 16
		}
	}
	detail := (e[0]-blur[0])*lumaR + (e[1]-blur[1])*lumaG + (e[2]-blur[2])*lumaB
	dl := detail * sharpness
	dl -= math.Max(-denoise, math.Min(denoise, dl))
	return rgb{clamp01(e[0] + dl), clamp01(e[1] + dl), clamp01(e[2] + dl)}
}

// Rec. 709 luma weights.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)
