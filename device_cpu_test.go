package tonefx

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

// --- Canvas ---

func TestCanvasFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, G: 128, B: 0, A: 255})
	img.Set(1, 0, color.NRGBA{R: 0, G: 0, B: 255, A: 128})

	c := CanvasFromImage(img, false)
	r, g, b, a := c.At(0, 0)
	if r != 1 || b != 0 || a != 1 || !approxEqual(float64(g), 128.0/255, 1e-6) {
		t.Errorf("pixel 0 = %v %v %v %v", r, g, b, a)
	}

	lin := CanvasFromImage(img, true)
	_, g, _, _ = lin.At(0, 0)
	if !approxEqual(float64(g), srgbToLinear(128.0/255), 1e-6) {
		t.Errorf("linearized g = %v", g)
	}
	_, _, _, a = lin.At(1, 0)
	if !approxEqual(float64(a), 128.0/255, 1e-6) {
		t.Errorf("alpha must not be linearized: %v", a)
	}
}

func TestCanvasToNRGBAClamps(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Set(0, 0, 2, -1, 0.5, 1)
	img := c.ToNRGBA()
	got := img.NRGBAAt(0, 0)
	if got.R != 255 || got.G != 0 || got.B != 128 || got.A != 255 {
		t.Errorf("ToNRGBA = %v", got)
	}
}

func TestCanvasClampedAt(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(0, 0, 0.1, 0, 0, 1)
	c.Set(1, 1, 0.9, 0, 0, 1)
	if v := c.clampedAt(-5, -5)[0]; v != float64(float32(0.1)) {
		t.Errorf("clampedAt(-5,-5) = %v", v)
	}
	if v := c.clampedAt(9, 9)[0]; v != float64(float32(0.9)) {
		t.Errorf("clampedAt(9,9) = %v", v)
	}
}

// --- CPUDevice ---

func TestCPUDeviceLedger(t *testing.T) {
	dev := NewCPUDevice()
	prog, err := dev.Compile(ShaderSharpenCAS)
	if err != nil {
		t.Fatal(err)
	}
	quad, _ := dev.NewQuad()
	tex, err := dev.NewLUTTexture(NewIdentityLUT(4))
	if err != nil {
		t.Fatal(err)
	}
	tgt, _ := dev.NewTarget(4, 4)

	want := Resources{Programs: 1, Quads: 1, Textures: 1, Targets: 1, Compiles: 1}
	if got := dev.Resources(); got != want {
		t.Errorf("Resources = %+v, want %+v", got, want)
	}

	prog.Release()
	prog.Release()
	quad.Release()
	tex.Release()
	dev.FreeTarget(tgt)
	dev.FreeTarget(tgt)
	dev.FreeTarget(NewCanvas(1, 1)) // not ours

	want = Resources{Compiles: 1}
	if got := dev.Resources(); got != want {
		t.Errorf("Resources after release = %+v, want %+v", got, want)
	}
}

func TestCPUDeviceCompile(t *testing.T) {
	dev := NewCPUDevice()
	if _, err := dev.Compile("tonemap/agx"); !errors.Is(err, ErrUnknownShader) {
		t.Errorf("unknown id err = %v", err)
	}
	for op := TonemapNone; op < tonemapCount; op++ {
		if _, err := dev.Compile(TonemapShader(op)); err != nil {
			t.Errorf("Compile(%s): %v", op, err)
		}
	}
	dev.FailCompile = func(ShaderID) error { return errors.New("lost") }
	if _, err := dev.Compile(ShaderSharpenDLS); err == nil || !strings.Contains(err.Error(), "lost") {
		t.Errorf("FailCompile err = %v", err)
	}
}

func TestCPUDeviceDrawValidation(t *testing.T) {
	dev := NewCPUDevice()
	prog, _ := dev.Compile(ShaderSharpenCAS)
	quad, _ := dev.NewQuad()
	src := NewCanvas(4, 4)

	if err := prog.Draw(quad, NewCanvas(4, 4), NewCanvas(2, 2)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("size mismatch err = %v", err)
	}
	if err := prog.Draw(quad, &Surface{}, src); !errors.Is(err, ErrForeignTarget) {
		t.Errorf("foreign target err = %v", err)
	}
	if err := prog.Draw(nil, NewCanvas(4, 4), src); err == nil {
		t.Error("draw without quad succeeded")
	}
	quad.Release()
	if err := prog.Draw(quad, NewCanvas(4, 4), src); err == nil {
		t.Error("draw with released quad succeeded")
	}
	other := NewCPUDevice()
	otherQuad, _ := other.NewQuad()
	if err := prog.Draw(otherQuad, NewCanvas(4, 4), src); err == nil {
		t.Error("draw with another device's quad succeeded")
	}
	prog.Release()
	q2, _ := dev.NewQuad()
	if err := prog.Draw(q2, NewCanvas(4, 4), src); err == nil {
		t.Error("draw with released program succeeded")
	}
}

func TestCPUDeviceCopy(t *testing.T) {
	dev := NewCPUDevice()
	src := gradient(3, 3, 5)
	dst := NewCanvas(3, 3)
	if err := dev.Copy(dst, src); err != nil {
		t.Fatal(err)
	}
	if !canvasEqual(src, dst) {
		t.Error("Copy altered pixels")
	}
	if err := dev.Copy(NewCanvas(2, 2), src); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Copy size mismatch err = %v", err)
	}
}

func TestCPUDeviceSnapshot(t *testing.T) {
	dev := NewCPUDevice()
	c := NewCanvas(2, 1)
	c.Set(1, 0, 1, 0.5, 0, 1)
	img, err := dev.Snapshot(c)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{R: 255, G: 128, B: 0, A: 255}) {
		t.Errorf("Snapshot pixel = %v", got)
	}
}

func TestNewLUTTextureRejectsMalformed(t *testing.T) {
	dev := NewCPUDevice()
	for _, l := range []*LUT{nil, {Size: 1}, {Size: 4, Data: make([]float32, 10)}} {
		if _, err := dev.NewLUTTexture(l); err == nil {
			t.Errorf("NewLUTTexture(%v) succeeded", l)
		}
	}
	if dev.Resources().Textures != 0 {
		t.Error("failed textures were counted")
	}
}
