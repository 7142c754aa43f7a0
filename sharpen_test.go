package tonefx

import (
	"errors"
	"strings"
	"testing"
)

func sharpenConfig(m SharpenMethod) Config {
	cfg := DefaultConfig()
	cfg.Sharpen = m
	return cfg
}

// edge returns a w x h canvas split into a dark left half and a bright
// right half.
func edge(w, h int, dark, bright float32) *Canvas {
	c := NewCanvas(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := dark
			if x >= w/2 {
				v = bright
			}
			c.Set(x, y, v, v, v, 1)
		}
	}
	return c
}

func TestSharpenNoneCopies(t *testing.T) {
	dev := NewCPUDevice()
	p, _, _ := newTestPipeline(t, dev)
	if !p.RefreshState(sharpenConfig(SharpenNone)) {
		t.Fatal("RefreshState = false")
	}
	if dev.Resources().Programs != 1 { // tonemap passthrough only
		t.Errorf("Programs = %d, want 1", dev.Resources().Programs)
	}
	src := edge(8, 4, 0.2, 0.8)
	dst := NewCanvas(8, 4)
	p.RenderSharpen(src, dst)
	if !canvasEqual(src, dst) {
		t.Error("SharpenNone altered pixels")
	}
}

func TestSharpenFlatUnchanged(t *testing.T) {
	for _, m := range []SharpenMethod{SharpenCAS, SharpenDLS} {
		t.Run(m.String(), func(t *testing.T) {
			p, _, _ := newTestPipeline(t, NewCPUDevice())
			p.RefreshState(sharpenConfig(m))
			src := NewCanvas(6, 6)
			src.Fill(0.4, 0.6, 0.2, 1)
			dst := NewCanvas(6, 6)
			p.RenderSharpen(src, dst)
			for i := range src.Pix {
				if !approxEqual(float64(dst.Pix[i]), float64(src.Pix[i]), 1e-5) {
					t.Fatalf("Pix[%d] = %v, want %v", i, dst.Pix[i], src.Pix[i])
				}
			}
		})
	}
}

func TestSharpenIncreasesEdgeContrast(t *testing.T) {
	for _, m := range []SharpenMethod{SharpenCAS, SharpenDLS} {
		t.Run(m.String(), func(t *testing.T) {
			p, _, _ := newTestPipeline(t, NewCPUDevice())
			p.RefreshState(sharpenConfig(m))
			src := edge(8, 3, 0.2, 0.8)
			dst := NewCanvas(8, 3)
			p.RenderSharpen(src, dst)

			darkR, _, _, _ := dst.At(3, 1)
			brightR, _, _, _ := dst.At(4, 1)
			if darkR >= 0.2 {
				t.Errorf("dark side of edge = %v, want < 0.2", darkR)
			}
			if brightR <= 0.8 {
				t.Errorf("bright side of edge = %v, want > 0.8", brightR)
			}
			// Away from the edge nothing changes.
			farR, _, _, _ := dst.At(0, 1)
			if !approxEqual(float64(farR), 0.2, 1e-5) {
				t.Errorf("far pixel = %v, want 0.2", farR)
			}
		})
	}
}

func TestDLSIgnoresNoiseBelowFloor(t *testing.T) {
	n := [9]rgb{}
	for i := range n {
		n[i] = gray(0.5)
	}
	n[4] = gray(0.51)
	got := dlsPixel(n, dlsSharpness, dlsDenoise)
	for k := 0; k < 3; k++ {
		if !approxEqual(got[k], 0.51, 1e-9) {
			t.Errorf("channel %d = %v, want 0.51 untouched", k, got[k])
		}
	}
}

func TestSharpenPreservesAlpha(t *testing.T) {
	p, _, _ := newTestPipeline(t, NewCPUDevice())
	p.RefreshState(sharpenConfig(SharpenCAS))
	src := edge(4, 4, 0.1, 0.9)
	src.Set(2, 2, 0.9, 0.9, 0.9, 0.25)
	dst := NewCanvas(4, 4)
	p.RenderSharpen(src, dst)
	if _, _, _, a := dst.At(2, 2); a != 0.25 {
		t.Errorf("alpha = %v, want 0.25", a)
	}
}

func TestSetupSharpenCacheHit(t *testing.T) {
	dev := NewCPUDevice()
	p, _, _ := newTestPipeline(t, dev)
	cfg := sharpenConfig(SharpenCAS)
	p.RefreshState(cfg)
	before := dev.Resources().Compiles
	if !p.SetupSharpen() || !p.SetupSharpen() {
		t.Fatal("SetupSharpen = false")
	}
	if dev.Resources().Compiles != before {
		t.Errorf("repeat setup compiled again: %d -> %d", before, dev.Resources().Compiles)
	}
	if p.SharpenMethod() != SharpenCAS {
		t.Errorf("SharpenMethod = %v, want cas", p.SharpenMethod())
	}

	p.RefreshState(sharpenConfig(SharpenDLS))
	if p.SharpenMethod() != SharpenDLS {
		t.Errorf("SharpenMethod = %v, want dls", p.SharpenMethod())
	}
	if n := dev.Resources().Programs; n != 2 { // tonemap + dls
		t.Errorf("Programs = %d, want 2", n)
	}
	p.RefreshState(sharpenConfig(SharpenNone))
	if n := dev.Resources().Programs; n != 1 {
		t.Errorf("Programs after none = %d, want 1", n)
	}
}

func TestSetupSharpenFailure(t *testing.T) {
	dev := NewCPUDevice()
	dev.FailCompile = func(id ShaderID) error {
		if id == ShaderSharpenDLS {
			return errors.New("out of registers")
		}
		return nil
	}
	p, _, _ := newTestPipeline(t, dev)
	if p.RefreshState(sharpenConfig(SharpenDLS)) {
		t.Error("RefreshState = true with failing sharpen")
	}
	if p.SharpenMethod() != SharpenNone {
		t.Errorf("SharpenMethod = %v, want none", p.SharpenMethod())
	}
	if p.ToneMapper() != TonemapNone {
		t.Errorf("tonemap stage affected: %v", p.ToneMapper())
	}
	src := edge(4, 2, 0.1, 0.9)
	dst := NewCanvas(4, 2)
	p.RenderSharpen(src, dst)
	if !canvasEqual(src, dst) {
		t.Error("failed sharpen did not pass through")
	}
}

func TestSharpenSizeMismatch(t *testing.T) {
	p, buf, _ := newTestPipeline(t, NewCPUDevice())
	p.RefreshState(sharpenConfig(SharpenCAS))
	dst := NewCanvas(2, 2)
	dst.Fill(1, 0, 1, 1)
	p.RenderSharpen(NewCanvas(4, 4), dst)
	if r, g, _, _ := dst.At(0, 0); r != 1 || g != 0 {
		t.Error("mismatched pass wrote to destination")
	}
	if !strings.Contains(buf.String(), "source and destination differ") {
		t.Error("size mismatch not logged")
	}
}
