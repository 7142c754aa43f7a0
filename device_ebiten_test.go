package tonefx

import (
	"errors"
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestEbitenTargetLedger(t *testing.T) {
	dev := NewEbitenDevice()
	tgt, err := dev.NewTarget(32, 16)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := tgt.Size(); w != 32 || h != 16 {
		t.Errorf("Size = %d x %d, want 32 x 16", w, h)
	}
	if dev.Resources().Targets != 1 {
		t.Errorf("Targets = %d, want 1", dev.Resources().Targets)
	}
	dev.FreeTarget(tgt)
	dev.FreeTarget(tgt)
	dev.FreeTarget(NewSurface(4, 4)) // caller-owned
	if dev.Resources().Targets != 0 {
		t.Errorf("Targets after free = %d, want 0", dev.Resources().Targets)
	}
}

func TestEbitenCopyValidation(t *testing.T) {
	dev := NewEbitenDevice()
	a := NewSurface(8, 8)
	defer a.Dispose()
	b := NewSurface(4, 4)
	defer b.Dispose()
	if err := dev.Copy(a, b); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Copy size mismatch err = %v", err)
	}
	if err := dev.Copy(a, NewCanvas(8, 8)); !errors.Is(err, ErrForeignTarget) {
		t.Errorf("Copy canvas err = %v", err)
	}
}

func TestEbitenQuadLayout(t *testing.T) {
	dev := NewEbitenDevice()
	q, _ := dev.NewQuad()
	eq := q.(*ebitenQuad)
	eq.layout(image.Rect(10, 20, 110, 70), image.Pt(5, 5))

	want := [4][4]float32{
		{10, 20, 5, 5},
		{110, 20, 105, 5},
		{10, 70, 5, 55},
		{110, 70, 105, 55},
	}
	for i, v := range eq.vertices {
		got := [4]float32{v.DstX, v.DstY, v.SrcX, v.SrcY}
		if got != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, got, want[i])
		}
	}
	q.Release()
	q.Release()
	if dev.Resources().Quads != 0 {
		t.Errorf("Quads = %d, want 0", dev.Resources().Quads)
	}
}

func TestEbitenLUTTextureFits(t *testing.T) {
	dev := NewEbitenDevice()
	tex, err := dev.NewLUTTexture(NewIdentityLUT(16))
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Release()
	if w, h := tex.Size(); w != 256 || h != 16 {
		t.Errorf("strip = %d x %d, want 256 x 16", w, h)
	}
	if !tex.Fits(640, 480) {
		t.Error("strip should fit a 640x480 pass")
	}
	if tex.Fits(128, 128) {
		t.Error("strip should not fit a 128x128 pass")
	}
	et := tex.(*ebitenTexture)
	img := et.imageFor(320, 240)
	if img == nil || img.Bounds().Dx() != 320 || img.Bounds().Dy() != 240 {
		t.Fatalf("imageFor(320, 240) = %v", img)
	}
	if et.imageFor(320, 240) != img {
		t.Error("sized image rebuilt for the same pass size")
	}
	if et.imageFor(100, 10) != nil {
		t.Error("imageFor returned an image for a pass the strip does not fit")
	}
}

func TestSurfaceResize(t *testing.T) {
	s := WrapImage(ebiten.NewImage(10, 10))
	s.Resize(20, 5)
	if w, h := s.Size(); w != 20 || h != 5 {
		t.Errorf("Size = %d x %d, want 20 x 5", w, h)
	}
	s.Dispose()
	if w, h := s.Size(); w != 0 || h != 0 {
		t.Errorf("disposed Size = %d x %d", w, h)
	}
	if s.Bounds() != (image.Rectangle{}) {
		t.Error("disposed Bounds not empty")
	}
}

func TestKageCompiles(t *testing.T) {
	dev := NewEbitenDevice()
	for _, id := range allShaderIDs() {
		prog, err := dev.Compile(id)
		if err != nil {
			t.Errorf("Compile(%s): %v", id, err)
			continue
		}
		prog.Release()
	}
	if _, err := dev.Compile("sharpen/fsr"); !errors.Is(err, ErrUnknownShader) {
		t.Errorf("Compile(unknown) err = %v", err)
	}
	if n := dev.Resources().Programs; n != 0 {
		t.Errorf("Programs = %d after release, want 0", n)
	}
}
