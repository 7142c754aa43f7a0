package tonefx

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Surface is an Ebitengine render target. Surfaces wrapping a caller's image
// via WrapImage are borrowed; surfaces from EbitenDevice.NewTarget are owned
// by the device that made them.
type Surface struct {
	image *ebiten.Image
	dev   *EbitenDevice
}

// WrapImage lends img to the pipeline as a Target. The caller keeps
// ownership of img.
func WrapImage(img *ebiten.Image) *Surface {
	return &Surface{image: img}
}

// NewSurface creates a caller-owned offscreen surface of the given size.
func NewSurface(w, h int) *Surface {
	return &Surface{image: ebiten.NewImage(max(w, 1), max(h, 1))}
}

// Image returns the underlying *ebiten.Image for direct drawing.
func (s *Surface) Image() *ebiten.Image {
	return s.image
}

// Size implements Target.
func (s *Surface) Size() (int, int) {
	if s.image == nil {
		return 0, 0
	}
	b := s.image.Bounds()
	return b.Dx(), b.Dy()
}

// Bounds returns the image bounds, which may have a non-zero origin for
// sub-images.
func (s *Surface) Bounds() image.Rectangle {
	if s.image == nil {
		return image.Rectangle{}
	}
	return s.image.Bounds()
}

// Clear fills the surface with transparent black.
func (s *Surface) Clear() {
	if s.image != nil {
		s.image.Clear()
	}
}

// Resize deallocates the old image and creates a new one at the given
// dimensions. Only meaningful for surfaces the caller owns.
func (s *Surface) Resize(w, h int) {
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(max(w, 1), max(h, 1))
}

// Dispose deallocates the underlying image. The Surface should not be used
// after calling Dispose.
func (s *Surface) Dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}
