package tonefx

import (
	"image"
	"image/color"
)

// Canvas is a float RGBA render target for the CPU device. Values are not
// premultiplied and may exceed 1 for HDR content.
type Canvas struct {
	w, h int
	// Pix holds 4 floats per pixel, row-major.
	Pix []float32
	dev *CPUDevice
}

// NewCanvas allocates a zeroed canvas not tied to any device ledger.
func NewCanvas(w, h int) *Canvas {
	w, h = max(w, 1), max(h, 1)
	return &Canvas{w: w, h: h, Pix: make([]float32, 4*w*h)}
}

// CanvasFromImage converts img to a canvas. When linearize is set the color
// channels are decoded from sRGB to linear.
func CanvasFromImage(img image.Image, linearize bool) *Canvas {
	b := img.Bounds()
	c := NewCanvas(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			n := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			r, g, bl := float64(n.R)/255, float64(n.G)/255, float64(n.B)/255
			if linearize {
				r, g, bl = srgbToLinear(r), srgbToLinear(g), srgbToLinear(bl)
			}
			c.Set(x, y, float32(r), float32(g), float32(bl), float32(n.A)/255)
		}
	}
	return c
}

// Size implements Target.
func (c *Canvas) Size() (int, int) { return c.w, c.h }

// At returns the channels at (x, y).
func (c *Canvas) At(x, y int) (r, g, b, a float32) {
	i := (y*c.w + x) * 4
	return c.Pix[i], c.Pix[i+1], c.Pix[i+2], c.Pix[i+3]
}

// Set stores the channels at (x, y).
func (c *Canvas) Set(x, y int, r, g, b, a float32) {
	i := (y*c.w + x) * 4
	c.Pix[i], c.Pix[i+1], c.Pix[i+2], c.Pix[i+3] = r, g, b, a
}

// Fill sets every pixel to the given channels.
func (c *Canvas) Fill(r, g, b, a float32) {
	for i := 0; i < len(c.Pix); i += 4 {
		c.Pix[i], c.Pix[i+1], c.Pix[i+2], c.Pix[i+3] = r, g, b, a
	}
}

// Clear zeroes every channel.
func (c *Canvas) Clear() { clear(c.Pix) }

// clampedAt fetches with clamp-to-edge addressing.
func (c *Canvas) clampedAt(x, y int) rgb {
	x = min(max(x, 0), c.w-1)
	y = min(max(y, 0), c.h-1)
	i := (y*c.w + x) * 4
	return rgb{float64(c.Pix[i]), float64(c.Pix[i+1]), float64(c.Pix[i+2])}
}

// ToNRGBA quantizes the canvas to 8 bits per channel, clamping to [0,1].
// No transfer function is applied.
func (c *Canvas) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.w, c.h))
	for i, v := range c.Pix {
		img.Pix[i] = uint8(clamp01(float64(v))*255 + 0.5)
	}
	return img
}
