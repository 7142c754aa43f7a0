package tonefx

import (
	"errors"
	"image"
)

// Target is a render target lent to the pipeline by the renderer. The
// pipeline reads from and writes into targets but never owns them, except
// for intermediates it allocates through Device.NewTarget.
type Target interface {
	Size() (w, h int)
}

// ShaderID names a compiled screen-space shader variant.
type ShaderID string

// Shader variant ids. Tonemap variants are "tonemap/<operator>".
const (
	ShaderSharpenCAS ShaderID = "sharpen/cas"
	ShaderSharpenDLS ShaderID = "sharpen/dls"
)

// TonemapShader returns the variant id for op.
func TonemapShader(op ToneMapper) ShaderID {
	if !op.Valid() {
		op = TonemapNone
	}
	return ShaderID("tonemap/" + op.String())
}

// SharpenShader returns the variant id for m, or "" for SharpenNone.
func SharpenShader(m SharpenMethod) ShaderID {
	switch m {
	case SharpenCAS:
		return ShaderSharpenCAS
	case SharpenDLS:
		return ShaderSharpenDLS
	}
	return ""
}

// Program is a compiled shader variant. Uniform values persist across
// draws until overwritten.
type Program interface {
	SetFloat(name string, v float32)
	SetVec3(name string, v Vec3)
	SetVec4(name string, v Vec4)
	// Draw runs one fullscreen pass over dst using quad. srcs fills the
	// shader's image slots in order; nil slots are unbound.
	Draw(quad Quad, dst Target, srcs ...Target) error
	Release()
}

// Quad is the shared fullscreen-quad vertex buffer.
type Quad interface {
	Release()
}

// Texture is a device-resident lookup texture. It can be passed to
// Program.Draw as a source.
type Texture interface {
	Target
	// Fits reports whether the texture can be bound to a pass over a
	// w x h destination.
	Fits(w, h int) bool
	Release()
}

// Device is the GPU (or software) backend the pipeline drives.
type Device interface {
	Compile(id ShaderID) (Program, error)
	NewQuad() (Quad, error)
	NewLUTTexture(lut *LUT) (Texture, error)
	NewTarget(w, h int) (Target, error)
	FreeTarget(t Target)
	// Copy overwrites dst with src unchanged.
	Copy(dst, src Target) error
	// Snapshot reads a target back as straight-alpha 8-bit pixels.
	Snapshot(t Target) (*image.NRGBA, error)
	Resources() Resources
}

// Resources counts live device objects.
type Resources struct {
	Programs int
	Quads    int
	Textures int
	Targets  int
	// Compiles counts every successful Compile over the device lifetime.
	Compiles int
}

var (
	// ErrUnknownShader is returned by Compile for ids a device has no
	// source for.
	ErrUnknownShader = errors.New("tonefx: unknown shader")
	// ErrForeignTarget is returned when a target created by another device
	// is handed to a device.
	ErrForeignTarget = errors.New("tonefx: target belongs to a different device")
	// ErrSizeMismatch is returned when a pass is given targets of
	// different sizes.
	ErrSizeMismatch = errors.New("tonefx: target size mismatch")
)
