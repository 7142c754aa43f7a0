package tonefx

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// EbitenDevice runs the passes as Kage shaders on Ebitengine images.
// Targets must be *Surface values. All calls must happen on the game loop.
type EbitenDevice struct {
	res Resources
}

// NewEbitenDevice returns a device backed by Ebitengine.
func NewEbitenDevice() *EbitenDevice { return &EbitenDevice{} }

type ebitenProgram struct {
	dev      *EbitenDevice
	id       ShaderID
	shader   *ebiten.Shader
	uniforms map[string]any
	shaderOp ebiten.DrawTrianglesShaderOptions
}

// ebitenQuad is the fullscreen quad: four vertices, two triangles. Vertex
// positions are rewritten per draw to match the destination.
type ebitenQuad struct {
	dev      *EbitenDevice
	vertices []ebiten.Vertex
	indices  []uint16
}

// ebitenTexture keeps the LUT strip and a copy of it placed at the origin of
// an image sized like the current destination, since every image bound to a
// pass must share one size.
type ebitenTexture struct {
	dev    *EbitenDevice
	lut    *LUT
	strip  *ebiten.Image
	sized  *ebiten.Image
	sw, sh int
}

// Compile implements Device.
func (d *EbitenDevice) Compile(id ShaderID) (Program, error) {
	src, ok := kageSource(id)
	if !ok {
		return nil, fmt.Errorf("compile %s: %w", id, ErrUnknownShader)
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", id, err)
	}
	d.res.Programs++
	d.res.Compiles++
	return &ebitenProgram{
		dev:      d,
		id:       id,
		shader:   s,
		uniforms: make(map[string]any, 8),
	}, nil
}

// NewQuad implements Device.
func (d *EbitenDevice) NewQuad() (Quad, error) {
	q := &ebitenQuad{
		dev:      d,
		vertices: make([]ebiten.Vertex, 4),
		indices:  []uint16{0, 1, 2, 1, 3, 2},
	}
	for i := range q.vertices {
		q.vertices[i].ColorR = 1
		q.vertices[i].ColorG = 1
		q.vertices[i].ColorB = 1
		q.vertices[i].ColorA = 1
	}
	d.res.Quads++
	return q, nil
}

// NewLUTTexture implements Device.
func (d *EbitenDevice) NewLUTTexture(lut *LUT) (Texture, error) {
	if lut == nil || lut.Size < 2 || len(lut.Data) != lut.Size*lut.Size*lut.Size*3 {
		return nil, fmt.Errorf("lut texture: malformed table")
	}
	w, h := lut.StripSize()
	strip := ebiten.NewImage(w, h)
	strip.WritePixels(lut.StripPixels())
	d.res.Textures++
	return &ebitenTexture{dev: d, lut: lut, strip: strip}, nil
}

// NewTarget implements Device.
func (d *EbitenDevice) NewTarget(w, h int) (Target, error) {
	img := ebiten.NewImageWithOptions(
		image.Rect(0, 0, max(w, 1), max(h, 1)),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
	d.res.Targets++
	return &Surface{image: img, dev: d}, nil
}

// FreeTarget implements Device.
func (d *EbitenDevice) FreeTarget(t Target) {
	s, ok := t.(*Surface)
	if !ok || s.dev != d {
		return
	}
	s.Dispose()
	s.dev = nil
	d.res.Targets--
}

// Copy implements Device.
func (d *EbitenDevice) Copy(dst, src Target) error {
	ds, ok1 := dst.(*Surface)
	ss, ok2 := src.(*Surface)
	if !ok1 || !ok2 || ds.image == nil || ss.image == nil {
		return ErrForeignTarget
	}
	dw, dh := ds.Size()
	sw, sh := ss.Size()
	if dw != sw || dh != sh {
		return ErrSizeMismatch
	}
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	ds.image.DrawImage(ss.image, &op)
	return nil
}

// Snapshot implements Device. ReadPixels yields premultiplied RGBA, so the
// bytes back an *image.RGBA and the draw converts them to straight alpha.
func (d *EbitenDevice) Snapshot(t Target) (*image.NRGBA, error) {
	s, ok := t.(*Surface)
	if !ok || s.image == nil {
		return nil, ErrForeignTarget
	}
	w, h := s.Size()
	premul := image.NewRGBA(image.Rect(0, 0, w, h))
	s.image.ReadPixels(premul.Pix)

	img := image.NewNRGBA(premul.Rect)
	draw.Copy(img, image.Point{}, premul, premul.Rect, draw.Src, nil)
	return img, nil
}

// Resources implements Device.
func (d *EbitenDevice) Resources() Resources { return d.res }

func (p *ebitenProgram) SetFloat(name string, v float32) { p.uniforms[name] = v }

func (p *ebitenProgram) SetVec3(name string, v Vec3) { p.uniforms[name] = v.f32() }

func (p *ebitenProgram) SetVec4(name string, v Vec4) { p.uniforms[name] = v.f32() }

func (p *ebitenProgram) Draw(quad Quad, dst Target, srcs ...Target) error {
	if p.shader == nil {
		return fmt.Errorf("draw %s: program released", p.id)
	}
	q, ok := quad.(*ebitenQuad)
	if !ok || q == nil || q.vertices == nil {
		return fmt.Errorf("draw %s: no vertex buffer", p.id)
	}
	ds, ok := dst.(*Surface)
	if !ok || ds.image == nil {
		return ErrForeignTarget
	}
	w, h := ds.Size()
	if len(srcs) > len(p.shaderOp.Images) {
		return fmt.Errorf("draw %s: %d sources, max %d", p.id, len(srcs), len(p.shaderOp.Images))
	}

	clear(p.shaderOp.Images[:])
	var origin image.Point
	for i, s := range srcs {
		switch s := s.(type) {
		case nil:
		case *Surface:
			if s == nil || s.image == nil {
				continue
			}
			sw, sh := s.Size()
			if sw != w || sh != h {
				return ErrSizeMismatch
			}
			if i == 0 {
				origin = s.image.Bounds().Min
			}
			p.shaderOp.Images[i] = s.image
		case *ebitenTexture:
			img := s.imageFor(w, h)
			if img == nil {
				return ErrSizeMismatch
			}
			p.shaderOp.Images[i] = img
		default:
			return ErrForeignTarget
		}
	}

	q.layout(ds.image.Bounds(), origin)
	p.shaderOp.Uniforms = p.uniforms
	p.shaderOp.Blend = ebiten.BlendCopy
	ds.image.DrawTrianglesShader(q.vertices, q.indices, p.shader, &p.shaderOp)
	return nil
}

func (p *ebitenProgram) Release() {
	if p.shader == nil {
		return
	}
	p.shader.Deallocate()
	p.shader = nil
	p.dev.res.Programs--
}

// layout positions the quad over dst with source coordinates starting at
// origin.
func (q *ebitenQuad) layout(dst image.Rectangle, origin image.Point) {
	w, h := float32(dst.Dx()), float32(dst.Dy())
	dx, dy := float32(dst.Min.X), float32(dst.Min.Y)
	ox, oy := float32(origin.X), float32(origin.Y)
	corners := [4][2]float32{{0, 0}, {w, 0}, {0, h}, {w, h}}
	for i, c := range corners {
		q.vertices[i].DstX = dx + c[0]
		q.vertices[i].DstY = dy + c[1]
		q.vertices[i].SrcX = ox + c[0]
		q.vertices[i].SrcY = oy + c[1]
	}
}

func (q *ebitenQuad) Release() {
	if q.vertices == nil {
		return
	}
	q.vertices = nil
	q.indices = nil
	q.dev.res.Quads--
}

func (t *ebitenTexture) Size() (int, int) { return t.lut.StripSize() }

// Fits reports whether the strip can be placed inside a w x h pass.
func (t *ebitenTexture) Fits(w, h int) bool {
	sw, sh := t.lut.StripSize()
	return sw <= w && sh <= h
}

// imageFor returns an image of the pass size holding the strip at its
// origin, rebuilding it when the pass size changes.
func (t *ebitenTexture) imageFor(w, h int) *ebiten.Image {
	if t.strip == nil || !t.Fits(w, h) {
		return nil
	}
	if t.sized != nil && t.sw == w && t.sh == h {
		return t.sized
	}
	if t.sized != nil {
		t.sized.Deallocate()
	}
	t.sized = ebiten.NewImage(w, h)
	t.sw, t.sh = w, h
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	t.sized.DrawImage(t.strip, &op)
	return t.sized
}

func (t *ebitenTexture) Release() {
	if t.strip == nil {
		return
	}
	t.strip.Deallocate()
	t.strip = nil
	if t.sized != nil {
		t.sized.Deallocate()
		t.sized = nil
	}
	t.dev.res.Textures--
}
