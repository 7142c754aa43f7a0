package tonefx

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	// Strip decoders.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

// maxLUTSize bounds the cube edge accepted from files.
const maxLUTSize = 128

// LUT is a 3D color lookup table with Size entries per axis. Data holds
// Size^3 RGB triples with red varying fastest, then green, then blue.
type LUT struct {
	Size int
	Data []float32
}

// NewIdentityLUT returns a LUT that maps every color to itself.
func NewIdentityLUT(size int) *LUT {
	size = max(size, 2)
	l := &LUT{Size: size, Data: make([]float32, size*size*size*3)}
	s := float32(size - 1)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				i := l.index(r, g, b)
				l.Data[i], l.Data[i+1], l.Data[i+2] = float32(r)/s, float32(g)/s, float32(b)/s
			}
		}
	}
	return l
}

func (l *LUT) index(r, g, b int) int {
	return ((b*l.Size+g)*l.Size + r) * 3
}

func (l *LUT) entry(r, g, b int) rgb {
	i := l.index(r, g, b)
	return rgb{float64(l.Data[i]), float64(l.Data[i+1]), float64(l.Data[i+2])}
}

// StripSize returns the dimensions of the horizontal strip layout: Size
// slices of Size x Size laid side by side, blue selecting the slice.
func (l *LUT) StripSize() (w, h int) { return l.Size * l.Size, l.Size }

// Extent returns the LUT size descriptor (1/w, 1/h, w, h) of the strip.
func (l *LUT) Extent() Vec4 {
	w, h := l.StripSize()
	return Vec4{1 / float64(w), 1 / float64(h), float64(w), float64(h)}
}

// Sample looks c up with trilinear filtering. Inputs are clamped to [0,1]
// and scaled so 0 and 1 land on the first and last texel centers.
func (l *LUT) Sample(c rgb) rgb {
	n := float64(l.Size - 1)
	var i0, i1 [3]int
	var f [3]float64
	for k := 0; k < 3; k++ {
		v := clamp01(c[k]) * n
		lo := int(v)
		if lo >= l.Size-1 {
			lo = l.Size - 2
		}
		i0[k], i1[k] = lo, lo+1
		f[k] = v - float64(lo)
	}
	lerp := func(a, b rgb, t float64) rgb {
		return rgb{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
	}
	c00 := lerp(l.entry(i0[0], i0[1], i0[2]), l.entry(i1[0], i0[1], i0[2]), f[0])
	c10 := lerp(l.entry(i0[0], i1[1], i0[2]), l.entry(i1[0], i1[1], i0[2]), f[0])
	c01 := lerp(l.entry(i0[0], i0[1], i1[2]), l.entry(i1[0], i0[1], i1[2]), f[0])
	c11 := lerp(l.entry(i0[0], i1[1], i1[2]), l.entry(i1[0], i1[1], i1[2]), f[0])
	return lerp(lerp(c00, c10, f[1]), lerp(c01, c11, f[1]), f[2])
}

// StripPixels renders the LUT as premultiplied opaque RGBA bytes in the
// strip layout, ready for upload.
func (l *LUT) StripPixels() []byte {
	w, h := l.StripSize()
	pix := make([]byte, w*h*4)
	for b := 0; b < l.Size; b++ {
		for g := 0; g < l.Size; g++ {
			for r := 0; r < l.Size; r++ {
				e := l.entry(r, g, b)
				off := (g*w + b*l.Size + r) * 4
				pix[off+0] = uint8(clamp01(e[0])*255 + 0.5)
				pix[off+1] = uint8(clamp01(e[1])*255 + 0.5)
				pix[off+2] = uint8(clamp01(e[2])*255 + 0.5)
				pix[off+3] = 255
			}
		}
	}
	return pix
}

// LUTFromStrip builds a LUT from a strip image whose width is the square
// of its height.
func LUTFromStrip(img image.Image) (*LUT, error) {
	b := img.Bounds()
	size := b.Dy()
	if size < 2 || size > maxLUTSize || b.Dx() != size*size {
		return nil, fmt.Errorf("lut strip %dx%d: width must be height squared", b.Dx(), b.Dy())
	}
	l := &LUT{Size: size, Data: make([]float32, size*size*size*3)}
	for bl := 0; bl < size; bl++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				n := color.NRGBAModel.Convert(img.At(b.Min.X+bl*size+r, b.Min.Y+g)).(color.NRGBA)
				i := l.index(r, g, bl)
				l.Data[i] = float32(n.R) / 255
				l.Data[i+1] = float32(n.G) / 255
				l.Data[i+2] = float32(n.B) / 255
			}
		}
	}
	return l, nil
}

// ParseCube reads an Adobe .cube 3D table. Only the default [0,1] domain
// is accepted.
func ParseCube(r io.Reader) (*LUT, error) {
	sc := bufio.NewScanner(r)
	var l *LUT
	n := 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "TITLE":
			continue
		case "LUT_1D_SIZE":
			return nil, fmt.Errorf("cube line %d: 1D tables are not supported", line)
		case "LUT_3D_SIZE":
			if len(fields) != 2 {
				return nil, fmt.Errorf("cube line %d: malformed LUT_3D_SIZE", line)
			}
			size, err := strconv.Atoi(fields[1])
			if err != nil || size < 2 || size > maxLUTSize {
				return nil, fmt.Errorf("cube line %d: bad size %q", line, fields[1])
			}
			l = &LUT{Size: size, Data: make([]float32, 0, size*size*size*3)}
			continue
		case "DOMAIN_MIN", "DOMAIN_MAX":
			want := 0.0
			if fields[0] == "DOMAIN_MAX" {
				want = 1
			}
			for _, f := range fields[1:] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil || v != want {
					return nil, fmt.Errorf("cube line %d: only the [0,1] domain is supported", line)
				}
			}
			continue
		}
		if l == nil {
			return nil, fmt.Errorf("cube line %d: data before LUT_3D_SIZE", line)
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("cube line %d: want 3 values, got %d", line, len(fields))
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("cube line %d: %w", line, err)
			}
			l.Data = append(l.Data, float32(v))
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cube: %w", err)
	}
	if l == nil {
		return nil, fmt.Errorf("cube: missing LUT_3D_SIZE")
	}
	if want := l.Size * l.Size * l.Size; n != want {
		return nil, fmt.Errorf("cube: %d entries, want %d", n, want)
	}
	return l, nil
}

// LUTLoader reads LUT files through a filesystem and keeps decoded tables
// in a bounded cache keyed by path.
type LUTLoader struct {
	fs    afero.Fs
	cache *lru.Cache[string, *LUT]
}

// NewLUTLoader creates a loader. A nil fsys uses the OS filesystem; a
// non-positive cacheSize defaults to 8.
func NewLUTLoader(fsys afero.Fs, cacheSize int) *LUTLoader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if cacheSize <= 0 {
		cacheSize = 8
	}
	cache, err := lru.New[string, *LUT](cacheSize)
	if err != nil {
		// Only reachable with a non-positive size, excluded above.
		panic("tonefx: lut cache: " + err.Error())
	}
	return &LUTLoader{fs: fsys, cache: cache}
}

// Load returns the LUT at path, decoding it on first use. Files ending in
// .cube are parsed as Adobe cube tables; anything else is decoded as a
// strip image.
func (l *LUTLoader) Load(path string) (*LUT, error) {
	if lut, ok := l.cache.Get(path); ok {
		return lut, nil
	}
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lut %s: %w", path, err)
	}
	defer f.Close()

	var lut *LUT
	if strings.EqualFold(filepath.Ext(path), ".cube") {
		lut, err = ParseCube(f)
	} else {
		var img image.Image
		img, _, err = image.Decode(f)
		if err == nil {
			lut, err = LUTFromStrip(img)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load lut %s: %w", path, err)
	}
	l.cache.Add(path, lut)
	return lut, nil
}

// Forget drops path from the cache so the next Load re-reads the file.
func (l *LUTLoader) Forget(path string) { l.cache.Remove(path) }

// Cached reports whether path is currently cached.
func (l *LUTLoader) Cached(path string) bool { return l.cache.Contains(path) }
