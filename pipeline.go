package tonefx

import (
	"os"
	"reflect"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options configures a Pipeline. The zero value is usable.
type Options struct {
	// Logger receives diagnostics. Nil logs to stderr.
	Logger *zerolog.Logger
	// Fs is used for LUT files and captures. Nil uses the OS filesystem.
	Fs afero.Fs
	// LUTCacheSize bounds the decoded LUT cache. Zero uses the default.
	LUTCacheSize int
	// CaptureDir is where Capture writes PNG files. Empty uses "captures".
	CaptureDir string
}

// Pipeline owns the post chain of one renderer: the tonemap and sharpen
// programs, the color grade texture, the fullscreen quad and the pooled
// intermediates. It is not safe for concurrent use; every call belongs on
// the render thread.
type Pipeline struct {
	dev Device
	log zerolog.Logger
	cfg Config

	exposure exposureFade

	tonemap tonemapStage
	sharpen sharpenStage
	grade   gradeStage

	quad         Quad
	warnedNoQuad bool

	pool targetPool
	luts *LUTLoader

	fs           afero.Fs
	captureDir   string
	captureQueue []string

	warnedBloom bool
	stats       Stats
}

type tonemapStage struct {
	prog  Program
	op    ToneMapper
	ready bool
}

type sharpenStage struct {
	prog   Program
	method SharpenMethod
	ready  bool
}

type gradeStage struct {
	tex       Texture
	lut       *LUT
	path      string
	ready     bool
	warnedFit bool
}

// New creates a pipeline on dev with DefaultConfig and a live fullscreen
// quad. Call RefreshState to apply settings.
func New(dev Device, opts *Options) *Pipeline {
	if opts == nil {
		opts = &Options{}
	}
	p := &Pipeline{
		dev:        dev,
		cfg:        DefaultConfig(),
		fs:         opts.Fs,
		captureDir: opts.CaptureDir,
	}
	if opts.Logger != nil {
		p.log = *opts.Logger
	} else {
		p.log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	p.log = p.log.With().Str("component", "tonefx").Logger()
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.captureDir == "" {
		p.captureDir = "captures"
	}
	p.luts = NewLUTLoader(p.fs, opts.LUTCacheSize)
	p.exposure.current = p.cfg.Exposure
	p.exposure.target = p.cfg.Exposure
	p.RestoreVertexBuffers()
	return p
}

// Config returns a copy of the configuration last applied by RefreshState.
func (p *Pipeline) Config() Config { return p.cfg }

// ToneMapper returns the operator the tonemap stage runs: the last one set
// up successfully, or TonemapNone after a failure or ReleaseGPUBuffers.
func (p *Pipeline) ToneMapper() ToneMapper { return p.tonemap.op }

// SharpenMethod returns the method the sharpen stage runs: the last one set
// up successfully, or SharpenNone after a failure or ReleaseGPUBuffers.
func (p *Pipeline) SharpenMethod() SharpenMethod { return p.sharpen.method }

// Exposure returns the exposure the next tonemap pass will use, which lags
// the configured value while a fade is running.
func (p *Pipeline) Exposure() float64 { return p.exposure.current }

// ColorGradeActive reports whether a LUT texture is bound.
func (p *Pipeline) ColorGradeActive() bool { return p.grade.tex != nil }

// Device returns the device the pipeline draws with.
func (p *Pipeline) Device() Device { return p.dev }

// Update advances time-based state such as exposure fades. dt is in seconds.
func (p *Pipeline) Update(dt float64) {
	p.exposure.update(dt)
}

// Process runs the full chain: tonemap src (plus bloom) into an
// intermediate, then sharpen into dst. With sharpening off the tonemap pass
// writes dst directly. If the tonemap pass is rejected dst is left
// untouched and queued captures wait for the next written frame.
func (p *Pipeline) Process(src, dst, bloom Target) {
	if !present(dst) || !present(src) {
		p.log.Warn().Msg("process: missing source or destination")
		return
	}
	if p.processChain(src, dst, bloom) {
		p.flushCaptures(dst)
	}
	p.stats.Frames++
	p.debugLog()
}

func (p *Pipeline) processChain(src, dst, bloom Target) bool {
	if p.sharpen.prog == nil {
		return p.RenderTonemap(src, dst, bloom)
	}
	w, h := dst.Size()
	tmp, err := p.pool.acquire(p.dev, w, h)
	if err != nil {
		p.log.Error().Err(err).Int("w", w).Int("h", h).Msg("process: intermediate target unavailable; sharpen skipped")
		return p.RenderTonemap(src, dst, bloom)
	}
	defer p.pool.release(tmp)
	if !p.RenderTonemap(src, tmp, bloom) {
		return false
	}
	return p.RenderSharpen(tmp, dst)
}

// present reports whether t is a usable, non-nil target.
func present(t Target) bool {
	if t == nil {
		return false
	}
	v := reflect.ValueOf(t)
	return !(v.Kind() == reflect.Pointer && v.IsNil())
}

func sameSize(a, b Target) bool {
	aw, ah := a.Size()
	bw, bh := b.Size()
	return aw == bw && ah == bh
}

// passthrough copies src into dst, used whenever a stage cannot run its
// program. It reports whether the copy landed.
func (p *Pipeline) passthrough(stage string, dst, src Target) bool {
	p.stats.Passthroughs++
	if err := p.dev.Copy(dst, src); err != nil {
		p.log.Error().Err(err).Str("stage", stage).Msg("passthrough copy failed")
		return false
	}
	return true
}
