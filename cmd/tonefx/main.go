// Command tonefx runs the post chain on an image file with the software
// device: tonemap (with optional bloom and LUT grade) followed by sharpening.
//
//	tonefx -in frame.png -out graded.png -tonemap aces -sharpen cas -exposure 1.4
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	// Input decoders.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/phanxgames/tonefx"
)

func main() {
	var (
		inPath     = flag.String("in", "", "input image (required)")
		outPath    = flag.String("out", "out.png", "output PNG")
		configPath = flag.String("config", "", "YAML config; flags override it")
		bloomPath  = flag.String("bloom", "", "bloom image added before tonemapping")
		tonemap    = flag.String("tonemap", "", "operator: none, linear, reinhard, reinhard2, filmic, unreal, aces, uchimura, lottes, uncharted")
		sharpen    = flag.String("sharpen", "", "sharpen method: none, cas, dls")
		exposure   = flag.Float64("exposure", 1, "exposure multiplier")
		scale      = flag.Float64("scale", 1, "source scale applied before exposure, for range-compressed HDR")
		lut        = flag.String("lut", "", "color grade LUT (.cube or strip image)")
		linear     = flag.Bool("linear", false, "input is already linear; skip sRGB decode")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	fsys := afero.NewOsFs()
	cfg := tonefx.DefaultConfig()
	if *configPath != "" {
		c, err := tonefx.FileSettings{Fs: fsys, Path: *configPath}.Snapshot()
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
		cfg = c
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["tonemap"] {
		op, ok := tonefx.ParseToneMapper(*tonemap)
		if !ok {
			log.Warn().Str("tonemap", *tonemap).Msg("unknown operator; using none")
		}
		cfg.Tonemap = op
	}
	if set["sharpen"] {
		m, ok := tonefx.ParseSharpenMethod(*sharpen)
		if !ok {
			log.Warn().Str("sharpen", *sharpen).Msg("unknown sharpen method; using none")
		}
		cfg.Sharpen = m
	}
	if set["exposure"] {
		cfg.Exposure = *exposure
	}
	if set["scale"] {
		cfg.SourceScale = *scale
	}
	if set["lut"] {
		cfg.ColorGradeLUT = *lut
	}

	// The passthrough operator leaves encoding alone, so only decode to
	// linear when a curve will re-encode.
	decode := !*linear && cfg.Tonemap != tonefx.TonemapNone

	src, err := readCanvas(fsys, *inPath, decode)
	if err != nil {
		log.Fatal().Err(err).Msg("read input")
	}
	var bloom tonefx.Target
	if *bloomPath != "" {
		b, err := readCanvas(fsys, *bloomPath, decode)
		if err != nil {
			log.Fatal().Err(err).Msg("read bloom")
		}
		bloom = b
	}

	pipeLog := log.Logger
	fx := tonefx.New(tonefx.NewCPUDevice(), &tonefx.Options{Logger: &pipeLog, Fs: fsys})
	defer fx.Close()
	if !fx.RefreshState(cfg) {
		log.Warn().Msg("some stages failed to set up; continuing with passthrough")
	}

	w, h := src.Size()
	dst := tonefx.NewCanvas(w, h)
	start := time.Now()
	fx.Process(src, dst, bloom)
	log.Info().
		Str("tonemap", fx.ToneMapper().String()).
		Str("sharpen", fx.SharpenMethod().String()).
		Bool("grade", fx.ColorGradeActive()).
		Dur("took", time.Since(start)).
		Msg("processed")

	if err := writeCanvas(fsys, *outPath, dst); err != nil {
		log.Fatal().Err(err).Msg("write output")
	}
	log.Info().Str("path", *outPath).Int("w", w).Int("h", h).Msg("wrote")
}

func readCanvas(fsys afero.Fs, path string, linearize bool) (*tonefx.Canvas, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return tonefx.CanvasFromImage(img, linearize), nil
}

func writeCanvas(fsys afero.Fs, path string, c *tonefx.Canvas) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, c.ToNRGBA()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
