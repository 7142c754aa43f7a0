// Package tonefx is the post-process tail of a deferred renderer: HDR
// tonemapping with optional 3D LUT color grading, followed by a sharpen
// pass, running on [Ebitengine] or on a software device.
//
// # Quick start
//
// Create a [Pipeline] on a [Device], apply a [Config] with
// [Pipeline.RefreshState], then call [Pipeline.Process] once per frame:
//
//	fx := tonefx.New(tonefx.NewEbitenDevice(), nil)
//	cfg := tonefx.DefaultConfig()
//	cfg.Tonemap = tonefx.TonemapACES
//	cfg.Sharpen = tonefx.SharpenCAS
//	fx.RefreshState(cfg)
//
//	func (g *Game) Draw(screen *ebiten.Image) {
//		fx.Process(g.hdr, tonefx.WrapImage(screen), g.bloom)
//	}
//
// The stages can also be driven one by one with [Pipeline.RenderTonemap]
// and [Pipeline.RenderSharpen].
//
// # Operators
//
// [ToneMapper] selects the curve: linear clamp, Reinhard, extended
// Reinhard, Hejl-Burgess filmic, Unreal, fitted ACES, Uchimura, Lottes and
// Uncharted 2. The last three take parameter vectors from [Config]; only
// the active operator's vectors are uploaded. [TonemapNone] copies the
// source unchanged unless bloom or a LUT has to be applied.
//
// # Settings
//
// A [SettingsSource] provides configuration snapshots. [FileSettings]
// reads YAML (through [afero]), [LookupSettings] reads flat keys such as
// environment variables, and [StaticSettings] wraps a fixed value. Call
// [Pipeline.Reload] whenever settings may have changed.
//
// # Color grading
//
// [Config.ColorGradeLUT] names a LUT strip image (PNG, JPEG, TIFF, BMP or
// WebP, size*size wide and size tall) or an Adobe .cube file. Decoded
// tables are cached by a [LUTLoader].
//
// # Device lifetime
//
// When the graphics context is lost, call [Pipeline.ResetVertexBuffers]
// and [Pipeline.ReleaseGPUBuffers]; after it comes back call
// [Pipeline.RestoreVertexBuffers] and [Pipeline.RefreshState]. Renders in
// between are skipped with a logged warning, never a panic.
//
// Diagnostics go to a [zerolog.Logger] passed in [Options].
//
// [Ebitengine]: https://ebitengine.org
// [afero]: https://github.com/spf13/afero
package tonefx
