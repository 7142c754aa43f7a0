package tonefx

// Fixed sharpen strengths.
const (
	casSharpness = 0.4
	dlsSharpness = 0.5
	dlsDenoise   = 0.02
)

// SetupSharpen makes sure the program for the configured sharpen method is
// compiled. SharpenNone holds no program and always succeeds. On failure
// SharpenMethod reports SharpenNone and RenderSharpen copies.
func (p *Pipeline) SetupSharpen() bool {
	m := p.cfg.Sharpen
	if !m.Valid() {
		m = SharpenNone
	}
	st := &p.sharpen
	if st.ready && st.method == m {
		p.stats.CacheHits++
		return true
	}
	if st.prog != nil {
		st.prog.Release()
		st.prog = nil
	}
	st.ready = false
	st.method = SharpenNone

	if m == SharpenNone {
		st.ready = true
		return true
	}
	id := SharpenShader(m)
	prog, err := p.dev.Compile(id)
	if err != nil {
		p.log.Error().Err(err).Str("shader", string(id)).Msg("sharpen: compile failed; passthrough")
		return false
	}
	switch m {
	case SharpenCAS:
		prog.SetFloat(uniformSharpness, casSharpness)
	case SharpenDLS:
		prog.SetFloat(uniformSharpness, dlsSharpness)
		prog.SetFloat(uniformDenoise, dlsDenoise)
	}
	st.prog = prog
	st.method = m
	st.ready = true
	p.log.Debug().Str("shader", string(id)).Msg("sharpen: program ready")
	return true
}

// RenderSharpen runs the sharpen pass from src into dst. With no program
// bound it copies src unchanged. It reports whether dst was written.
func (p *Pipeline) RenderSharpen(src, dst Target) bool {
	if !present(src) || !present(dst) {
		p.log.Warn().Msg("sharpen: missing source or destination")
		return false
	}
	if !p.quadReady("sharpen") {
		return false
	}
	if !sameSize(src, dst) {
		p.log.Error().Err(ErrSizeMismatch).Msg("sharpen: source and destination differ")
		return false
	}
	if p.sharpen.prog == nil {
		return p.passthrough("sharpen", dst, src)
	}
	if err := p.sharpen.prog.Draw(p.quad, dst, src); err != nil {
		p.log.Error().Err(err).Str("method", p.sharpen.method.String()).Msg("sharpen: draw failed; passthrough")
		return p.passthrough("sharpen", dst, src)
	}
	p.stats.Draws++
	return true
}
