package tonefx

// SetupColorGrade loads the configured LUT and creates its device texture.
// An empty path releases any texture and succeeds. Repeating a successful
// setup with the same path is a no-op. On failure no grading is applied.
func (p *Pipeline) SetupColorGrade() bool {
	path := p.cfg.ColorGradeLUT
	st := &p.grade
	if st.ready && st.path == path {
		p.stats.CacheHits++
		return true
	}
	p.releaseGrade()
	st.path = path
	if path == "" {
		st.ready = true
		return true
	}

	lut, err := p.luts.Load(path)
	if err != nil {
		p.log.Error().Err(err).Str("lut", path).Msg("color grade: load failed; grading off")
		return false
	}
	tex, err := p.dev.NewLUTTexture(lut)
	if err != nil {
		p.log.Error().Err(err).Str("lut", path).Msg("color grade: texture failed; grading off")
		return false
	}
	st.tex = tex
	st.lut = lut
	st.ready = true
	st.warnedFit = false
	p.log.Debug().Str("lut", path).Int("size", lut.Size).Msg("color grade: texture ready")
	return true
}

func (p *Pipeline) releaseGrade() {
	st := &p.grade
	if st.tex != nil {
		st.tex.Release()
	}
	st.tex = nil
	st.lut = nil
	st.ready = false
}

// gradeBindable reports whether the LUT can be applied to a w x h pass.
func (p *Pipeline) gradeBindable(w, h int) bool {
	st := &p.grade
	if st.tex == nil {
		return false
	}
	if st.tex.Fits(w, h) {
		return true
	}
	if !st.warnedFit {
		sw, sh := st.tex.Size()
		p.log.Warn().Int("strip_w", sw).Int("strip_h", sh).Int("w", w).Int("h", h).
			Msg("color grade: LUT strip larger than target; grading skipped")
		st.warnedFit = true
	}
	return false
}
