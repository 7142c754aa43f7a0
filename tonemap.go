package tonefx

// SetupTonemap makes sure the program for the configured operator is
// compiled. Repeating a successful setup with the same operator is a no-op.
// On failure the stage holds no program, ToneMapper reports TonemapNone and
// RenderTonemap degrades to a copy.
func (p *Pipeline) SetupTonemap() bool {
	op := p.cfg.Tonemap
	if !op.Valid() {
		op = TonemapNone
	}
	st := &p.tonemap
	if st.ready && st.op == op && st.prog != nil {
		p.stats.CacheHits++
		return true
	}
	if st.prog != nil {
		st.prog.Release()
		st.prog = nil
	}
	st.ready = false

	id := TonemapShader(op)
	prog, err := p.dev.Compile(id)
	if err != nil {
		p.log.Error().Err(err).Str("shader", string(id)).Msg("tonemap: compile failed; passthrough")
		st.op = TonemapNone
		return false
	}
	st.prog = prog
	st.op = op
	st.ready = true
	p.log.Debug().Str("shader", string(id)).Msg("tonemap: program ready")
	return true
}

// RenderTonemap runs the tonemap pass from src (plus bloom, which may be
// nil) into dst. Bloom of a different size than src is ignored. It reports
// whether dst was written; a rejected pass leaves dst untouched.
func (p *Pipeline) RenderTonemap(src, dst, bloom Target) bool {
	if !present(src) || !present(dst) {
		p.log.Warn().Msg("tonemap: missing source or destination")
		return false
	}
	if !p.quadReady("tonemap") {
		return false
	}
	if !sameSize(src, dst) {
		p.log.Error().Err(ErrSizeMismatch).Msg("tonemap: source and destination differ")
		return false
	}

	hasBloom := present(bloom)
	if hasBloom && !sameSize(bloom, src) {
		if !p.warnedBloom {
			bw, bh := bloom.Size()
			sw, sh := src.Size()
			p.log.Warn().Int("bloom_w", bw).Int("bloom_h", bh).Int("w", sw).Int("h", sh).
				Msg("tonemap: bloom size differs from source; ignored")
			p.warnedBloom = true
		}
		hasBloom = false
	}
	w, h := dst.Size()
	grading := p.gradeBindable(w, h)

	st := &p.tonemap
	if st.prog == nil || (st.op == TonemapNone && !hasBloom && !grading) {
		return p.passthrough("tonemap", dst, src)
	}

	prog := st.prog
	prog.SetFloat(uniformExposure, float32(p.exposure.current))
	prog.SetFloat(uniformSourceScale, float32(p.cfg.SourceScale))
	prog.SetFloat(uniformBloomEnabled, boolUniform(hasBloom))
	prog.SetFloat(uniformGradeEnabled, boolUniform(grading))
	if grading {
		prog.SetVec4(uniformLUTSize, p.grade.lut.Extent())
	}
	params, n := paramsFor(st.op, &p.cfg)
	if n > 0 {
		prog.SetVec3(uniformParamA, params.A)
		prog.SetVec3(uniformParamB, params.B)
	}
	if n > 2 {
		prog.SetVec3(uniformParamC, params.C)
	}

	srcs := [3]Target{slotSource: src}
	if hasBloom {
		srcs[slotBloom] = bloom
	}
	if grading {
		srcs[slotLUT] = p.grade.tex
	}
	if err := prog.Draw(p.quad, dst, srcs[:]...); err != nil {
		p.log.Error().Err(err).Str("operator", st.op.String()).Msg("tonemap: draw failed; passthrough")
		return p.passthrough("tonemap", dst, src)
	}
	p.stats.Draws++
	return true
}

// quadReady reports whether the fullscreen quad is live, warning once per
// reset when it is not.
func (p *Pipeline) quadReady(stage string) bool {
	if p.quad != nil {
		return true
	}
	if !p.warnedNoQuad {
		p.log.Warn().Str("stage", stage).Msg("render skipped: vertex buffers not restored")
		p.warnedNoQuad = true
	}
	p.stats.Skipped++
	return false
}

func boolUniform(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
