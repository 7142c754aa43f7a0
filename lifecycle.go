package tonefx

// RestoreVertexBuffers allocates the fullscreen quad, releasing any existing
// one first so exactly one quad is live.
func (p *Pipeline) RestoreVertexBuffers() {
	if p.quad != nil {
		p.quad.Release()
		p.quad = nil
	}
	q, err := p.dev.NewQuad()
	if err != nil {
		p.log.Error().Err(err).Msg("restore vertex buffers failed")
		return
	}
	p.quad = q
	p.warnedNoQuad = false
}

// ResetVertexBuffers releases the fullscreen quad. Renders are skipped until
// RestoreVertexBuffers is called.
func (p *Pipeline) ResetVertexBuffers() {
	if p.quad == nil {
		return
	}
	p.quad.Release()
	p.quad = nil
	p.warnedNoQuad = false
}

// ReleaseGPUBuffers frees every device object the pipeline holds other than
// the quad: stage programs, the LUT texture and pooled intermediates. Until
// the next RefreshState rebuilds them the stages report None and pass
// through.
func (p *Pipeline) ReleaseGPUBuffers() {
	if p.tonemap.prog != nil {
		p.tonemap.prog.Release()
		p.tonemap.prog = nil
	}
	p.tonemap.op = TonemapNone
	p.tonemap.ready = false
	if p.sharpen.prog != nil {
		p.sharpen.prog.Release()
		p.sharpen.prog = nil
	}
	p.sharpen.method = SharpenNone
	p.sharpen.ready = false
	p.releaseGrade()
	p.pool.drain(p.dev)
}

// RefreshState applies cfg. The pipeline keeps its own copy; later changes
// to the caller's value have no effect. Stages whose selection is unchanged
// keep their programs. It returns false if any stage failed to set up.
func (p *Pipeline) RefreshState(cfg Config) bool {
	if fixed := cfg.normalize(); len(fixed) > 0 {
		p.log.Warn().Strs("fields", fixed).Msg("config: invalid values replaced with defaults")
	}
	p.cfg = cfg
	if p.exposure.target != cfg.Exposure {
		p.exposure.retarget(cfg.Exposure, cfg.ExposureFade)
	}

	ok := p.SetupTonemap()
	ok = p.SetupSharpen() && ok
	ok = p.SetupColorGrade() && ok
	return ok
}

// Reload polls src and applies its snapshot. A source error keeps the
// current state.
func (p *Pipeline) Reload(src SettingsSource) bool {
	cfg, err := src.Snapshot()
	if err != nil {
		p.log.Error().Err(err).Msg("reload: settings unavailable; keeping current state")
		return false
	}
	return p.RefreshState(cfg)
}

// Close releases everything the pipeline holds, including the quad.
func (p *Pipeline) Close() {
	p.ReleaseGPUBuffers()
	p.ResetVertexBuffers()
}
