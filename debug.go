package tonefx

// Stats counts pipeline activity since creation or the last ResetStats.
type Stats struct {
	Frames       int // Process calls that reached the stages
	Draws        int // shader passes drawn
	Passthroughs int // passes degraded to a copy
	Skipped      int // passes skipped for lack of a quad
	CacheHits    int // setups satisfied without compiling
}

// Stats returns the activity counters.
func (p *Pipeline) Stats() Stats { return p.stats }

// ResetStats zeroes the activity counters.
func (p *Pipeline) ResetStats() { p.stats = Stats{} }

// debugLog emits per-frame state at trace level.
func (p *Pipeline) debugLog() {
	e := p.log.Trace()
	if !e.Enabled() {
		return
	}
	res := p.dev.Resources()
	e.Str("operator", p.tonemap.op.String()).
		Str("sharpen", p.sharpen.method.String()).
		Bool("grade", p.grade.tex != nil).
		Float64("exposure", p.exposure.current).
		Int("draws", p.stats.Draws).
		Int("passthroughs", p.stats.Passthroughs).
		Int("programs", res.Programs).
		Int("targets", res.Targets).
		Int("pooled", p.pool.pooled()).
		Msg("frame")
}
