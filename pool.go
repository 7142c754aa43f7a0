package tonefx

import "image"

// targetPool keeps intermediate targets keyed by exact dimensions. After the
// first frame at a given size, acquire and release do not allocate.
type targetPool struct {
	buckets map[image.Point][]Target
	live    int
}

// acquire returns a pooled target of exactly w x h, creating one on dev when
// the bucket is empty. Every pass writes all pixels with a copy blend, so
// pooled targets are not cleared.
func (p *targetPool) acquire(dev Device, w, h int) (Target, error) {
	key := image.Pt(w, h)
	if stack := p.buckets[key]; len(stack) > 0 {
		t := stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		return t, nil
	}
	t, err := dev.NewTarget(w, h)
	if err != nil {
		return nil, err
	}
	p.live++
	return t, nil
}

// release returns t to the pool for reuse.
func (p *targetPool) release(t Target) {
	if t == nil {
		return
	}
	w, h := t.Size()
	if p.buckets == nil {
		p.buckets = make(map[image.Point][]Target)
	}
	key := image.Pt(w, h)
	p.buckets[key] = append(p.buckets[key], t)
}

// drain frees every pooled target on dev. Targets currently acquired are
// not tracked and stay with their holder.
func (p *targetPool) drain(dev Device) {
	for key, stack := range p.buckets {
		for _, t := range stack {
			dev.FreeTarget(t)
			p.live--
		}
		delete(p.buckets, key)
	}
}

// pooled returns the number of idle targets.
func (p *targetPool) pooled() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}
