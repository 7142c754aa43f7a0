package tonefx

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// exposureFade eases the exposure uniform toward a new target.
type exposureFade struct {
	current float64
	target  float64
	tween   *gween.Tween
}

// retarget starts a fade from the current value to target over seconds.
// A non-positive duration snaps immediately.
func (f *exposureFade) retarget(target, seconds float64) {
	f.target = target
	if seconds <= 0 || f.current == target {
		f.current = target
		f.tween = nil
		return
	}
	f.tween = gween.New(float32(f.current), float32(target), float32(seconds), ease.InOutQuad)
}

func (f *exposureFade) update(dt float64) {
	if f.tween == nil {
		return
	}
	val, done := f.tween.Update(float32(dt))
	f.current = float64(val)
	if done {
		f.current = f.target
		f.tween = nil
	}
}

// fading reports whether a fade is in progress.
func (f *exposureFade) fading() bool { return f.tween != nil }

// snap ends any fade at its target.
func (f *exposureFade) snap() {
	f.current = f.target
	f.tween = nil
}
