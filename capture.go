package tonefx

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// Capture queues a labeled capture of the next frame written by Process.
// The PNG lands in the pipeline's capture directory with a timestamped name.
func (p *Pipeline) Capture(label string) {
	p.captureQueue = append(p.captureQueue, label)
}

// PendingCaptures returns the number of queued captures.
func (p *Pipeline) PendingCaptures() int { return len(p.captureQueue) }

// flushCaptures reads dst back once and writes it for every queued label.
func (p *Pipeline) flushCaptures(dst Target) {
	if len(p.captureQueue) == 0 {
		return
	}
	defer func() { p.captureQueue = p.captureQueue[:0] }()

	if err := p.fs.MkdirAll(p.captureDir, 0o755); err != nil {
		p.log.Error().Err(err).Str("dir", p.captureDir).Msg("capture: mkdir failed")
		return
	}
	img, err := p.dev.Snapshot(dst)
	if err != nil {
		p.log.Error().Err(err).Msg("capture: snapshot failed")
		return
	}

	stamp := time.Now().Format("20060102_150405")
	for i, label := range p.captureQueue {
		out := path.Join(p.captureDir, captureName(stamp, label, i))
		if err := writePNG(p.fs, out, img); err != nil {
			p.log.Error().Err(err).Msg("capture: write failed")
			continue
		}
		p.log.Info().Str("path", out).Msg("capture written")
	}
}

// captureName builds the file name of the i-th capture queued in a frame.
func captureName(stamp, label string, i int) string {
	name := stamp + "_" + captureSlug(label)
	if i > 0 {
		name += "_" + strconv.Itoa(i)
	}
	return name + ".png"
}

const maxSlugLen = 48

// captureSlug keeps ASCII letters, digits, dots and underscores from label
// and joins every other run of characters into a single dash.
func captureSlug(label string) string {
	var b strings.Builder
	gap := false
	for _, r := range label {
		keep := r < utf8.RuneSelf &&
			(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '_')
		if !keep {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte('-')
		}
		gap = false
		b.WriteRune(r)
		if b.Len() >= maxSlugLen {
			break
		}
	}
	if b.Len() == 0 {
		return "frame"
	}
	return b.String()
}

func writePNG(fsys afero.Fs, name string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return afero.WriteReader(fsys, name, &buf)
}
