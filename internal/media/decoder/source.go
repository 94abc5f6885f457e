package decoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/handiism/playdeck/internal/model"
)

type readSeekNopCloser struct{ *bytes.Reader }

func (readSeekNopCloser) Close() error { return nil }

// openResource returns a seekable reader for a local path or URL.
func (b *Backend) openResource(ctx context.Context, resource string) (io.ReadSeekCloser, error) {
	if !model.IsRemote(resource) {
		return os.Open(resource)
	}
	if b.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured for %s", resource)
	}
	data, err := b.fetcher.Fetch(ctx, resource, nil)
	if err != nil {
		return nil, err
	}
	return readSeekNopCloser{bytes.NewReader(data)}, nil
}

// decode picks a decoder from the resource extension.
func decode(resource string, rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	name := resource
	if model.IsRemote(name) {
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
	}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".mp3":
		return mp3.Decode(rc)
	case ".wav":
		return wav.Decode(rc)
	default:
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", ext)
	}
}

// gain maps a linear volume in [0,1] to effects.Volume settings with base 2.
func gain(v float64) (exp float64, silent bool) {
	if v <= 0 {
		return 0, true
	}
	return math.Log2(math.Min(v, 1)), false
}

// source wraps the decoded stream and handles looping and the end of the
// resource. It runs under the output lock.
type source struct {
	h *Handle
	s beep.StreamSeeker
}

func (src *source) Stream(samples [][2]float64) (int, bool) {
	if src.h.ended.Load() {
		clear(samples)
		return len(samples), true
	}

	n, _ := src.s.Stream(samples)
	for n < len(samples) && src.h.loop.Load() {
		if err := src.s.Seek(0); err != nil {
			break
		}
		m, _ := src.s.Stream(samples[n:])
		if m == 0 {
			break
		}
		n += m
	}
	if n < len(samples) {
		clear(samples[n:])
		src.h.finish()
	}
	return len(samples), true
}

func (src *source) Err() error { return src.s.Err() }

// output is the streamer handed to the Output. It stops once the handle is
// closed so the mixer drops it.
type output struct {
	h *Handle
	s beep.Streamer
}

func (o *output) Stream(samples [][2]float64) (int, bool) {
	if o.h.closed.Load() {
		return 0, false
	}
	return o.s.Stream(samples)
}

func (o *output) Err() error { return o.s.Err() }
