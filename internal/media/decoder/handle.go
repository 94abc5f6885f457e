package decoder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/media"
)

// Handle plays one resource through the Backend output.
//
// Lock order is h.mu, then the output lock. Streamers running under the
// output lock only touch atomics and the event queue.
type Handle struct {
	id       string
	resource string
	b        *Backend

	mu          sync.Mutex
	subs        map[int]func(media.Event)
	nextSub     int
	loadStarted bool
	loadErr     error
	cancelLoad  context.CancelFunc
	stream      beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	vol         *effects.Volume
	volume      float64
	pendingSeek float64
	pauses      uint64 // bumped by every Pause

	loop    atomic.Bool
	playing atomic.Bool
	ended   atomic.Bool
	closed  atomic.Bool

	loaded    chan struct{} // closed when loading finishes either way
	done      chan struct{} // closed by Close
	closeOnce sync.Once

	qmu    sync.Mutex
	queue  []media.Event
	signal chan struct{}
}

var _ media.Handle = (*Handle)(nil)

// ID implements media.Handle.
func (h *Handle) ID() string { return h.id }

// Resource implements media.Handle.
func (h *Handle) Resource() string { return h.resource }

// Subscribe implements media.Handle.
func (h *Handle) Subscribe(fn func(media.Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Load implements media.Handle. Only the first call has an effect.
func (h *Handle) Load() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loadStarted || h.closed.Load() {
		return
	}
	h.loadStarted = true

	ctx, cancel := context.WithCancel(context.Background())
	h.cancelLoad = cancel
	go h.dispatch()
	go h.load(ctx)
}

func (h *Handle) load(ctx context.Context) {
	defer close(h.loaded)

	err := h.decode(ctx)
	if err != nil {
		h.mu.Lock()
		h.loadErr = err
		h.mu.Unlock()
		if !h.closed.Load() {
			h.b.log.Warn("load failed", zap.String("handle", h.id), zap.String("resource", h.resource), zap.Error(err))
			h.emit(media.Event{Type: media.EventError, Err: err})
		}
		return
	}

	h.b.log.Debug("loaded", zap.String("handle", h.id), zap.String("resource", h.resource))
	h.emit(media.Event{Type: media.EventLoadedMetadata})
	h.emit(media.Event{Type: media.EventCanPlayThrough})
	go h.tick()
}

func (h *Handle) decode(ctx context.Context) error {
	rc, err := h.b.openResource(ctx, h.resource)
	if err != nil {
		return err
	}
	stream, format, err := decode(h.resource, rc)
	if err != nil {
		return err
	}
	if err := h.b.out.Init(h.b.sampleRate); err != nil {
		stream.Close()
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		stream.Close()
		return media.ErrClosed
	}

	var s beep.Streamer = &source{h: h, s: stream}
	if format.SampleRate != h.b.sampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, h.b.sampleRate, s)
	}
	exp, silent := gain(h.volume)
	h.stream = stream
	h.format = format
	h.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	h.vol = &effects.Volume{Streamer: h.ctrl, Base: 2, Volume: exp, Silent: silent}

	if h.pendingSeek != 0 {
		h.seekLocked(h.pendingSeek)
	}
	h.b.out.Play(&output{h: h, s: h.vol})
	return nil
}

// Play implements media.Handle. It starts loading if Load was not called.
// A handle that reached the end restarts from the beginning. A Pause that
// arrives while Play waits for loading aborts it with media.ErrAborted.
func (h *Handle) Play(ctx context.Context) error {
	if h.closed.Load() {
		return media.ErrClosed
	}
	h.mu.Lock()
	pauses := h.pauses
	h.mu.Unlock()
	h.Load()

	select {
	case <-h.loaded:
	case <-h.done:
		return media.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return media.ErrClosed
	}
	if h.loadErr != nil {
		return fmt.Errorf("%w: %v", media.ErrNotLoaded, h.loadErr)
	}
	if h.pauses != pauses {
		return media.ErrAborted
	}

	h.b.out.Lock()
	if h.ended.Load() {
		if err := h.stream.Seek(0); err != nil {
			h.b.out.Unlock()
			return err
		}
		h.ended.Store(false)
	}
	h.ctrl.Paused = false
	h.b.out.Unlock()

	h.playing.Store(true)
	return nil
}

// Pause implements media.Handle.
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauses++
	h.playing.Store(false)
	if h.ctrl == nil {
		return
	}
	h.b.out.Lock()
	h.ctrl.Paused = true
	h.b.out.Unlock()
}

// CurrentTime implements media.Handle.
func (h *Handle) CurrentTime() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stream == nil {
		return h.pendingSeek
	}
	h.b.out.Lock()
	pos := h.stream.Position()
	h.b.out.Unlock()
	return h.format.SampleRate.D(pos).Seconds()
}

// SetCurrentTime implements media.Handle. Positions are clamped to the
// resource; negative values seek to the start.
func (h *Handle) SetCurrentTime(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stream == nil {
		h.pendingSeek = max(seconds, 0)
		return
	}
	h.seekLocked(seconds)
}

func (h *Handle) seekLocked(seconds float64) {
	pos := h.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	pos = min(max(pos, 0), h.stream.Len())

	h.b.out.Lock()
	defer h.b.out.Unlock()
	if err := h.stream.Seek(pos); err != nil {
		h.b.log.Warn("seek failed", zap.String("handle", h.id), zap.Float64("seconds", seconds), zap.Error(err))
		return
	}
	if pos < h.stream.Len() {
		h.ended.Store(false)
	}
}

// Duration implements media.Handle.
func (h *Handle) Duration() (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stream == nil || h.stream.Len() <= 0 {
		return 0, false
	}
	return h.format.SampleRate.D(h.stream.Len()).Seconds(), true
}

// Volume implements media.Handle.
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// SetVolume implements media.Handle. v is clamped to [0,1].
func (h *Handle) SetVolume(v float64) {
	v = min(max(v, 0), 1)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
	if h.vol == nil {
		return
	}
	exp, silent := gain(v)
	h.b.out.Lock()
	h.vol.Volume = exp
	h.vol.Silent = silent
	h.b.out.Unlock()
}

// SetLoop implements media.Handle.
func (h *Handle) SetLoop(loop bool) { h.loop.Store(loop) }

// Close implements media.Handle. The decoder is released and the output
// drops the handle on its next pass.
func (h *Handle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		h.closed.Store(true)
		h.playing.Store(false)
		close(h.done)
		if h.cancelLoad != nil {
			h.cancelLoad()
		}
		h.subs = make(map[int]func(media.Event))

		if h.stream != nil {
			h.b.out.Lock()
			err = h.stream.Close()
			h.b.out.Unlock()
		}
		h.b.log.Debug("closed", zap.String("handle", h.id))
	})
	return err
}

// finish is called by the source under the output lock when a
// non-looping resource runs out.
func (h *Handle) finish() {
	if h.ended.Swap(true) {
		return
	}
	h.playing.Store(false)
	h.emit(media.Event{Type: media.EventEnded})
}

func (h *Handle) tick() {
	t := time.NewTicker(h.b.tick)
	defer t.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-t.C:
			if h.playing.Load() {
				h.emit(media.Event{Type: media.EventTimeUpdate})
			}
		}
	}
}

// emit queues e for delivery. It never blocks, so it is safe under the
// output lock.
func (h *Handle) emit(e media.Event) {
	h.qmu.Lock()
	h.queue = append(h.queue, e)
	h.qmu.Unlock()

	select {
	case h.signal <- struct{}{}:
	default:
	}
}

// dispatch delivers queued events in order until the handle is closed.
func (h *Handle) dispatch() {
	for {
		select {
		case <-h.done:
			return
		case <-h.signal:
		}

		h.qmu.Lock()
		events := h.queue
		h.queue = nil
		h.qmu.Unlock()

		for _, e := range events {
			if h.closed.Load() {
				return
			}
			h.mu.Lock()
			subs := make([]func(media.Event), 0, len(h.subs))
			for _, fn := range h.subs {
				subs = append(subs, fn)
			}
			h.mu.Unlock()

			for _, fn := range subs {
				fn(e)
			}
		}
	}
}
