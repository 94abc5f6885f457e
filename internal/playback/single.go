package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/media"
	"github.com/handiism/playdeck/internal/model"
)

// PlaybackBlockedNotice is shown through the Notifier when a toggle cannot
// start playback.
const PlaybackBlockedNotice = "Unable to play audio. Playback needs a prior user interaction; press a key and try again."

// SingleTrackPlayer loops one fixed resource with toggle playback.
//
// The handle is created on the first TogglePlay and kept until Dispose.
//
// Example:
//
//	player := NewSingleTrackPlayer(backend, "/audio/background.mp3",
//	    WithNotifier(NotifierFunc(func(msg string) { fmt.Println(msg) })))
//	defer player.Dispose()
//
//	player.TogglePlay(ctx) // starts looping
//	player.TogglePlay(ctx) // pauses
type SingleTrackPlayer struct {
	listeners

	backend  media.Backend
	resource string
	log      *zap.Logger
	notifier Notifier
	volume   float64

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	playing     bool
	err         string
	handle      media.Handle
	unsubscribe func()
	disposed    bool
}

// NewSingleTrackPlayer creates a player for resource. No handle is opened
// until the first TogglePlay.
func NewSingleTrackPlayer(backend media.Backend, resource string, opts ...Option) *SingleTrackPlayer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SingleTrackPlayer{
		backend:  backend,
		resource: resource,
		log:      o.logger.Named("single"),
		notifier: o.notifier,
		volume:   o.volume,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns a snapshot of the player state.
func (p *SingleTrackPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// TogglePlay pauses when playing, otherwise starts looped playback.
//
// When playback cannot start, Error holds the reason and the Notifier is
// called with PlaybackBlockedNotice before TogglePlay returns. Cancelling
// ctx while the resource loads is not a failure: nothing is recorded.
func (p *SingleTrackPlayer) TogglePlay(ctx context.Context) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	if p.handle == nil {
		p.openLocked()
	}
	h := p.handle

	if p.playing {
		h.Pause()
		p.playing = false
		st := p.snapshotLocked()
		p.mu.Unlock()

		p.log.Debug("paused", zap.String("resource", p.resource))
		p.notify(Change{Reason: ReasonPause, State: st})
		return
	}
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	err := h.Play(ctx)

	p.mu.Lock()
	if h != p.handle {
		p.mu.Unlock()
		return
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		p.mu.Unlock()
		p.log.Debug("play cancelled", zap.String("resource", p.resource))
		return
	}
	if err != nil {
		p.err = err.Error()
		st := p.snapshotLocked()
		p.mu.Unlock()

		p.log.Warn("playback rejected", zap.String("resource", p.resource), zap.Error(err))
		p.notify(Change{Reason: ReasonPlayFailed, State: st})
		if p.notifier != nil {
			p.notifier.Notify(PlaybackBlockedNotice)
		}
		return
	}
	p.playing = true
	p.err = ""
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.log.Debug("playing", zap.String("resource", p.resource))
	p.notify(Change{Reason: ReasonPlay, State: st})
}

// Dispose pauses and releases the handle. Later toggles are no-ops.
func (p *SingleTrackPlayer) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	if p.handle != nil {
		if p.unsubscribe != nil {
			p.unsubscribe()
			p.unsubscribe = nil
		}
		p.handle.Pause()
		if err := p.handle.Close(); err != nil {
			p.log.Warn("closing handle", zap.Error(err))
		}
		p.handle = nil
	}
	p.playing = false
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.cancel()
	p.notify(Change{Reason: ReasonDisposed, State: st})
}

func (p *SingleTrackPlayer) openLocked() {
	h := p.backend.Open(p.resource)
	h.SetLoop(true)
	h.SetVolume(p.volume)
	p.handle = h
	p.unsubscribe = h.Subscribe(func(e media.Event) { p.onEvent(h, e) })
	h.Load()

	p.log.Debug("handle opened", zap.String("handle", h.ID()), zap.String("resource", p.resource))
}

func (p *SingleTrackPlayer) onEvent(h media.Handle, e media.Event) {
	switch e.Type {
	case media.EventError:
		p.mu.Lock()
		if h != p.handle {
			p.mu.Unlock()
			return
		}
		p.err = fmt.Sprintf("Failed to load audio: %s", p.resource)
		st := p.snapshotLocked()
		p.mu.Unlock()

		p.log.Error("load failed", zap.String("resource", p.resource), zap.Error(e.Err))
		p.notify(Change{Reason: ReasonLoadFailed, State: st})

	case media.EventCanPlayThrough:
		p.log.Info("audio loaded", zap.String("resource", p.resource))
	}
}

func (p *SingleTrackPlayer) snapshotLocked() State {
	phase := PhasePaused
	switch {
	case p.handle == nil && p.err == "":
		phase = PhaseIdle
	case p.playing:
		phase = PhasePlaying
	case p.err != "":
		phase = PhaseErrored
	}
	return State{
		Phase:   phase,
		Track:   model.Track{Resource: p.resource, Title: model.TitleFromResource(p.resource)},
		Playing: p.playing,
		Volume:  p.volume,
		Error:   p.err,
	}
}
