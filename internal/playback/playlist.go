package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/media"
	"github.com/handiism/playdeck/internal/model"
)

// PlaylistPlayer plays an ordered list of tracks with auto-advance.
//
// PlaylistPlayer owns at most one media.Handle at a time, bound to the
// current track. Moving the cursor (PlayNext, PlayPrevious or a natural end
// of track) releases the old handle before the new one is opened, and any
// event or play result that belongs to a released handle is discarded.
//
// Operations never return errors; failures are recorded in State().Error.
//
// Example:
//
//	pl, _ := model.NewPlaylist(tracks...)
//	player := NewPlaylistPlayer(backend, pl, WithAudioRoot("/audio"))
//	defer player.Dispose()
//
//	player.Play(ctx)
//	player.SetVolume(0.5)
//	player.PlayNext(ctx)
//	fmt.Println(player.State().Track.Title)
type PlaylistPlayer struct {
	listeners

	backend  media.Backend
	playlist *model.Playlist
	root     string
	log      *zap.Logger

	// ctx is cancelled by Dispose so pending Play calls return.
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	index         int
	gen           uint64 // transport generation, bumped by every transport command
	pauseGen      uint64 // generation of the latest Pause
	playing       bool
	loaded        bool
	loadFailed    bool
	currentTime   float64
	duration      float64
	durationKnown bool
	volume        float64
	err           string
	handle        media.Handle
	unsubscribe   func()
	disposed      bool
}

// NewPlaylistPlayer creates a player positioned on the first track.
//
// No handle is opened until the first Play, PlayNext or PlayPrevious.
func NewPlaylistPlayer(backend media.Backend, playlist *model.Playlist, opts ...Option) *PlaylistPlayer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &PlaylistPlayer{
		backend:  backend,
		playlist: playlist,
		root:     o.audioRoot,
		log:      o.logger.Named("playlist"),
		ctx:      ctx,
		cancel:   cancel,
		volume:   o.volume,
	}
}

// Playlist returns the playlist the player was built with.
func (p *PlaylistPlayer) Playlist() *model.Playlist { return p.playlist }

// CurrentTrack returns the track under the cursor.
func (p *PlaylistPlayer) CurrentTrack() model.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playlist.At(p.index)
}

// CurrentResource returns the resolved resource path of the current track.
func (p *PlaylistPlayer) CurrentResource() string {
	return model.ResourcePath(p.root, p.CurrentTrack())
}

// State returns a snapshot of the player state.
func (p *PlaylistPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Play starts playback of the current track, opening a handle if needed.
// A handle whose resource failed to load is replaced so the load is
// attempted again.
//
// Play blocks until the backend confirms or rejects playback. On success
// Playing becomes true; on failure Playing is false and Error names the
// track.
func (p *PlaylistPlayer) Play(ctx context.Context) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	var st State
	opened := p.handle == nil || p.loadFailed
	if opened {
		p.initAudioLocked()
		st = p.snapshotLocked()
	}
	p.gen++
	h := p.handle
	gen := p.gen
	p.mu.Unlock()

	if opened {
		p.notify(Change{Reason: ReasonTrackChanged, State: st})
	}
	p.startPlayback(ctx, h, gen)
}

// Pause pauses the current handle. A Play still waiting for its handle is
// superseded and leaves Playing false. No-op when no handle exists.
func (p *PlaylistPlayer) Pause() {
	p.mu.Lock()
	if p.handle == nil {
		p.mu.Unlock()
		return
	}
	p.gen++
	p.pauseGen = p.gen
	p.handle.Pause()
	p.playing = false
	p.log.Debug("paused", zap.String("track", p.playlist.At(p.index).DisplayTitle()))
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(Change{Reason: ReasonPause, State: st})
}

// TogglePlay pauses when playing and plays otherwise.
func (p *PlaylistPlayer) TogglePlay(ctx context.Context) {
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()

	if playing {
		p.Pause()
		return
	}
	p.Play(ctx)
}

// PlayNext moves the cursor forward, wrapping after the last track.
//
// The new track is loaded immediately. Playback resumes on it only if the
// player was playing before the call.
func (p *PlaylistPlayer) PlayNext(ctx context.Context) {
	p.advance(ctx, 1)
}

// PlayPrevious moves the cursor backward, wrapping before the first track.
func (p *PlaylistPlayer) PlayPrevious(ctx context.Context) {
	p.advance(ctx, -1)
}

// Seek sets the playback position of the current handle. The value is
// passed through unclamped. No-op when no handle exists.
func (p *PlaylistPlayer) Seek(seconds float64) {
	p.mu.Lock()
	if p.handle == nil {
		p.mu.Unlock()
		return
	}
	p.handle.SetCurrentTime(seconds)
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(Change{Reason: ReasonSeek, State: st})
}

// SetVolume clamps v to [0,1], applies it to the live handle and keeps it
// for handles opened later. NaN is ignored.
func (p *PlaylistPlayer) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = clampVolume(v)

	p.mu.Lock()
	p.volume = v
	if p.handle != nil {
		p.handle.SetVolume(v)
	}
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(Change{Reason: ReasonVolume, State: st})
}

// Dispose releases the handle and makes every later operation a no-op.
// Pending Play calls are cancelled. Dispose is idempotent.
func (p *PlaylistPlayer) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.gen++
	p.releaseLocked()
	p.playing = false
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.cancel()
	p.log.Debug("disposed")
	p.notify(Change{Reason: ReasonDisposed, State: st})
}

func (p *PlaylistPlayer) advance(ctx context.Context, step int) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	wasPlaying := p.playing
	p.gen++
	gen := p.gen
	if step > 0 {
		p.index = p.playlist.Next(p.index)
	} else {
		p.index = p.playlist.Previous(p.index)
	}
	p.initAudioLocked()
	h := p.handle
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(Change{Reason: ReasonTrackChanged, State: st})
	if wasPlaying {
		p.startPlayback(ctx, h, gen)
	}
}

// startPlayback awaits h.Play and records the outcome if h is still the
// bound handle and no transport command was issued since gen.
func (p *PlaylistPlayer) startPlayback(ctx context.Context, h media.Handle, gen uint64) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	err := h.Play(ctx)

	p.mu.Lock()
	if h != p.handle {
		p.mu.Unlock()
		p.log.Debug("ignoring play result of released handle", zap.String("handle", h.ID()), zap.Error(err))
		return
	}
	if gen != p.gen {
		// The handle may have started before the pause reached it.
		if err == nil && p.pauseGen == p.gen {
			h.Pause()
		}
		p.mu.Unlock()
		p.log.Debug("ignoring superseded play result", zap.String("handle", h.ID()), zap.Error(err))
		return
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		p.mu.Unlock()
		p.log.Debug("play cancelled", zap.String("handle", h.ID()))
		return
	}

	title := p.playlist.At(p.index).DisplayTitle()
	reason := ReasonPlay
	if err != nil {
		p.playing = false
		p.err = fmt.Sprintf("Failed to play %s: %v", title, err)
		reason = ReasonPlayFailed
		p.log.Warn("playback rejected", zap.String("track", title), zap.Error(err))
	} else {
		p.playing = true
		p.err = ""
		p.log.Info("playing", zap.String("track", title), zap.Int("index", p.index))
	}
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(Change{Reason: reason, State: st})
}

// initAudioLocked replaces the handle with a fresh one for the current
// track. The old handle is detached before the new one is opened.
func (p *PlaylistPlayer) initAudioLocked() {
	p.releaseLocked()

	track := p.playlist.At(p.index)
	h := p.backend.Open(model.ResourcePath(p.root, track))
	h.SetVolume(p.volume)

	p.handle = h
	p.loaded = false
	p.loadFailed = false
	p.currentTime = 0
	p.duration = 0
	p.durationKnown = false
	p.unsubscribe = h.Subscribe(func(e media.Event) { p.onEvent(h, e) })
	h.Load()

	p.log.Debug("handle opened",
		zap.String("handle", h.ID()),
		zap.String("resource", h.Resource()),
		zap.Int("index", p.index))
}

// releaseLocked detaches, pauses and closes the bound handle.
func (p *PlaylistPlayer) releaseLocked() {
	if p.handle == nil {
		return
	}
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	h := p.handle
	p.handle = nil
	h.Pause()
	if err := h.Close(); err != nil {
		p.log.Warn("closing handle", zap.String("handle", h.ID()), zap.Error(err))
	}
	p.log.Debug("handle released", zap.String("handle", h.ID()))
}

func (p *PlaylistPlayer) onEvent(h media.Handle, e media.Event) {
	p.mu.Lock()
	if h != p.handle {
		p.mu.Unlock()
		return
	}

	title := p.playlist.At(p.index).DisplayTitle()
	var reason Reason
	switch e.Type {
	case media.EventError:
		p.err = fmt.Sprintf("Failed to load: %s", title)
		p.playing = false
		p.loadFailed = true
		reason = ReasonLoadFailed
		p.log.Warn("load failed", zap.String("track", title), zap.String("resource", h.Resource()), zap.Error(e.Err))

	case media.EventCanPlayThrough, media.EventLoadedMetadata:
		if d, ok := h.Duration(); ok {
			p.duration = d
			p.durationKnown = true
		}
		if !p.loaded && e.Type == media.EventCanPlayThrough {
			p.log.Info("loaded", zap.String("track", title))
		}
		p.loaded = true
		p.err = ""
		reason = ReasonLoaded

	case media.EventTimeUpdate:
		p.currentTime = h.CurrentTime()
		reason = ReasonProgress

	case media.EventEnded:
		st := p.snapshotLocked()
		p.mu.Unlock()
		p.log.Debug("track ended", zap.String("track", title))
		p.notify(Change{Reason: ReasonEnded, State: st})
		p.advance(p.ctx, 1)
		return

	default:
		p.mu.Unlock()
		return
	}
	st := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(Change{Reason: reason, State: st})
}

func (p *PlaylistPlayer) snapshotLocked() State {
	return State{
		Phase:         p.phaseLocked(),
		Index:         p.index,
		Track:         p.playlist.At(p.index),
		Playing:       p.playing,
		CurrentTime:   p.currentTime,
		Duration:      p.duration,
		DurationKnown: p.durationKnown,
		Volume:        p.volume,
		Error:         p.err,
	}
}

func (p *PlaylistPlayer) phaseLocked() Phase {
	switch {
	case p.handle == nil && p.err == "":
		return PhaseIdle
	case p.playing:
		return PhasePlaying
	case p.err != "":
		return PhaseErrored
	case !p.loaded:
		return PhaseLoading
	default:
		return PhasePaused
	}
}
