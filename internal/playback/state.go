package playback

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/model"
)

// DefaultVolume is the volume of newly created handles until SetVolume is
// called.
const DefaultVolume = 0.3

// Phase is the coarse playback state derived from the player fields.
type Phase int

const (
	// PhaseIdle means no handle has been created yet.
	PhaseIdle Phase = iota

	// PhaseLoading means a handle exists but has not reported metadata.
	PhaseLoading

	// PhasePlaying means the last play request was confirmed.
	PhasePlaying

	// PhasePaused means a loaded handle is not playing.
	PhasePaused

	// PhaseErrored means the last load or play attempt failed.
	PhaseErrored
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// State is a point-in-time snapshot of a player.
type State struct {
	Phase Phase

	// Index is the playlist cursor. Always 0 for a SingleTrackPlayer.
	Index int

	// Track is the current track.
	Track model.Track

	// Playing reflects the last confirmed transport command.
	Playing bool

	// CurrentTime is the playback position in seconds.
	CurrentTime float64

	// Duration is the track length in seconds, valid when DurationKnown.
	Duration      float64
	DurationKnown bool

	// Volume is in [0,1].
	Volume float64

	// Error is the last error message, empty when none.
	Error string
}

// Reason tells subscribers what caused a Change.
type Reason int

const (
	ReasonTrackChanged Reason = iota
	ReasonPlay
	ReasonPause
	ReasonPlayFailed
	ReasonLoadFailed
	ReasonLoaded
	ReasonProgress
	ReasonSeek
	ReasonVolume
	ReasonEnded
	ReasonDisposed
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonTrackChanged:
		return "track_changed"
	case ReasonPlay:
		return "play"
	case ReasonPause:
		return "pause"
	case ReasonPlayFailed:
		return "play_failed"
	case ReasonLoadFailed:
		return "load_failed"
	case ReasonLoaded:
		return "loaded"
	case ReasonProgress:
		return "progress"
	case ReasonSeek:
		return "seek"
	case ReasonVolume:
		return "volume"
	case ReasonEnded:
		return "ended"
	case ReasonDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after every state mutation.
type Change struct {
	Reason Reason
	State  State
}

// Notifier surfaces a blocking user-facing notice.
//
// Notify is called synchronously before the operation that triggered it
// returns.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// Option configures a player.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	volume    float64
	audioRoot string
	notifier  Notifier
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop(),
		volume: DefaultVolume,
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVolume sets the initial volume. Values are clamped to [0,1].
func WithVolume(v float64) Option {
	return func(o *options) {
		if !math.IsNaN(v) {
			o.volume = clampVolume(v)
		}
	}
}

// WithAudioRoot sets the directory or URL that track resources are
// resolved against.
func WithAudioRoot(root string) Option {
	return func(o *options) { o.audioRoot = root }
}

// WithNotifier sets the notifier used by SingleTrackPlayer when playback is
// rejected.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// listeners is the change fan-out shared by both players.
type listeners struct {
	mu   sync.Mutex
	fns  map[int]func(Change)
	next int
}

// Subscribe registers fn for every Change. The returned function removes it.
func (l *listeners) Subscribe(fn func(Change)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(Change))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners) notify(c Change) {
	l.mu.Lock()
	fns := make([]func(Change), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
