package media

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned by operations on a released handle.
	ErrClosed = errors.New("media handle closed")

	// ErrNotLoaded is returned when playback is requested on a resource
	// that failed to load.
	ErrNotLoaded = errors.New("media resource not loaded")

	// ErrAborted is returned by Play when Pause is called while the play
	// request is still waiting for the resource.
	ErrAborted = errors.New("play request aborted by pause")
)

// EventType identifies an asynchronous notification from a Handle.
type EventType int

const (
	// EventError reports a decode or fetch failure. Event.Err holds the cause.
	EventError EventType = iota

	// EventCanPlayThrough reports that the resource is fully buffered.
	EventCanPlayThrough

	// EventLoadedMetadata reports that the duration is known.
	EventLoadedMetadata

	// EventTimeUpdate reports playback progress.
	EventTimeUpdate

	// EventEnded reports the natural end of a non-looping resource.
	EventEnded
)

// String returns the DOM-style event name.
func (t EventType) String() string {
	switch t {
	case EventError:
		return "error"
	case EventCanPlayThrough:
		return "canplaythrough"
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventTimeUpdate:
		return "timeupdate"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is a notification delivered to Handle subscribers.
type Event struct {
	Type EventType
	Err  error
}

// Backend constructs handles bound to a single resource.
//
// Open must not block on I/O: loading starts when Handle.Load is called and
// its outcome is reported through events.
type Backend interface {
	Open(resource string) Handle
}

// Handle is a live connection to a decoder/player for one resource.
//
// Implementations must deliver events from their own goroutines, never
// synchronously from inside a Handle method, so callers may hold locks
// while commanding the handle.
type Handle interface {
	// ID returns a unique identifier, used for logging.
	ID() string

	// Resource returns the resource the handle is bound to.
	Resource() string

	// Subscribe registers fn for all events. The returned function detaches
	// fn; after it returns fn receives no new events, although a delivery
	// already in flight on another goroutine may still complete.
	Subscribe(fn func(Event)) (unsubscribe func())

	// Load starts fetching and decoding the resource.
	Load()

	// Play begins or resumes playback. It blocks until playback has
	// started, the resource failed to load, or ctx is done. Pause called
	// while Play is waiting makes it return ErrAborted.
	Play(ctx context.Context) error

	// Pause halts playback, keeping the position.
	Pause()

	// CurrentTime returns the playback position in seconds.
	CurrentTime() float64

	// SetCurrentTime moves the playback position. Out-of-range values are
	// handled by the implementation.
	SetCurrentTime(seconds float64)

	// Duration returns the resource length in seconds. ok is false until
	// metadata is available.
	Duration() (seconds float64, ok bool)

	// Volume returns the output volume in [0,1].
	Volume() float64

	// SetVolume sets the output volume in [0,1].
	SetVolume(v float64)

	// SetLoop makes playback restart from the beginning instead of ending.
	SetLoop(loop bool)

	// Close stops playback, detaches all subscribers and releases the
	// decoder. Close is idempotent.
	Close() error
}
