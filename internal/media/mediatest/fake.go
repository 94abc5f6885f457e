// Package mediatest provides an in-memory media.Backend for tests.
//
// Handles never produce events on their own; tests drive them explicitly:
//
//	backend := mediatest.NewBackend()
//	player := playback.NewPlaylistPlayer(backend, playlist)
//	player.Play(ctx)
//
//	h := backend.Last()
//	h.SetDuration(180)
//	h.Emit(media.EventLoadedMetadata)
//	h.Emit(media.EventEnded)
package mediatest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/handiism/playdeck/internal/media"
)

// Backend is a scriptable media.Backend.
type Backend struct {
	mu      sync.Mutex
	handles []*Handle
	playErr map[string]error
	gate    map[string]chan struct{}
}

// NewBackend creates an empty Backend.
func NewBackend() *Backend {
	return &Backend{
		playErr: make(map[string]error),
		gate:    make(map[string]chan struct{}),
	}
}

// Open implements media.Backend.
func (b *Backend) Open(resource string) media.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := &Handle{
		id:       uuid.NewString(),
		resource: resource,
		volume:   1,
		playErr:  b.playErr[resource],
		gate:     b.gate[resource],
		subs:     make(map[int]func(media.Event)),
	}
	b.handles = append(b.handles, h)
	return h
}

// FailPlay makes Play fail with err on handles opened for resource after
// this call. A nil err clears the failure.
func (b *Backend) FailPlay(resource string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.playErr, resource)
		return
	}
	b.playErr[resource] = err
}

// HoldPlay makes Play on handles opened for resource after this call block
// until the returned function is called or the context is done.
func (b *Backend) HoldPlay(resource string) (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.gate[resource] = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Handles returns every handle opened so far, oldest first.
func (b *Backend) Handles() []*Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Handle(nil), b.handles...)
}

// Last returns the most recently opened handle, or nil.
func (b *Backend) Last() *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.handles) == 0 {
		return nil
	}
	return b.handles[len(b.handles)-1]
}

// Live returns the handles that have not been closed.
func (b *Backend) Live() []*Handle {
	var live []*Handle
	for _, h := range b.Handles() {
		if !h.Closed() {
			live = append(live, h)
		}
	}
	return live
}

// Handle is a scriptable media.Handle.
type Handle struct {
	id       string
	resource string

	mu          sync.Mutex
	subs        map[int]func(media.Event)
	nextSub     int
	loaded      bool
	playing     bool
	closed      bool
	loop        bool
	volume      float64
	currentTime float64
	duration    float64
	hasDuration bool
	playCalls   int
	pauseCalls  int
	seeks       []float64
	playErr     error
	gate        chan struct{}
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

// Load implements media.Handle.
func (h *Handle) Load() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = true
}

// Play implements media.Handle.
func (h *Handle) Play(ctx context.Context) error {
	h.mu.Lock()
	h.playCalls++
	gate := h.gate
	pauses := h.pauseCalls
	h.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return media.ErrClosed
	}
	if h.playErr != nil {
		return h.playErr
	}
	if h.pauseCalls != pauses {
		return media.ErrAborted
	}
	h.playing = true
	return nil
}

// Pause implements media.Handle.
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauseCalls++
	h.playing = false
}

// CurrentTime implements media.Handle.
func (h *Handle) CurrentTime() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentTime
}

// SetCurrentTime implements media.Handle. The value is stored unclamped.
func (h *Handle) SetCurrentTime(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentTime = seconds
	h.seeks = append(h.seeks, seconds)
}

// Duration implements media.Handle.
func (h *Handle) Duration() (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration, h.hasDuration
}

// Volume implements media.Handle.
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// SetVolume implements media.Handle.
func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
}

// SetLoop implements media.Handle.
func (h *Handle) SetLoop(loop bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loop = loop
}

// Close implements media.Handle.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.playing = false
	h.subs = make(map[int]func(media.Event))
	return nil
}

// Emit delivers an event to the current subscribers on the calling
// goroutine.
func (h *Handle) Emit(t media.EventType) { h.EmitErr(t, nil) }

// EmitErr delivers an event carrying err.
func (h *Handle) EmitErr(t media.EventType, err error) {
	h.mu.Lock()
	subs := make([]func(media.Event), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(media.Event{Type: t, Err: err})
	}
}

// SetDuration makes Duration report seconds.
func (h *Handle) SetDuration(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.duration = seconds
	h.hasDuration = true
}

// Progress sets the position and emits EventTimeUpdate.
func (h *Handle) Progress(seconds float64) {
	h.mu.Lock()
	h.currentTime = seconds
	h.mu.Unlock()
	h.Emit(media.EventTimeUpdate)
}

// Subscribers returns the number of attached subscribers.
func (h *Handle) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Loaded reports whether Load was called.
func (h *Handle) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

// Playing reports whether the handle is currently playing.
func (h *Handle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// Closed reports whether Close was called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Looping reports the loop flag.
func (h *Handle) Looping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loop
}

// PlayCalls returns how many times Play was called.
func (h *Handle) PlayCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playCalls
}

// PauseCalls returns how many times Pause was called.
func (h *Handle) PauseCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pauseCalls
}

// Seeks returns every value passed to SetCurrentTime.
func (h *Handle) Seeks() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64(nil), h.seeks...)
}
