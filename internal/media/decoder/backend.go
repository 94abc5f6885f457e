// Package decoder implements media.Backend on top of beep.
//
// MP3 and WAV resources are decoded from local files or fetched over HTTP
// and mixed into a single speaker output:
//
//	backend := decoder.NewBackend(
//	    decoder.WithSampleRate(44100),
//	    decoder.WithFetcher(httpclient.NewClient()),
//	    decoder.WithLogger(log))
//	h := backend.Open("/audio/1. christmas-nice.mp3")
//	h.Load()
//	err := h.Play(ctx)
package decoder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/media"
)

const (
	// DefaultSampleRate is the speaker sample rate used when none is set.
	DefaultSampleRate = 44100

	// DefaultTickInterval is how often timeupdate is emitted while playing.
	DefaultTickInterval = 250 * time.Millisecond

	speakerBuffer   = 100 * time.Millisecond
	resampleQuality = 4
)

// Fetcher downloads remote resources. *http.Client from internal/http
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, onProgress func(read, total int64)) ([]byte, error)
}

// Output is the sink handles stream into. Lock and Unlock guard every
// streamer added with Play, as speaker.Lock does for the speaker.
type Output interface {
	Init(sampleRate beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// speakerOutput plays through the system audio device.
type speakerOutput struct {
	once sync.Once
	err  error
}

func (o *speakerOutput) Init(sr beep.SampleRate) error {
	o.once.Do(func() {
		if err := speaker.Init(sr, sr.N(speakerBuffer)); err != nil {
			o.err = fmt.Errorf("initializing speaker: %w", err)
		}
	})
	return o.err
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (o *speakerOutput) Lock()                { speaker.Lock() }
func (o *speakerOutput) Unlock()              { speaker.Unlock() }

// Backend opens decoder handles.
type Backend struct {
	sampleRate beep.SampleRate
	tick       time.Duration
	fetcher    Fetcher
	out        Output
	log        *zap.Logger
}

var _ media.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithSampleRate sets the output sample rate in Hz. Resources with another
// rate are resampled.
func WithSampleRate(hz int) Option {
	return func(b *Backend) {
		if hz > 0 {
			b.sampleRate = beep.SampleRate(hz)
		}
	}
}

// WithFetcher enables http(s) resources.
func WithFetcher(f Fetcher) Option {
	return func(b *Backend) { b.fetcher = f }
}

// WithOutput replaces the system speaker.
func WithOutput(o Output) Option {
	return func(b *Backend) { b.out = o }
}

// WithTickInterval sets the timeupdate period.
func WithTickInterval(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.tick = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBackend creates a Backend. The speaker is initialised on the first
// successful load.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		sampleRate: DefaultSampleRate,
		tick:       DefaultTickInterval,
		out:        &speakerOutput{},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.Named("decoder")
	return b
}

// Open implements media.Backend. No I/O happens until Load.
func (b *Backend) Open(resource string) media.Handle {
	return &Handle{
		id:       uuid.NewString(),
		resource: resource,
		b:        b,
		volume:   1,
		subs:     make(map[int]func(media.Event)),
		loaded:   make(chan struct{}),
		done:     make(chan struct{}),
		signal:   make(chan struct{}, 1),
	}
}
