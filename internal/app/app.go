// Package app wires settings, logging, the audio backend and metrics into
// the players used by the PlayDeck binaries.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/audio"
	"github.com/handiism/playdeck/internal/config"
	httpclient "github.com/handiism/playdeck/internal/http"
	"github.com/handiism/playdeck/internal/logger"
	"github.com/handiism/playdeck/internal/media"
	"github.com/handiism/playdeck/internal/media/decoder"
	"github.com/handiism/playdeck/internal/metrics"
	"github.com/handiism/playdeck/internal/model"
	"github.com/handiism/playdeck/internal/playback"
)

// Options selects the configuration sources.
type Options struct {
	ConfigPath string // defaults to config.DefaultPath()
	EnvFile    string // defaults to ".env"

	// Console mirrors logs to stderr. The TUI turns it off.
	Console bool
}

// Runtime holds the shared services of a PlayDeck process.
type Runtime struct {
	Settings *config.Settings
	Log      *zap.Logger
	HTTP     *httpclient.Client
	Tags     *audio.TagReader
	Registry *prometheus.Registry
	Metrics  *metrics.Recorder

	backend media.Backend
}

// New loads settings and builds the runtime.
func New(opts Options) (*Runtime, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath()
	}
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.ApplyEnv(opts.EnvFile); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      logger.LogLevel(settings.LogLevel),
		OutputPath: settings.LogFile,
		MaxSize:    settings.LogMaxSizeMB,
		MaxBackups: settings.LogMaxBackups,
		MaxAge:     settings.LogMaxAgeDays,
		Compress:   settings.LogCompress,
		Console:    opts.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	client := httpclient.NewClient()
	backend := decoder.NewBackend(
		decoder.WithSampleRate(settings.SampleRate),
		decoder.WithFetcher(client),
		decoder.WithLogger(log.Named("decoder")),
	)
	return &Runtime{
		Settings: settings,
		Log:      log,
		HTTP:     client,
		Tags:     audio.NewTagReader(client),
		Registry: reg,
		Metrics:  rec,
		backend:  backend,
	}, nil
}

// Playlist builds the configured playlist. With ResolveTitles set, tracks
// without a title are named from their tags.
func (r *Runtime) Playlist(ctx context.Context) (*model.Playlist, error) {
	pl, err := r.Settings.BuildPlaylist(ctx, r.HTTP)
	if err != nil {
		return nil, err
	}
	if !r.Settings.ResolveTitles {
		return pl, nil
	}

	tracks, err := audio.ResolveTitles(ctx, r.Tags, r.Settings.AudioRoot, pl.Tracks(), audio.DefaultResolveConcurrency)
	if err != nil {
		return nil, err
	}
	resolved, err := model.NewPlaylist(tracks...)
	if err != nil {
		return nil, err
	}
	resolved.Name = pl.Name
	return resolved, nil
}

// NewPlaylistPlayer creates a player for pl that reports to the metrics
// recorder. notifier may be nil.
func (r *Runtime) NewPlaylistPlayer(pl *model.Playlist, notifier playback.Notifier) *playback.PlaylistPlayer {
	p := playback.NewPlaylistPlayer(r.backend, pl, r.playerOptions(r.Settings.Volume, notifier)...)
	p.Subscribe(r.Metrics.Observe)
	return p
}

// NewSingleTrackPlayer creates the looping background player at the
// single-track volume. notifier may be nil.
func (r *Runtime) NewSingleTrackPlayer(notifier playback.Notifier) *playback.SingleTrackPlayer {
	p := playback.NewSingleTrackPlayer(r.backend, r.Settings.SingleTrack, r.playerOptions(r.Settings.SingleTrackVolume, notifier)...)
	p.Subscribe(r.Metrics.Observe)
	return p
}

func (r *Runtime) playerOptions(volume float64, notifier playback.Notifier) []playback.Option {
	opts := []playback.Option{
		playback.WithLogger(r.Log.Named("player")),
		playback.WithVolume(volume),
		playback.WithAudioRoot(r.Settings.AudioRoot),
	}
	if notifier != nil {
		opts = append(opts, playback.WithNotifier(notifier))
	}
	return opts
}

// ServeMetrics starts the /metrics endpoint in the background when an
// address is configured. It stops when ctx is done.
func (r *Runtime) ServeMetrics(ctx context.Context) {
	addr := r.Settings.MetricsAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, addr, r.Registry, r.Log); err != nil {
			r.Log.Error("metrics endpoint failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
}

// Close flushes the logger.
func (r *Runtime) Close() {
	_ = r.Log.Sync()
}
