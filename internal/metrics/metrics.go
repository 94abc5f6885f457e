// Package metrics exports playback activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/playback"
)

// Recorder folds player changes into Prometheus collectors.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	rec, err := metrics.NewRecorder(reg)
//	unsubscribe := player.Subscribe(rec.Observe)
//	defer unsubscribe()
//	http.Handle("/metrics", metrics.Handler(reg))
type Recorder struct {
	events  *prometheus.CounterVec
	volume  prometheus.Gauge
	playing prometheus.Gauge
	track   prometheus.Gauge
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playdeck_playback_events_total",
				Help: "Player state changes by reason. Progress updates are not counted.",
			},
			[]string{"reason"},
		),
		volume: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "playdeck_volume",
			Help: "Current player volume in [0,1].",
		}),
		playing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "playdeck_playing",
			Help: "1 while audio is playing.",
		}),
		track: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "playdeck_track_index",
			Help: "Playlist index of the current track.",
		}),
	}
	for _, c := range []prometheus.Collector{r.events, r.volume, r.playing, r.track} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records c. It has the signature expected by Subscribe.
func (r *Recorder) Observe(c playback.Change) {
	if c.Reason != playback.ReasonProgress {
		r.events.WithLabelValues(c.Reason.String()).Inc()
	}
	r.volume.Set(c.State.Volume)
	r.track.Set(float64(c.State.Index))
	if c.State.Playing {
		r.playing.Set(1)
	} else {
		r.playing.Set(0)
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
