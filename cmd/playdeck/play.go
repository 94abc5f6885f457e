package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/playback"
)

var playVolume float64

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the configured playlist until interrupted",
	Long: `Play the configured playlist from the first track. Tracks advance
automatically and the playlist wraps around. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().Float64Var(&playVolume, "volume", -1, "initial volume in [0,1] (default from settings)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if playVolume >= 0 {
		rt.Settings.Volume = playVolume
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	rt.ServeMetrics(ctx)

	pl, err := rt.Playlist(ctx)
	if err != nil {
		return fmt.Errorf("building playlist: %w", err)
	}

	player := rt.NewPlaylistPlayer(pl, printNotifier())
	defer player.Dispose()
	player.Subscribe(printChange)

	rt.Log.Info("playback starting", zap.String("playlist", pl.Name), zap.Int("tracks", pl.Len()))
	fmt.Printf("♫ %s (%d tracks)\n", displayName(pl.Name), pl.Len())
	printChange(playback.Change{Reason: playback.ReasonTrackChanged, State: player.State()})
	player.Play(ctx)

	<-ctx.Done()
	fmt.Println("\nStopped.")
	return nil
}

func printNotifier() playback.Notifier {
	return playback.NotifierFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, "⚠ "+msg)
	})
}

func printChange(c playback.Change) {
	switch c.Reason {
	case playback.ReasonTrackChanged:
		fmt.Printf("▶ %d. %s\n", c.State.Index+1, c.State.Track.DisplayTitle())
	case playback.ReasonPlayFailed, playback.ReasonLoadFailed:
		fmt.Fprintln(os.Stderr, "✗ "+c.State.Error)
	}
}

func displayName(name string) string {
	if name == "" {
		return "Playlist"
	}
	return name
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
