package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loopCmd = &cobra.Command{
	Use:   "loop [resource]",
	Short: "Loop a single background track until interrupted",
	Long: `Loop one track forever. The resource defaults to the single_track
setting and may be a local path or an http(s) URL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoop,
}

var loopVolume float64

func init() {
	loopCmd.Flags().Float64Var(&loopVolume, "volume", -1, "volume in [0,1] (default from single_track_volume)")
	rootCmd.AddCommand(loopCmd)
}

func runLoop(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if len(args) == 1 {
		rt.Settings.SingleTrack = args[0]
	}
	if loopVolume >= 0 {
		rt.Settings.SingleTrackVolume = loopVolume
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	rt.ServeMetrics(ctx)

	player := rt.NewSingleTrackPlayer(printNotifier())
	defer player.Dispose()
	player.Subscribe(printChange)

	rt.Log.Info("loop starting", zap.String("resource", rt.Settings.SingleTrack))
	fmt.Printf("🔁 %s\n", player.State().Track.DisplayTitle())
	player.TogglePlay(ctx)

	<-ctx.Done()
	fmt.Println("\nStopped.")
	return nil
}
