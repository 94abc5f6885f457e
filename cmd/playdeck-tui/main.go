// Command playdeck-tui is the interactive terminal player.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handiism/playdeck/internal/app"
	"github.com/handiism/playdeck/internal/tui"
)

var (
	configPath string
	envFile    string
	single     bool
)

var rootCmd = &cobra.Command{
	Use:           "playdeck-tui",
	Short:         "Interactive PlayDeck player",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to settings.json (default ~/.playdeck/settings.json)")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file with PLAYDECK_* overrides")
	rootCmd.Flags().BoolVar(&single, "single", false, "loop the single_track setting instead of the playlist")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// The TUI owns the terminal, so logs only go to the file.
	rt, err := app.New(app.Options{ConfigPath: configPath, EnvFile: envFile})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	rt.ServeMetrics(ctx)

	notifier := tui.NewNotifier()
	if single {
		return tui.Run(rt.NewSingleTrackPlayer(notifier), notifier, tui.Options{})
	}

	pl, err := rt.Playlist(ctx)
	if err != nil {
		return fmt.Errorf("building playlist: %w", err)
	}
	return tui.Run(rt.NewPlaylistPlayer(pl, notifier), notifier, tui.Options{
		Tags:      rt.Tags,
		AudioRoot: rt.Settings.AudioRoot,
	})
}
