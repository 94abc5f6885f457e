package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handiism/playdeck/internal/app"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "playdeck",
	Short:         "PlayDeck plays a playlist or a looping background track.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to settings.json (default ~/.playdeck/settings.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with PLAYDECK_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "mirror the log to stderr")
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRuntime() (*app.Runtime, error) {
	return app.New(app.Options{
		ConfigPath: configPath,
		EnvFile:    envFile,
		Console:    verbose,
	})
}
