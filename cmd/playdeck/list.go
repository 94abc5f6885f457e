package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/playdeck/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the resolved playlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		pl, err := rt.Playlist(cmd.Context())
		if err != nil {
			return fmt.Errorf("building playlist: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%d tracks)\n", displayName(pl.Name), pl.Len())
		for i, t := range pl.Tracks() {
			fmt.Fprintf(out, "%3d. %s\n     %s\n", i+1, t.DisplayTitle(), model.ResourcePath(rt.Settings.AudioRoot, t))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
