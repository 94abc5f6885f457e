package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/playdeck/internal/audio"
	ioutils "github.com/handiism/playdeck/internal/io"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the playlist as M3U, PLS, WPL or ZPL",
	Long: `Write the resolved playlist to file, or to stdout when no file is
given. The format comes from --format, then the file extension, then the
export_format setting.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "m3u, pls, wpl or zpl")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var output string
	if len(args) == 1 && args[0] != "-" {
		output = args[0]
	}
	format, err := resolveExportFormat(exportFormat, output, rt.Settings.ExportFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pl, err := rt.Playlist(ctx)
	if err != nil {
		return fmt.Errorf("building playlist: %w", err)
	}
	content := audio.NewPlaylistCreator(format, rt.Settings.M3UExtended).CreatePlaylist(pl)

	if output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := ioutils.WriteFile(ctx, output, []byte(content)); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	rt.Log.Info("playlist exported", zap.String("path", output), zap.Stringer("format", format))
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ %s written (%s, %d tracks)\n", output, format, pl.Len())
	return nil
}

func resolveExportFormat(flag, output, setting string) (audio.PlaylistFormat, error) {
	if flag != "" {
		return audio.ParseFormat(flag)
	}
	if output != "" {
		if f, err := audio.FormatFromExtension(output); err == nil {
			return f, nil
		}
	}
	return audio.ParseFormat(setting)
}
