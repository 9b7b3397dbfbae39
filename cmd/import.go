package cmd

import (
	"bytes"
	"fmt"
	"os"

	"MusicFlow/core/transfer"
	"MusicFlow/repository"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	importFormat    string
	importPlaylists bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tracks from a JSON or CSV file",
	Long: `Import tracks (or playlists with --playlists) from a JSON or CSV file.
The format comes from --format, else the file extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		format, err := transfer.DetectFormat(importFormat, "", path)
		if err != nil {
			return err
		}
		total, err := transfer.CountRecords(format, data)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		svc := transfer.NewService(repository.NewJSONTrackRepository(store), repository.NewJSONPlaylistRepository(store))

		what, run := "tracks", svc.ImportTracks
		if importPlaylists {
			what, run = "playlists", svc.ImportPlaylists
		}
		bar := progressbar.NewOptions(
			total,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Importing "+what+"..."),
			progressbar.OptionClearOnFinish(),
		)

		result, err := run(cmd.Context(), format, bytes.NewReader(data), func() { bar.Add(1) })
		bar.Finish()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d %s (%d skipped)\n", result.Imported, result.Total, what, result.Duplicates)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "json or csv (default: from the file extension)")
	importCmd.Flags().BoolVar(&importPlaylists, "playlists", false, "import playlists instead of tracks")
}
