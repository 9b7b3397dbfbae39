package cmd

import (
	"fmt"
	"strings"

	"MusicFlow/core/library"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the sample library",
	Long:  `Write the bundled sample library into every collection (tracks, artists, albums, playlists) that is still empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		written, err := library.Seed(cmd.Context(), store)
		if err != nil {
			return err
		}
		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All collections already have data, nothing seeded.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded: %s\n", strings.Join(written, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
