package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"MusicFlow/core/transfer"

	"github.com/spf13/cobra"
)

var (
	backupOut string
	restoreIn string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup of the library",
	Long:  `Write tracks, artists, albums and playlists into one JSON backup document.`,
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

		now := time.Now()
		out := backupOut
		if out == "" {
			out = fmt.Sprintf("musicflow-backup-%s.json", now.Format("2006-01-02"))
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()

		if err := transfer.CreateBackup(cmd.Context(), store, now).Encode(f); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", out)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the library from a backup",
	Long:  `Overwrite every collection present in a backup document. Collections missing from the backup are left as they are.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreIn == "" {
			return fmt.Errorf("--in is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(restoreIn)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", restoreIn, err)
		}
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		restored, err := transfer.Restore(cmd.Context(), store, data)
		if len(restored) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Restored: %s\n", strings.Join(restored, ", "))
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(backupCmd, restoreCmd)
	backupCmd.Flags().StringVarP(&backupOut, "out", "o", "", "output file (default: musicflow-backup-<date>.json)")
	restoreCmd.Flags().StringVarP(&restoreIn, "in", "i", "", "backup file to restore")
}
