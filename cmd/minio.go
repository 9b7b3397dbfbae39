package cmd

import (
	"context"
	"fmt"
	"time"

	"MusicFlow/storage"

	"github.com/spf13/cobra"
)

var minioStats bool

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "List audio files in the MinIO bucket",
	Long:  `List the audio objects stored in the MinIO bucket, or print bucket statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.MinioEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is not set, audio is stored locally in %s", cfg.AudioDir)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioAudioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		objects, stats, err := store.ListObjects(ctx)
		if err != nil {
			return err
		}

		if !minioStats {
			for _, o := range objects {
				fmt.Fprintf(out, "%-40s %10s  %s\n", o.Key, storage.FormatSize(o.Size), o.LastModified.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Objects: %d\nTotal size: %s\n", stats.TotalObjects, storage.FormatSize(stats.TotalSize))
		if !stats.LastModified.IsZero() {
			fmt.Fprintf(out, "Last modified: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "only print bucket statistics")

	minioCmd.Example = `  # list every audio file
  musicflow minio

  # print bucket statistics
  musicflow minio -s`
}
