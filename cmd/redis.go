package cmd

import (
	"context"
	"fmt"
	"time"

	"MusicFlow/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis document cache",
	Long:  `Check that the Redis document cache is reachable and accepts reads and writes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is not set, the document cache is disabled")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Redis: %s, DB: %d\n", cfg.RedisAddr, cfg.RedisDB)

		c, err := cache.NewRedisDocumentCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		start := time.Now()
		if err := c.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		fmt.Fprintf(out, "Connected, ping %s\n", time.Since(start).Round(time.Microsecond))

		if err := c.CheckRoundTrip(ctx); err != nil {
			return fmt.Errorf("redis read/write check failed: %w", err)
		}
		fmt.Fprintln(out, "Read/write check passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
