package cmd

import (
	"fmt"
	"os"

	"MusicFlow/cache"
	"MusicFlow/config"
	"MusicFlow/logger"
	"MusicFlow/server"
	"MusicFlow/storage"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "musicflow",
	Short: "MusicFlow is a personal music library server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		logger.Info("Starting MusicFlow server...")
		return server.Start(cfg)
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")
}

// loadConfig reads the configuration and initializes the logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// openStore opens the document store the way the server does, so writes
// from the CLI refresh the Redis document cache when one is configured.
func openStore(cfg *config.Config) (*storage.Store, func(), error) {
	if cfg.RedisAddr == "" {
		store, err := storage.NewStore(cfg.DataDir, nil)
		return store, func() {}, err
	}
	c, err := cache.NewRedisDocumentCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	store, err := storage.NewStore(cfg.DataDir, c)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return store, func() { c.Close() }, nil
}
