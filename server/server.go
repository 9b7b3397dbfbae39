package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MusicFlow/cache"
	"MusicFlow/config"
	"MusicFlow/logger"
	"MusicFlow/storage"

	"github.com/gorilla/mux"
)

// Server owns the router and the background workers serving it.
type Server struct {
	cfg     *config.Config
	handler *APIHandler
	limiter *clientLimiter
	router  *mux.Router
}

// New builds a Server over an opened store and audio backend.
func New(cfg *config.Config, store *storage.Store, audioStore storage.AudioStore) *Server {
	handler := NewAPIHandler(store, audioStore, cfg)
	limiter := newClientLimiter(cfg.AuthRateLimit, cfg.TrustProxy)
	return &Server{
		cfg:     cfg,
		handler: handler,
		limiter: limiter,
		router:  NewRouter(handler, limiter),
	}
}

// Router returns the HTTP handler for all routes.
func (s *Server) Router() http.Handler {
	return s.router
}

// Backends are the storage resources a server runs on.
type Backends struct {
	Store    *storage.Store
	Audio    storage.AudioStore
	DocCache *cache.RedisDocumentCache // nil when Redis is not configured
}

// Close releases the backends.
func (b *Backends) Close() {
	if b.DocCache != nil {
		if err := b.DocCache.Close(); err != nil {
			logger.Warn("failed to close document cache", logger.ErrorField(err))
		}
	}
}

// OpenBackends opens the document store, the optional Redis document cache
// and the audio backend described by cfg.
func OpenBackends(cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	var docCache cache.DocumentCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisDocumentCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.DocCache = c
		docCache = c
		logger.Info("document cache enabled", logger.String("addr", cfg.RedisAddr))
	}

	store, err := storage.NewStore(cfg.DataDir, docCache)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Store = store

	if cfg.MinioEndpoint != "" {
		audio, err := storage.NewMinioAudioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		b.Audio = audio
		logger.Info("audio backend: minio", logger.String("endpoint", cfg.MinioEndpoint), logger.String("bucket", cfg.MinioBucket))
	} else {
		audio, err := storage.NewLocalAudioStore(cfg.AudioDir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Audio = audio
		logger.Info("audio backend: local", logger.String("dir", cfg.AudioDir))
	}
	return b, nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down gracefully.
func Start(cfg *config.Config) error {
	backends, err := OpenBackends(cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backends.Store.Watch(ctx); err != nil {
		logger.Warn("document watcher disabled", logger.ErrorField(err))
	}

	s := New(cfg, backends.Store, backends.Audio)
	if s.limiter != nil {
		go s.limiter.run(ctx, 5*time.Minute)
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			logger.String("addr", server.Addr),
			logger.String("data_dir", cfg.DataDir),
			logger.String("web_dir", cfg.WebAppDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
