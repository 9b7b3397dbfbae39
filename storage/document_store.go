package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"MusicFlow/cache"
	"MusicFlow/logger"
)

// Collection document names.
const (
	Tracks    = "tracks"
	Artists   = "artists"
	Albums    = "albums"
	Playlists = "playlists"
	Users     = "users"
	History   = "history"
)

// Store keeps one JSON document per collection in a directory.
//
// Reads never fail: a missing or unparsable document reads as an empty
// collection. Writes replace the whole document through a temp file and a
// rename, and Lock serializes read-modify-write cycles within the process.
// Separate processes writing the same directory still race, last write wins.
type Store struct {
	dir   string
	cache cache.DocumentCache
	locks sync.Map // collection name -> *sync.Mutex
}

// NewStore creates the data directory if needed. c may be nil.
func NewStore(dir string, c cache.DocumentCache) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{dir: dir, cache: c}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Lock acquires the mutex for a collection and returns its release func.
func (s *Store) Lock(name string) func() {
	v, _ := s.locks.LoadOrStore(name, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Read returns the raw document, or nil when it does not exist or cannot be read.
// A cache miss is filled under the collection lock, so a document read here
// can never replace one cached by a concurrent Write.
func (s *Store) Read(ctx context.Context, name string) []byte {
	if s.cache == nil {
		return s.readLocked(ctx, name)
	}
	if data, ok := s.cached(ctx, name); ok {
		return data
	}
	unlock := s.Lock(name)
	defer unlock()
	return s.readLocked(ctx, name)
}

// readLocked is Read for callers that already hold the collection lock.
func (s *Store) readLocked(ctx context.Context, name string) []byte {
	if data, ok := s.cached(ctx, name); ok {
		return data
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read collection, treating as empty",
				logger.String("collection", name), logger.ErrorField(err))
		}
		return nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, name, data); err != nil {
			logger.Warn("document cache write failed", logger.String("collection", name), logger.ErrorField(err))
		}
	}
	return data
}

func (s *Store) cached(ctx context.Context, name string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, name)
	if err == nil {
		return data, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("document cache read failed", logger.String("collection", name), logger.ErrorField(err))
	}
	return nil, false
}

// Write serializes records and replaces the document. Callers hold the
// collection lock.
func (s *Store) Write(ctx context.Context, name string, records interface{}) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection %s: %w", name, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, name, data); err != nil {
			// a stale entry would shadow the new file, so drop it
			logger.Warn("document cache write failed", logger.String("collection", name), logger.ErrorField(err))
			s.evict(ctx, name)
		}
	}
	logger.Debug("collection written", logger.String("collection", name), logger.Int("bytes", len(data)))
	return nil
}

func (s *Store) evict(ctx context.Context, name string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, name); err != nil {
		logger.Warn("document cache evict failed", logger.String("collection", name), logger.ErrorField(err))
	}
}
