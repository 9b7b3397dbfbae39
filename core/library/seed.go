package library

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"MusicFlow/logger"
	"MusicFlow/model"
	"MusicFlow/storage"
)

//go:embed seed/library.json
var seedDocument []byte

// SeedData is the sample library shipped with the binary.
type SeedData struct {
	Tracks    []model.Track    `json:"tracks"`
	Artists   []model.Artist   `json:"artists"`
	Albums    []model.Album    `json:"albums"`
	Playlists []model.Playlist `json:"playlists"`
}

// LoadSeedData decodes the embedded sample library. Playlist counts are
// derived from their members.
func LoadSeedData() (*SeedData, error) {
	var data SeedData
	if err := json.Unmarshal(seedDocument, &data); err != nil {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}
	byID := tracksByID(data.Tracks)
	for i := range data.Playlists {
		p := &data.Playlists[i]
		members := make([]model.Track, 0, len(p.TrackIDs))
		for _, id := range p.TrackIDs {
			if t, ok := byID[id]; ok {
				members = append(members, t)
			}
		}
		p.Recount(members)
	}
	return &data, nil
}

// Seed writes the sample library into every collection that is still empty
// and returns the names of the collections it wrote.
func Seed(ctx context.Context, store *storage.Store) ([]string, error) {
	data, err := LoadSeedData()
	if err != nil {
		return nil, err
	}

	var written []string
	steps := []struct {
		name string
		fill func() (bool, error)
	}{
		{storage.Tracks, func() (bool, error) { return seedIfEmpty(ctx, store, storage.Tracks, data.Tracks) }},
		{storage.Artists, func() (bool, error) { return seedIfEmpty(ctx, store, storage.Artists, data.Artists) }},
		{storage.Albums, func() (bool, error) { return seedIfEmpty(ctx, store, storage.Albums, data.Albums) }},
		{storage.Playlists, func() (bool, error) { return seedIfEmpty(ctx, store, storage.Playlists, data.Playlists) }},
	}
	for _, step := range steps {
		ok, err := step.fill()
		if err != nil {
			return written, fmt.Errorf("failed to seed %s: %w", step.name, err)
		}
		if ok {
			written = append(written, step.name)
			logger.Info("seeded collection", logger.String("collection", step.name))
		}
	}
	return written, nil
}

func seedIfEmpty[T model.Record](ctx context.Context, store *storage.Store, name string, records []T) (bool, error) {
	c := storage.NewCollection[T](store, name)
	wrote := false
	err := c.Update(ctx, func(existing []T) ([]T, error) {
		if len(existing) > 0 {
			return existing, nil
		}
		wrote = true
		return records, nil
	})
	return wrote, err
}
