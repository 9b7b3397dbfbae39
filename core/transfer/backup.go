package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"MusicFlow/logger"
	"MusicFlow/model"
	"MusicFlow/storage"
)

// BackupVersion is written into every backup document.
const BackupVersion = "1.0"

// Backup is a snapshot of the library collections. Users and history are
// not part of it.
type Backup struct {
	Version   string           `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
	Tracks    []model.Track    `json:"tracks"`
	Artists   []model.Artist   `json:"artists"`
	Albums    []model.Album    `json:"albums"`
	Playlists []model.Playlist `json:"playlists"`
}

// CreateBackup reads every library collection from the store.
func CreateBackup(ctx context.Context, store *storage.Store, now time.Time) *Backup {
	return &Backup{
		Version:   BackupVersion,
		Timestamp: now.UTC(),
		Tracks:    storage.NewCollection[model.Track](store, storage.Tracks).All(ctx),
		Artists:   storage.NewCollection[model.Artist](store, storage.Artists).All(ctx),
		Albums:    storage.NewCollection[model.Album](store, storage.Albums).All(ctx),
		Playlists: storage.NewCollection[model.Playlist](store, storage.Playlists).All(ctx),
	}
}

// Encode writes the backup as indented JSON.
func (b *Backup) Encode(w io.Writer) error {
	return writeJSON(w, b)
}

// Restore replaces every collection present in data wholesale and returns
// the names it restored. Collections are written one at a time; a failure
// leaves the ones already written in place.
func Restore(ctx context.Context, store *storage.Store, data []byte) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, model.NewValidationError("", "backup is not a JSON object")
	}

	steps := []struct {
		name    string
		restore func(raw json.RawMessage) error
	}{
		{storage.Tracks, func(raw json.RawMessage) error { return restoreCollection[model.Track](ctx, store, storage.Tracks, raw) }},
		{storage.Artists, func(raw json.RawMessage) error { return restoreCollection[model.Artist](ctx, store, storage.Artists, raw) }},
		{storage.Albums, func(raw json.RawMessage) error { return restoreCollection[model.Album](ctx, store, storage.Albums, raw) }},
		{storage.Playlists, func(raw json.RawMessage) error {
			return restoreCollection[model.Playlist](ctx, store, storage.Playlists, raw)
		}},
	}

	present := 0
	for _, step := range steps {
		if _, ok := doc[step.name]; ok {
			present++
		}
	}
	if present == 0 {
		return nil, model.NewValidationError("", "backup contains no tracks, artists, albums or playlists")
	}

	var restored []string
	for _, step := range steps {
		raw, ok := doc[step.name]
		if !ok {
			continue
		}
		if err := step.restore(raw); err != nil {
			return restored, err
		}
		restored = append(restored, step.name)
	}
	logger.Info("backup restored", logger.Any("collections", restored))
	return restored, nil
}

func restoreCollection[T model.Record](ctx context.Context, store *storage.Store, name string, raw json.RawMessage) error {
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return model.NewValidationError(name, "must be an array of records")
	}
	if err := storage.NewCollection[T](store, name).Save(ctx, records); err != nil {
		return fmt.Errorf("failed to restore %s: %w", name, err)
	}
	return nil
}
