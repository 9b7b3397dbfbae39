package repository

import (
	"context"

	"MusicFlow/model"
	"MusicFlow/storage"
)

// TrackRepository defines the operations on the tracks collection.
type TrackRepository interface {
	GetAllTracks(ctx context.Context) []model.Track
	GetTrackByID(ctx context.Context, id string) (*model.Track, error)
	UpdateTrack(ctx context.Context, id string, patch Patch) (*model.Track, error)
	ToggleLike(ctx context.Context, id string) (bool, error)
	AppendTracks(ctx context.Context, tracks []model.Track) error
}

type jsonTrackRepository struct {
	tracks *storage.Collection[model.Track]
}

// NewJSONTrackRepository creates a TrackRepository over the store.
func NewJSONTrackRepository(store *storage.Store) TrackRepository {
	return &jsonTrackRepository{tracks: storage.NewCollection[model.Track](store, storage.Tracks)}
}

func (r *jsonTrackRepository) GetAllTracks(ctx context.Context) []model.Track {
	return r.tracks.All(ctx)
}

func (r *jsonTrackRepository) GetTrackByID(ctx context.Context, id string) (*model.Track, error) {
	track, ok := r.tracks.Find(ctx, id)
	if !ok {
		return nil, notFound("track", id)
	}
	return &track, nil
}

// UpdateTrack merges patch into the track. The id cannot be changed.
func (r *jsonTrackRepository) UpdateTrack(ctx context.Context, id string, patch Patch) (*model.Track, error) {
	var updated model.Track
	err := r.tracks.Update(ctx, func(tracks []model.Track) ([]model.Track, error) {
		for i := range tracks {
			if tracks[i].ID != id {
				continue
			}
			merged, err := applyPatch(tracks[i], patch, "id")
			if err != nil {
				return nil, err
			}
			if err := merged.Validate(); err != nil {
				return nil, err
			}
			tracks[i] = merged
			updated = merged
			return tracks, nil
		}
		return nil, notFound("track", id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ToggleLike flips the liked flag and returns the new value.
func (r *jsonTrackRepository) ToggleLike(ctx context.Context, id string) (bool, error) {
	var liked bool
	err := r.tracks.Update(ctx, func(tracks []model.Track) ([]model.Track, error) {
		for i := range tracks {
			if tracks[i].ID == id {
				tracks[i].Liked = !tracks[i].Liked
				liked = tracks[i].Liked
				return tracks, nil
			}
		}
		return nil, notFound("track", id)
	})
	return liked, err
}

// AppendTracks adds tracks to the end of the collection.
func (r *jsonTrackRepository) AppendTracks(ctx context.Context, tracks []model.Track) error {
	return r.tracks.Update(ctx, func(existing []model.Track) ([]model.Track, error) {
		return append(existing, tracks...), nil
	})
}
