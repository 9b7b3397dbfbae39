package repository

import (
	"context"
	"strconv"
	"time"

	"MusicFlow/model"
	"MusicFlow/storage"
)

// PlaylistRepository defines the operations on the playlists collection,
// including explicit track membership.
type PlaylistRepository interface {
	GetAllPlaylists(ctx context.Context) []model.Playlist
	GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error)
	CreatePlaylist(ctx context.Context, name, description string) (*model.Playlist, error)
	UpdatePlaylist(ctx context.Context, id string, patch Patch) (*model.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	GetPlaylistTracks(ctx context.Context, id string) ([]model.Track, error)
	AddTrack(ctx context.Context, playlistID, trackID string) (*model.Playlist, error)
	RemoveTrack(ctx context.Context, playlistID, trackID string) (*model.Playlist, error)
	AppendPlaylists(ctx context.Context, playlists []model.Playlist) error
}

type jsonPlaylistRepository struct {
	playlists *storage.Collection[model.Playlist]
	tracks    *storage.Collection[model.Track]
	now       func() time.Time
}

// NewJSONPlaylistRepository creates a PlaylistRepository over the store.
func NewJSONPlaylistRepository(store *storage.Store) PlaylistRepository {
	return &jsonPlaylistRepository{
		playlists: storage.NewCollection[model.Playlist](store, storage.Playlists),
		tracks:    storage.NewCollection[model.Track](store, storage.Tracks),
		now:       time.Now,
	}
}

func (r *jsonPlaylistRepository) GetAllPlaylists(ctx context.Context) []model.Playlist {
	return r.playlists.All(ctx)
}

func (r *jsonPlaylistRepository) GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error) {
	p, ok := r.playlists.Find(ctx, id)
	if !ok {
		return nil, notFound("playlist", id)
	}
	return &p, nil
}

// CreatePlaylist stamps the playlist id with the current Unix time in
// milliseconds, bumped past any id already taken.
func (r *jsonPlaylistRepository) CreatePlaylist(ctx context.Context, name, description string) (*model.Playlist, error) {
	var created model.Playlist
	err := r.playlists.Update(ctx, func(playlists []model.Playlist) ([]model.Playlist, error) {
		taken := make(map[string]bool, len(playlists))
		for _, p := range playlists {
			taken[p.ID] = true
		}
		now := r.now()
		stamp := now.UnixMilli()
		for taken[strconv.FormatInt(stamp, 10)] {
			stamp++
		}

		created = model.NewPlaylist(strconv.FormatInt(stamp, 10), name, description, now)
		if err := created.Validate(); err != nil {
			return nil, err
		}
		return append(playlists, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePlaylist merges patch into the playlist. Membership and the fields
// derived from it are managed by AddTrack and RemoveTrack only.
func (r *jsonPlaylistRepository) UpdatePlaylist(ctx context.Context, id string, patch Patch) (*model.Playlist, error) {
	var updated model.Playlist
	err := r.playlists.Update(ctx, func(playlists []model.Playlist) ([]model.Playlist, error) {
		for i := range playlists {
			if playlists[i].ID != id {
				continue
			}
			merged, err := applyPatch(playlists[i], patch, "id", "trackIds", "trackCount", "duration")
			if err != nil {
				return nil, err
			}
			if err := merged.Validate(); err != nil {
				return nil, err
			}
			playlists[i] = merged
			updated = merged
			return playlists, nil
		}
		return nil, notFound("playlist", id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePlaylist removes the playlist. Deleting an unknown id is not an error.
func (r *jsonPlaylistRepository) DeletePlaylist(ctx context.Context, id string) error {
	return r.playlists.Update(ctx, func(playlists []model.Playlist) ([]model.Playlist, error) {
		kept := playlists[:0]
		for _, p := range playlists {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		return kept, nil
	})
}

func (r *jsonPlaylistRepository) GetPlaylistTracks(ctx context.Context, id string) ([]model.Track, error) {
	p, err := r.GetPlaylistByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return members(p.TrackIDs, r.tracks.All(ctx)), nil
}

// AddTrack appends a track to the playlist. Adding a member again is a no-op.
func (r *jsonPlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID string) (*model.Playlist, error) {
	tracks := r.tracks.All(ctx)
	if !containsTrack(tracks, trackID) {
		return nil, notFound("track", trackID)
	}
	return r.modifyMembers(ctx, playlistID, tracks, func(p *model.Playlist) {
		if !p.HasTrack(trackID) {
			p.TrackIDs = append(p.TrackIDs, trackID)
		}
	})
}

// RemoveTrack drops a track from the playlist. Removing a non-member is a no-op.
func (r *jsonPlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID string) (*model.Playlist, error) {
	return r.modifyMembers(ctx, playlistID, r.tracks.All(ctx), func(p *model.Playlist) {
		kept := make([]string, 0, len(p.TrackIDs))
		for _, id := range p.TrackIDs {
			if id != trackID {
				kept = append(kept, id)
			}
		}
		p.TrackIDs = kept
	})
}

func (r *jsonPlaylistRepository) modifyMembers(ctx context.Context, playlistID string, tracks []model.Track, fn func(p *model.Playlist)) (*model.Playlist, error) {
	var updated model.Playlist
	err := r.playlists.Update(ctx, func(playlists []model.Playlist) ([]model.Playlist, error) {
		for i := range playlists {
			if playlists[i].ID != playlistID {
				continue
			}
			if playlists[i].TrackIDs == nil {
				playlists[i].TrackIDs = []string{}
			}
			fn(&playlists[i])
			playlists[i].Recount(members(playlists[i].TrackIDs, tracks))
			updated = playlists[i]
			return playlists, nil
		}
		return nil, notFound("playlist", playlistID)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AppendPlaylists adds imported playlists. Member ids that do not resolve to
// a track are dropped. Derived fields are recomputed only for playlists that
// came with member ids.
func (r *jsonPlaylistRepository) AppendPlaylists(ctx context.Context, playlists []model.Playlist) error {
	tracks := r.tracks.All(ctx)
	for i := range playlists {
		hadMembers := len(playlists[i].TrackIDs) > 0
		kept := make([]string, 0, len(playlists[i].TrackIDs))
		for _, id := range playlists[i].TrackIDs {
			if containsTrack(tracks, id) {
				kept = append(kept, id)
			}
		}
		playlists[i].TrackIDs = kept
		if hadMembers {
			playlists[i].Recount(members(kept, tracks))
		}
	}
	return r.playlists.Update(ctx, func(existing []model.Playlist) ([]model.Playlist, error) {
		return append(existing, playlists...), nil
	})
}

// members resolves ids to tracks in playlist order, skipping unknown ids.
func members(ids []string, tracks []model.Track) []model.Track {
	byID := make(map[string]model.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}
	out := make([]model.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

func containsTrack(tracks []model.Track, id string) bool {
	for _, t := range tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}
